package analysis

import (
	"sort"
	"time"
)

// MonthWindow groups the indices of dates falling in one calendar month.
type MonthWindow struct {
	Month   string // YYYY-MM
	Start   time.Time
	End     time.Time // exclusive
	Indices []int
}

// -----------------------------------------------------------------------------

// TimeSeriesResampler buckets dated observations into calendar months.
type TimeSeriesResampler struct{}

// -----------------------------------------------------------------------------

// ResampleMonthly returns one window per month present in dates, in
// chronological order. Indices refer to positions in dates.
func (r *TimeSeriesResampler) ResampleMonthly(dates []time.Time) []MonthWindow {
	if len(dates) == 0 {
		return []MonthWindow{}
	}

	byMonth := make(map[string]*MonthWindow)
	for i, d := range dates {
		start, end := CalculateMonthBoundaries(d)
		key := start.Format("2006-01")
		w, ok := byMonth[key]
		if !ok {
			w = &MonthWindow{Month: key, Start: start, End: end}
			byMonth[key] = w
		}
		w.Indices = append(w.Indices, i)
	}

	windows := make([]MonthWindow, 0, len(byMonth))
	for _, w := range byMonth {
		windows = append(windows, *w)
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows
}

// -----------------------------------------------------------------------------

// ResampleData returns the values of data grouped by the month of the
// matching date. dates and data must have the same length.
func ResampleData[T any](r *TimeSeriesResampler, dates []time.Time, data []T) map[string][]T {
	out := make(map[string][]T)
	for _, w := range r.ResampleMonthly(dates) {
		slice := make([]T, 0, len(w.Indices))
		for _, idx := range w.Indices {
			if idx < len(data) {
				slice = append(slice, data[idx])
			}
		}
		out[w.Month] = slice
	}
	return out
}

// -----------------------------------------------------------------------------

// CalculateMonthBoundaries returns the first instant of t's month and of the next one.
func CalculateMonthBoundaries(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
