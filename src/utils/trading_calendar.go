package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// FallbackMIC is used when the configured exchange has no calendar.
const FallbackMIC = "xnys"

// TradingCalendar answers trading-day questions using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar returns the calendar for an ISO 10383 MIC code (e.g. "xnse", "xbom").
// Unknown codes fall back to NYSE, then to a plain Monday-Friday calendar.
func GetCalendar(mic string) *TradingCalendar {
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" {
		mic = FallbackMIC
	}

	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}

	log.Printf("WARNING: no calendar for MIC '%s', falling back to '%s'", mic, FallbackMIC)
	if cal := calendar.GetCalendar(FallbackMIC); cal != nil {
		return &TradingCalendar{MIC: FallbackMIC, Calendar: cal, Timezone: cal.Loc}
	}

	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: time.UTC}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether the calendar day of date is a business day.
// Dates carry no exchange timezone, so the wall-clock day is kept as-is.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		y, m, d := date.Date()
		date = time.Date(y, m, d, 12, 0, 0, 0, tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}
