package analysis

import (
	"io"
	"math"
	"testing"
	"time"

	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	"github.com/stretchr/testify/require"
)

func newTestFacade() *AnalysisFacade {
	return NewAnalysisFacade(models.MAnalyticsConfig{
		TopN:                 2,
		CumulativeTopN:       2,
		CorrelationMaxStocks: 15,
		CorrelationCoverage:  0.7,
	}, logger.NewLoggerWithWriter(io.Discard, "DEBUG", "analysis"))
}

func f(v float64) *float64 { return &v }

func day(month time.Month, d int) time.Time {
	return time.Date(2023, month, d, 0, 0, 0, 0, time.UTC)
}

// priceRows builds one row per close, on consecutive days from start.
func priceRows(symbol string, start time.Time, closes ...float64) []models.MPriceRow {
	rows := make([]models.MPriceRow, len(closes))
	for i, c := range closes {
		rows[i] = models.MPriceRow{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i),
			Close:  f(c),
			Volume: f(1000),
		}
	}
	return rows
}

func sample() []models.MPriceRow {
	var rows []models.MPriceRow
	rows = append(rows, priceRows("TCS", day(10, 2), 100, 110, 120)...)
	rows = append(rows, priceRows("INFY", day(10, 2), 200, 190, 180)...)
	rows = append(rows, priceRows("SBIN", day(10, 2), 50, 55, 50)...)
	return rows
}

func TestPeriodReturns(t *testing.T) {
	returns := newTestFacade().PeriodReturns(sample())
	require.Len(t, returns, 3)

	require.Equal(t, "INFY", returns[0].Symbol)
	require.InDelta(t, -0.1, returns[0].Return, 1e-12)

	tcs := returns[2]
	require.Equal(t, "TCS", tcs.Symbol)
	require.Equal(t, 100.0, tcs.FirstClose)
	require.Equal(t, 120.0, tcs.LastClose)
	require.InDelta(t, 20.0, tcs.ReturnPct, 1e-9)
	require.Equal(t, 1000.0, tcs.AvgVolume)
	require.Equal(t, 3, tcs.Days)
}

func TestPeriodReturnsIgnoresRowsWithoutClose(t *testing.T) {
	rows := priceRows("TCS", day(10, 2), 100, 120)
	rows = append(rows, models.MPriceRow{Symbol: "TCS", Date: day(10, 1)})

	returns := newTestFacade().PeriodReturns(rows)
	require.Len(t, returns, 1)
	require.Equal(t, 100.0, returns[0].FirstClose)
}

func TestMarketOverview(t *testing.T) {
	overview, err := newTestFacade().MarketOverview(sample())
	require.NoError(t, err)

	require.Equal(t, 3, overview.TotalStocks)
	require.Equal(t, 1, overview.Green)
	require.Equal(t, 2, overview.Red) // SBIN is flat
	require.InDelta(t, 100.0/3, overview.GreenPct, 1e-9)
	require.Equal(t, models.SentimentWeak, overview.Sentiment)
	require.Equal(t, "TCS", overview.Best.Symbol)
	require.Equal(t, "INFY", overview.Worst.Symbol)
	require.Len(t, overview.TopGainers, 2)
	require.Equal(t, day(10, 2), overview.From)
	require.Equal(t, day(10, 4), overview.To)

	_, err = newTestFacade().MarketOverview(nil)
	require.ErrorIs(t, err, ErrNoData)
}

func TestSentiment(t *testing.T) {
	require.Equal(t, models.SentimentBullish, Sentiment(60.1))
	require.Equal(t, models.SentimentRangeBound, Sentiment(60))
	require.Equal(t, models.SentimentRangeBound, Sentiment(40))
	require.Equal(t, models.SentimentWeak, Sentiment(39.9))
}

func TestGainersLosers(t *testing.T) {
	gl, err := newTestFacade().GainersLosers(sample(), 1)
	require.NoError(t, err)
	require.Len(t, gl.Gainers, 1)
	require.Equal(t, "TCS", gl.Gainers[0].Symbol)
	require.Equal(t, "INFY", gl.Losers[0].Symbol)
	require.InDelta(t, (20.0-10.0+0.0)/3, gl.AvgReturnPct, 1e-9)
}

func TestVolatility(t *testing.T) {
	rows := sample()
	rows = append(rows, priceRows("WIPRO", day(10, 2), 400)...)

	report, err := newTestFacade().Volatility(rows)
	require.NoError(t, err)
	require.Len(t, report.Rows, 3)

	// SBIN: +10%, -9.09% swings the most
	require.Equal(t, "SBIN", report.Highest.Symbol)
	sbinReturns := []float64{0.1, 50.0/55.0 - 1}
	mean := (sbinReturns[0] + sbinReturns[1]) / 2
	want := math.Sqrt((math.Pow(sbinReturns[0]-mean, 2) + math.Pow(sbinReturns[1]-mean, 2)) / 1)
	require.InDelta(t, want, report.Highest.Volatility, 1e-12)
	require.InDelta(t, want*100, report.Highest.VolatilityPct, 1e-9)
	require.Greater(t, report.Highest.ZScore, 0.0)

	for _, v := range report.Rows {
		require.NotEqual(t, "WIPRO", v.Symbol)
	}
}

func TestCumulativeReturns(t *testing.T) {
	out, err := newTestFacade().CumulativeReturns(sample(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, "TCS", out[0].Symbol)
	require.InDelta(t, 0.2, out[0].Final, 1e-12)
	require.Len(t, out[0].Points, 3)
	require.Zero(t, out[0].Points[0].Return)
	require.InDelta(t, 0.1, out[0].Points[1].Return, 1e-12)

	require.Equal(t, "SBIN", out[1].Symbol)
	require.InDelta(t, 0, out[1].Final, 1e-12)
}

func TestSectorPerformance(t *testing.T) {
	rows := sample()
	rows = append(rows, priceRows("UNMAPPED", day(10, 2), 1, 2)...)
	mapping := models.MSectorMapping{"TCS": "IT", "INFY": "IT", "SBIN": "BANKING", "HDFCBANK": "BANKING"}

	perf, err := newTestFacade().SectorPerformance(rows, mapping)
	require.NoError(t, err)
	require.Len(t, perf, 2)

	tcs := (0.1 + 10.0/110.0) / 2
	infy := (-0.05 + (180.0/190.0 - 1)) / 2
	sbin := (0.1 + (50.0/55.0 - 1)) / 2

	require.Equal(t, "IT", perf[0].Sector)
	require.InDelta(t, (tcs+infy)/2, perf[0].AvgReturn, 1e-12)
	require.Equal(t, 2, perf[0].Symbols)
	require.Equal(t, "BANKING", perf[1].Sector)
	require.InDelta(t, sbin, perf[1].AvgReturn, 1e-12)
	require.Equal(t, 1, perf[1].Symbols)

	_, err = newTestFacade().SectorPerformance(rows, models.MSectorMapping{"ITC": "FMCG"})
	require.ErrorIs(t, err, ErrNoSectorMatch)
}

func TestSectorPerformanceAveragesMonths(t *testing.T) {
	// returns: Oct 31 +10%, Nov 1 +10%, Nov 2 -20%
	rows := priceRows("TCS", day(10, 30), 100, 110, 121, 96.8)
	perf, err := newTestFacade().SectorPerformance(rows, models.MSectorMapping{"TCS": "IT"})
	require.NoError(t, err)
	require.InDelta(t, (0.1+(0.1-0.2)/2)/2, perf[0].AvgReturn, 1e-12)
}

func TestCorrelation(t *testing.T) {
	var rows []models.MPriceRow
	rows = append(rows, priceRows("A", day(10, 2), 100, 110, 99, 120)...)
	rows = append(rows, priceRows("B", day(10, 2), 50, 55, 49.5, 60)...)
	rows = append(rows, priceRows("C", day(10, 2), 100, 90, 99, 80)...)
	rows = append(rows, priceRows("SPARSE", day(10, 4), 10, 11)...)

	matrix, err := newTestFacade().Correlation(rows, 15, 0.7)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, matrix.Symbols)
	require.Equal(t, 1.0, matrix.Values[0][0])
	require.InDelta(t, 1.0, matrix.Values[0][1], 1e-9)
	require.Equal(t, matrix.Values[0][2], matrix.Values[2][0])
	require.Less(t, matrix.Values[0][2], 0.0)

	require.Equal(t, "A", matrix.Highest.A)
	require.Equal(t, "B", matrix.Highest.B)
	require.Less(t, matrix.Lowest.Value, 0.0)

	limited, err := newTestFacade().Correlation(rows, 2, 0.7)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, limited.Symbols)

	_, err = newTestFacade().Correlation(priceRows("A", day(10, 2), 1, 2, 3), 15, 0.7)
	require.ErrorIs(t, err, ErrTooFewSymbols)
}

func TestResampleMonthly(t *testing.T) {
	r := &TimeSeriesResampler{}
	windows := r.ResampleMonthly([]time.Time{day(11, 2), day(10, 30), day(11, 1)})
	require.Len(t, windows, 2)
	require.Equal(t, "2023-10", windows[0].Month)
	require.Equal(t, []int{1}, windows[0].Indices)
	require.Equal(t, []int{0, 2}, windows[1].Indices)
	require.Equal(t, day(12, 1), windows[1].End)

	grouped := ResampleData(r, []time.Time{day(10, 30), day(11, 1)}, []string{"a", "b"})
	require.Equal(t, map[string][]string{"2023-10": {"a"}, "2023-11": {"b"}}, grouped)
	require.Empty(t, r.ResampleMonthly(nil))
}
