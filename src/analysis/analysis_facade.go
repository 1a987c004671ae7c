package analysis

import (
	"errors"
	"math"
	"sort"
	"time"

	"stock-analysis/src/analysis/core"
	"stock-analysis/src/dataset"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"
)

var (
	ErrNoData        = errors.New("no data for the selected filters")
	ErrNoSectorMatch = errors.New("no matching tickers between stock data and sector mapping")
	ErrTooFewSymbols = errors.New("not enough symbols with sufficient data for correlation")
)

// Sentiment thresholds on the share of green stocks, in percent.
const (
	bullishGreenPct = 60.0
	weakGreenPct    = 40.0
)

// -----------------------------------------------------------------------------

// AnalysisFacade computes the analytical views over combined-dataset rows.
// Rows may come in any order.
type AnalysisFacade struct {
	Config    models.MAnalyticsConfig
	Logger    *logger.Logger
	resampler *TimeSeriesResampler
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg models.MAnalyticsConfig, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config:    cfg,
		Logger:    log,
		resampler: &TimeSeriesResampler{},
	}
}

// -----------------------------------------------------------------------------

// series is one symbol's close prices in date order.
type series struct {
	symbol  string
	dates   []time.Time
	closes  []float64
	volumes []float64
}

// groupBySymbol splits rows into per-symbol close series sorted by date.
// Rows without a close are ignored.
func groupBySymbol(rows []models.MPriceRow) []series {
	sorted := make([]models.MPriceRow, 0, len(rows))
	for _, row := range rows {
		if row.Close != nil {
			sorted = append(sorted, row)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Symbol != sorted[j].Symbol {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var out []series
	for _, row := range sorted {
		if len(out) == 0 || out[len(out)-1].symbol != row.Symbol {
			out = append(out, series{symbol: row.Symbol})
		}
		s := &out[len(out)-1]
		s.dates = append(s.dates, row.Date)
		s.closes = append(s.closes, *row.Close)
		if row.Volume != nil {
			s.volumes = append(s.volumes, *row.Volume)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// PeriodReturns computes each symbol's return between its first and last close.
func (a *AnalysisFacade) PeriodReturns(rows []models.MPriceRow) []models.MPeriodReturn {
	var out []models.MPeriodReturn
	for _, s := range groupBySymbol(rows) {
		r := core.ComputePriceRange(s.closes)
		ret := core.CalculateChangePercent(r.Close, r.Open)
		out = append(out, models.MPeriodReturn{
			Symbol:     s.symbol,
			FirstClose: r.Open,
			LastClose:  r.Close,
			High:       r.High,
			Low:        r.Low,
			Return:     ret,
			ReturnPct:  ret * 100,
			AvgVolume:  core.CalculateMean(s.volumes),
			Days:       len(s.closes),
		})
	}
	return out
}

// -----------------------------------------------------------------------------

// GainersLosers returns the n best and n worst period returns.
func (a *AnalysisFacade) GainersLosers(rows []models.MPriceRow, n int) (*models.MGainersLosers, error) {
	returns := a.PeriodReturns(rows)
	if len(returns) == 0 {
		return nil, ErrNoData
	}

	gainers, losers := rankReturns(returns, n)
	pcts := make([]float64, len(returns))
	for i, r := range returns {
		pcts[i] = r.ReturnPct
	}

	return &models.MGainersLosers{
		Gainers:      gainers,
		Losers:       losers,
		Best:         &gainers[0],
		Worst:        &losers[0],
		AvgReturnPct: core.CalculateMean(pcts),
	}, nil
}

func rankReturns(returns []models.MPeriodReturn, n int) ([]models.MPeriodReturn, []models.MPeriodReturn) {
	if n < 1 {
		n = 1
	}

	desc := append([]models.MPeriodReturn(nil), returns...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Return > desc[j].Return })
	asc := append([]models.MPeriodReturn(nil), returns...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Return < asc[j].Return })

	if n > len(returns) {
		n = len(returns)
	}
	return desc[:n], asc[:n]
}

// -----------------------------------------------------------------------------

// MarketOverview summarizes how the market moved over the rows' period.
func (a *AnalysisFacade) MarketOverview(rows []models.MPriceRow) (*models.MMarketOverview, error) {
	returns := a.PeriodReturns(rows)
	if len(returns) == 0 {
		return nil, ErrNoData
	}

	overview := &models.MMarketOverview{TotalStocks: len(returns)}
	overview.From, overview.To = dataset.DateRange(rows)

	rets := make([]float64, len(returns))
	vols := make([]float64, len(returns))
	for i, r := range returns {
		if r.Return > 0 {
			overview.Green++
		} else {
			overview.Red++
		}
		rets[i] = r.Return
		vols[i] = r.AvgVolume
	}

	overview.GreenPct = float64(overview.Green) / float64(overview.TotalStocks) * 100
	overview.RedPct = 100 - overview.GreenPct
	overview.AvgReturn = core.CalculateMean(rets)
	overview.AvgVolume = core.CalculateMean(vols)
	overview.Sentiment = Sentiment(overview.GreenPct)

	overview.TopGainers, overview.TopLosers = rankReturns(returns, a.Config.TopN)
	overview.Best = &overview.TopGainers[0]
	overview.Worst = &overview.TopLosers[0]
	return overview, nil
}

// -----------------------------------------------------------------------------

// Sentiment labels the market from the share of green stocks.
func Sentiment(greenPct float64) string {
	switch {
	case greenPct > bullishGreenPct:
		return models.SentimentBullish
	case greenPct < weakGreenPct:
		return models.SentimentWeak
	default:
		return models.SentimentRangeBound
	}
}

// -----------------------------------------------------------------------------

// Volatility is the sample standard deviation of each symbol's daily returns.
// Symbols with fewer than two returns are left out.
func (a *AnalysisFacade) Volatility(rows []models.MPriceRow) (*models.MVolatilityReport, error) {
	var vols []models.MVolatility
	for _, s := range groupBySymbol(rows) {
		std, ok := core.CalculateSampleStd(finite(core.DailyReturns(s.closes)))
		if !ok {
			continue
		}
		vols = append(vols, models.MVolatility{
			Symbol:        s.symbol,
			Volatility:    std,
			VolatilityPct: std * 100,
		})
	}
	if len(vols) == 0 {
		return nil, ErrNoData
	}

	pcts := make([]float64, len(vols))
	for i, v := range vols {
		pcts[i] = v.VolatilityPct
	}
	mean, std := core.CalculateMeanStd(pcts)
	for i := range vols {
		vols[i].ZScore = core.CalculateZScore(vols[i].VolatilityPct, mean, std)
	}

	sort.SliceStable(vols, func(i, j int) bool { return vols[i].Volatility > vols[j].Volatility })
	return &models.MVolatilityReport{
		Rows:       vols,
		AveragePct: mean,
		Highest:    &vols[0],
		Lowest:     &vols[len(vols)-1],
	}, nil
}

// -----------------------------------------------------------------------------

// CumulativeReturns returns the compounded return path of the n symbols with
// the highest final value. The first point of every path is 0.
func (a *AnalysisFacade) CumulativeReturns(rows []models.MPriceRow, n int) ([]models.MCumulativeSeries, error) {
	var all []models.MCumulativeSeries
	for _, s := range groupBySymbol(rows) {
		cumulative := core.CumulativeReturns(core.DailyReturns(s.closes))

		points := make([]models.MCumulativePoint, len(s.dates))
		points[0] = models.MCumulativePoint{Date: s.dates[0]}
		for i, v := range cumulative {
			points[i+1] = models.MCumulativePoint{Date: s.dates[i+1], Return: v}
		}
		all = append(all, models.MCumulativeSeries{
			Symbol: s.symbol,
			Final:  points[len(points)-1].Return,
			Points: points,
		})
	}
	if len(all) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Final > all[j].Final })
	if n < 1 {
		n = 1
	}
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

// -----------------------------------------------------------------------------

// SectorPerformance averages, per sector, the monthly mean daily return of
// every mapped symbol. Symbols missing from mapping are left out.
func (a *AnalysisFacade) SectorPerformance(rows []models.MPriceRow, mapping models.MSectorMapping) ([]models.MSectorPerformance, error) {
	type acc struct {
		sum     float64
		count   int
		symbols int
	}
	sectors := make(map[string]*acc)

	for _, s := range groupBySymbol(rows) {
		sector, ok := mapping[s.symbol]
		if !ok {
			continue
		}

		// each return belongs to the day it was realized on
		returns := core.DailyReturns(s.closes)
		if len(returns) == 0 {
			continue
		}
		monthly := ResampleData(a.resampler, s.dates[1:], returns)

		contributed := false
		for _, rs := range monthly {
			rs = finite(rs)
			if len(rs) == 0 {
				continue
			}
			st, ok := sectors[sector]
			if !ok {
				st = &acc{}
				sectors[sector] = st
			}
			st.sum += core.CalculateMean(rs)
			st.count++
			contributed = true
		}
		if contributed {
			sectors[sector].symbols++
		}
	}
	if len(sectors) == 0 {
		return nil, ErrNoSectorMatch
	}

	out := make([]models.MSectorPerformance, 0, len(sectors))
	for name, st := range sectors {
		avg := st.sum / float64(st.count)
		out = append(out, models.MSectorPerformance{
			Sector:       name,
			AvgReturn:    avg,
			AvgReturnPct: avg * 100,
			Symbols:      st.symbols,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgReturn != out[j].AvgReturn {
			return out[i].AvgReturn > out[j].AvgReturn
		}
		return out[i].Sector < out[j].Sector
	})
	return out, nil
}

// -----------------------------------------------------------------------------

// Correlation builds the pairwise correlation of daily returns. Symbols with
// returns on fewer than int(dates*coverage) of all dates are dropped, then
// the first maxStocks symbols in alphabetical order are kept.
func (a *AnalysisFacade) Correlation(rows []models.MPriceRow, maxStocks int, coverage float64) (*models.MCorrelationMatrix, error) {
	allDates := make(map[string]struct{})
	returnsBySymbol := make(map[string]map[string]float64)
	var symbols []string

	for _, s := range groupBySymbol(rows) {
		for _, d := range s.dates {
			allDates[dateKey(d)] = struct{}{}
		}
		byDate := make(map[string]float64)
		for i, r := range core.DailyReturns(s.closes) {
			if !math.IsNaN(r) && !math.IsInf(r, 0) {
				byDate[dateKey(s.dates[i+1])] = r
			}
		}
		returnsBySymbol[s.symbol] = byDate
		symbols = append(symbols, s.symbol)
	}

	threshold := int(float64(len(allDates)) * coverage)
	var kept []string
	for _, symbol := range symbols {
		if n := len(returnsBySymbol[symbol]); n > 0 && n >= threshold {
			kept = append(kept, symbol)
		}
	}
	if maxStocks > 0 && len(kept) > maxStocks {
		kept = kept[:maxStocks]
	}
	if len(kept) < 2 {
		return nil, ErrTooFewSymbols
	}
	a.Logger.Debug("Correlation over %d of %d symbols, %d dates", len(kept), len(symbols), len(allDates))

	matrix := &models.MCorrelationMatrix{
		Symbols: kept,
		Values:  make([][]float64, len(kept)),
	}
	for i := range kept {
		matrix.Values[i] = make([]float64, len(kept))
		matrix.Values[i][i] = 1
	}

	for i := 0; i < len(kept); i++ {
		for j := i + 1; j < len(kept); j++ {
			x, y := pairwise(returnsBySymbol[kept[i]], returnsBySymbol[kept[j]])
			if len(x) < 2 {
				continue
			}
			v := core.CalculateCorrelation(x, y)
			matrix.Values[i][j] = v
			matrix.Values[j][i] = v

			pair := models.MCorrelationPair{A: kept[i], B: kept[j], Value: v}
			if matrix.Highest == nil || v > matrix.Highest.Value {
				p := pair
				matrix.Highest = &p
			}
			if matrix.Lowest == nil || v < matrix.Lowest.Value {
				p := pair
				matrix.Lowest = &p
			}
		}
	}
	return matrix, nil
}

// pairwise returns the values of a and b on the dates both hold, in date order.
func pairwise(a, b map[string]float64) ([]float64, []float64) {
	dates := make([]string, 0, len(a))
	for d := range a {
		if _, ok := b[d]; ok {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	x := make([]float64, len(dates))
	y := make([]float64, len(dates))
	for i, d := range dates {
		x[i], y[i] = a[d], b[d]
	}
	return x, y
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// finite drops NaN and infinite values.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
