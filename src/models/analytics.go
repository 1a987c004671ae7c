package models

import "time"

// MPeriodReturn is one symbol's performance over the selected period.
type MPeriodReturn struct {
	Symbol     string  `json:"symbol"`
	FirstClose float64 `json:"first_close"`
	LastClose  float64 `json:"last_close"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Return     float64 `json:"return"`
	ReturnPct  float64 `json:"return_pct"`
	AvgVolume  float64 `json:"avg_volume"`
	Days       int     `json:"days"`
}

// MGainersLosers holds the best and worst period returns.
type MGainersLosers struct {
	Gainers      []MPeriodReturn `json:"gainers"`
	Losers       []MPeriodReturn `json:"losers"`
	Best         *MPeriodReturn  `json:"best,omitempty"`
	Worst        *MPeriodReturn  `json:"worst,omitempty"`
	AvgReturnPct float64         `json:"avg_return_pct"`
}

// Market sentiment labels.
const (
	SentimentBullish    = "bullish"
	SentimentWeak       = "weak"
	SentimentRangeBound = "range-bound"
)

// MMarketOverview is the market snapshot over the selected period.
type MMarketOverview struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	TotalStocks  int             `json:"total_stocks"`
	Green        int             `json:"green"`
	Red          int             `json:"red"`
	GreenPct     float64         `json:"green_pct"`
	RedPct       float64         `json:"red_pct"`
	AvgReturn    float64         `json:"avg_return"`
	AvgVolume    float64         `json:"avg_volume"`
	Sentiment    string          `json:"sentiment"`
	TopGainers   []MPeriodReturn `json:"top_gainers"`
	TopLosers    []MPeriodReturn `json:"top_losers"`
	Best         *MPeriodReturn  `json:"best,omitempty"`
	Worst        *MPeriodReturn  `json:"worst,omitempty"`
}

// MVolatility is the dispersion of one symbol's daily returns.
type MVolatility struct {
	Symbol        string  `json:"symbol"`
	Volatility    float64 `json:"volatility"`
	VolatilityPct float64 `json:"volatility_pct"`
	ZScore        float64 `json:"z_score"`
}

// MVolatilityReport lists volatilities sorted from most to least volatile.
type MVolatilityReport struct {
	Rows       []MVolatility `json:"rows"`
	AveragePct float64       `json:"average_pct"`
	Highest    *MVolatility  `json:"highest,omitempty"`
	Lowest     *MVolatility  `json:"lowest,omitempty"`
}

// MCumulativePoint is the compounded return reached at Date.
type MCumulativePoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// MCumulativeSeries is one symbol's compounded return path.
type MCumulativeSeries struct {
	Symbol string             `json:"symbol"`
	Final  float64            `json:"final"`
	Points []MCumulativePoint `json:"points"`
}

// MSectorPerformance is the average monthly mean daily return of a sector.
type MSectorPerformance struct {
	Sector       string  `json:"sector"`
	AvgReturn    float64 `json:"avg_return"`
	AvgReturnPct float64 `json:"avg_return_pct"`
	Symbols      int     `json:"symbols"`
}

// MCorrelationPair is one off-diagonal cell of a correlation matrix.
type MCorrelationPair struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Value float64 `json:"value"`
}

// MCorrelationMatrix holds pairwise daily-return correlations.
type MCorrelationMatrix struct {
	Symbols []string          `json:"symbols"`
	Values  [][]float64       `json:"values"`
	Highest *MCorrelationPair `json:"highest,omitempty"`
	Lowest  *MCorrelationPair `json:"lowest,omitempty"`
}
