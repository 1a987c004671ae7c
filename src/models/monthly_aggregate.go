package models

// MMonthlyAggregate summarizes one symbol over one month. Averages are nil
// when no record in the group carried the field.
type MMonthlyAggregate struct {
	Month     string   `json:"month"`
	Symbol    string   `json:"symbol"`
	OpenAvg   *float64 `json:"open_avg"`
	HighAvg   *float64 `json:"high_avg"`
	LowAvg    *float64 `json:"low_avg"`
	CloseAvg  *float64 `json:"close_avg"`
	VolumeSum float64  `json:"volume_sum"`
	Rows      int      `json:"rows"`
}

// MonthlyColumns is the column order of monthly report artifacts.
var MonthlyColumns = []string{"month", "symbol", "open_avg", "high_avg", "low_avg", "close_avg", "volume_sum", "rows"}
