package models

// Source entry keys. The symbol may appear under any of SymbolKeys.
var SymbolKeys = []string{"Ticker", "ticker", "Symbol", "symbol"}

const (
	DateKey  = "date"
	MonthKey = "month"
)

// NumericFields lists the numeric keys of a source entry in column order.
var NumericFields = []string{"open", "high", "low", "close", "volume"}

// TimestampLayout is the canonical date-time layout (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

// -----------------------------------------------------------------------------

// MRawRecord is the tagged view of one parsed source entry. Values keep the
// scalar type the parser produced (string, int, float64, time.Time or nil).
type MRawRecord struct {
	Symbol  interface{}
	Date    interface{}
	Month   interface{}
	Numbers map[string]interface{}
	Source  string // file the entry came from
}

// NewRawRecord builds a MRawRecord from a decoded mapping.
func NewRawRecord(entry map[string]interface{}, source string) MRawRecord {
	raw := MRawRecord{
		Date:    entry[DateKey],
		Month:   entry[MonthKey],
		Numbers: make(map[string]interface{}, len(NumericFields)),
		Source:  source,
	}
	for _, k := range SymbolKeys {
		if v, ok := entry[k]; ok && v != nil {
			raw.Symbol = v
			break
		}
	}
	for _, f := range NumericFields {
		raw.Numbers[f] = entry[f]
	}
	return raw
}

// -----------------------------------------------------------------------------

// MCanonicalRecord is the normalized form of one daily price entry.
// Timestamp and Month are empty when they could not be derived.
type MCanonicalRecord struct {
	Symbol    string  `json:"symbol"`
	Timestamp string  `json:"date"`
	Month     string  `json:"month"`
	Open      *Number `json:"open"`
	High      *Number `json:"high"`
	Low       *Number `json:"low"`
	Close     *Number `json:"close"`
	Volume    *Number `json:"volume"`
}

// CanonicalColumns is the column order of per-symbol and combined artifacts.
var CanonicalColumns = []string{"symbol", "date", "month", "open", "high", "low", "close", "volume"}

// Row renders the record in CanonicalColumns order.
func (r MCanonicalRecord) Row() []string {
	return []string{
		r.Symbol,
		r.Timestamp,
		r.Month,
		FormatNumber(r.Open),
		FormatNumber(r.High),
		FormatNumber(r.Low),
		FormatNumber(r.Close),
		FormatNumber(r.Volume),
	}
}

// Key identifies the record for duplicate detection.
func (r MCanonicalRecord) Key() string {
	return r.Symbol + "|" + r.Timestamp
}
