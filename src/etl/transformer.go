package etl

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	"github.com/araddon/dateparse"
)

// -----------------------------------------------------------------------------

// Transformer turns raw records into canonical records and validates them.
// Field-level failures never raise: the field becomes absent.
type Transformer struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewTransformer(log *logger.Logger) *Transformer {
	return &Transformer{Logger: log}
}

// -----------------------------------------------------------------------------

// NormalizeDate renders any parseable date or date-time as "YYYY-MM-DD HH:MM:SS".
// It returns "" when the value is missing or cannot be parsed.
func NormalizeDate(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(models.TimestampLayout)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ""
		}
		return parseDateString(s)
	case bool:
		return ""
	default:
		return parseDateString(fmt.Sprint(v))
	}
}

// numericDate matches d/m/yyyy, d-m-yyyy and d.m.yyyy with an optional time part.
var numericDate = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4})(.*)$`)

func parseDateString(s string) string {
	t, err := dateparse.ParseAny(s, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		iso, ok := reorderNumericDate(s)
		if !ok {
			return ""
		}
		if t, err = dateparse.ParseAny(iso); err != nil {
			return ""
		}
	}
	return t.Format(models.TimestampLayout)
}

// reorderNumericDate rewrites a numeric date as yyyy-mm-dd. Month comes first
// unless the first field cannot be a month.
func reorderNumericDate(s string) (string, bool) {
	m := numericDate.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month > 12 {
		month, day = day, month
	}
	return fmt.Sprintf("%s-%02d-%02d%s", m[3], month, day, m[4]), true
}

// -----------------------------------------------------------------------------

// CleanNumber converts numbers and numeric strings such as "1,45,000",
// " 602.95 " or 15322196 into a Number. Strings holding a decimal point
// become floats, other strings integers. It returns nil on any failure.
func CleanNumber(value interface{}) *models.Number {
	switch v := value.(type) {
	case nil, bool:
		return nil
	case int:
		return models.IntNumber(int64(v))
	case int64:
		return models.IntNumber(v)
	case int32:
		return models.IntNumber(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return models.FloatNumber(float64(v))
		}
		return models.IntNumber(int64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return models.FloatNumber(v)
	case string:
		return cleanNumericString(v)
	default:
		return nil
	}
}

func cleanNumericString(s string) *models.Number {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}

	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return models.FloatNumber(f)
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return models.IntNumber(i)
}

// -----------------------------------------------------------------------------

// Normalize maps a raw record onto the canonical schema.
func (t *Transformer) Normalize(raw models.MRawRecord) models.MCanonicalRecord {
	rec := models.MCanonicalRecord{
		Symbol:    scalarString(raw.Symbol),
		Timestamp: NormalizeDate(raw.Date),
	}

	// Month: explicit hint first, else derived from the timestamp
	switch m := raw.Month.(type) {
	case time.Time:
		rec.Month = m.Format("2006-01")
	default:
		rec.Month = scalarString(m)
	}
	if rec.Month == "" && rec.Timestamp != "" {
		rec.Month = rec.Timestamp[:7]
	}

	rec.Open = t.cleanField(raw, "open")
	rec.High = t.cleanField(raw, "high")
	rec.Low = t.cleanField(raw, "low")
	rec.Close = t.cleanField(raw, "close")
	rec.Volume = t.cleanField(raw, "volume")

	if rec.Timestamp == "" && raw.Date != nil && t.Logger != nil {
		t.Logger.Debug("Unparseable date %v for %s in %s", raw.Date, rec.Symbol, raw.Source)
	}

	return rec
}

func (t *Transformer) cleanField(raw models.MRawRecord, field string) *models.Number {
	value := raw.Numbers[field]
	n := CleanNumber(value)
	if n == nil && value != nil && t.Logger != nil {
		t.Logger.Debug("Unparseable %s %v in %s", field, value, raw.Source)
	}
	return n
}

// -----------------------------------------------------------------------------

// Validate returns a *helpers.RecordValidationError when the record lacks a
// symbol, a timestamp or a close price.
func (t *Transformer) Validate(rec models.MCanonicalRecord) error {
	identity := fmt.Sprintf("%q@%q", rec.Symbol, rec.Timestamp)
	switch {
	case rec.Symbol == "":
		return helpers.NewRecordValidationError(identity, "missing symbol")
	case rec.Timestamp == "":
		return helpers.NewRecordValidationError(identity, "missing or unparseable date")
	case rec.Close == nil:
		return helpers.NewRecordValidationError(identity, "missing close")
	}
	return nil
}

// -----------------------------------------------------------------------------

// IsValid reports whether rec may be persisted.
func (t *Transformer) IsValid(rec models.MCanonicalRecord) bool {
	return t.Validate(rec) == nil
}

// -----------------------------------------------------------------------------

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
