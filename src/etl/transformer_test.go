package etl

import (
	"io"
	"testing"
	"time"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	"github.com/stretchr/testify/require"
)

func newTestTransformer() *Transformer {
	return NewTransformer(logger.NewLoggerWithWriter(io.Discard, "DEBUG", "transformer"))
}

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  *models.Number
	}{
		{"indian grouping", "1,45,000", models.IntNumber(145000)},
		{"western grouping", "15,322,196", models.IntNumber(15322196)},
		{"decimal string", " 602.95 ", models.FloatNumber(602.95)},
		{"grouped decimal", "1,234.50", models.FloatNumber(1234.5)},
		{"plain int", 42, models.IntNumber(42)},
		{"plain float", 601.5, models.FloatNumber(601.5)},
		{"negative", "-3", models.IntNumber(-3)},
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"text", "n/a", nil},
		{"two points", "1.2.3", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
		{"list", []interface{}{1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CleanNumber(tt.input))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"iso date", "2023-10-30", "2023-10-30 00:00:00"},
		{"iso date time", "2023-10-30 09:15:00", "2023-10-30 09:15:00"},
		{"slashes", "2023/10/30", "2023-10-30 00:00:00"},
		{"month name", "Oct 30, 2023", "2023-10-30 00:00:00"},
		{"day first slashes", "30/10/2023", "2023-10-30 00:00:00"},
		{"day first dashes", "30-10-2023", "2023-10-30 00:00:00"},
		{"day first dots", "30.10.2023", "2023-10-30 00:00:00"},
		{"day first with time", "30-10-2023 09:15:00", "2023-10-30 09:15:00"},
		{"month first slashes", "10/30/2023", "2023-10-30 00:00:00"},
		{"month first dashes", "10-30-2023", "2023-10-30 00:00:00"},
		{"ambiguous is month first", "05.10.2023", "2023-05-10 00:00:00"},
		{"impossible day and month", "31/13/2023", ""},
		{"padded", "  2023-10-30  ", "2023-10-30 00:00:00"},
		{"time value", time.Date(2023, 10, 30, 0, 0, 0, 0, time.UTC), "2023-10-30 00:00:00"},
		{"garbage", "yesterday-ish", ""},
		{"empty", "", ""},
		{"nil", nil, ""},
		{"bool", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.input)
			require.Equal(t, tt.want, got)
			if got != "" {
				_, err := time.Parse(models.TimestampLayout, got)
				require.NoError(t, err)
			}
		})
	}
}

func TestNormalizeDerivesMonth(t *testing.T) {
	tr := newTestTransformer()

	rec := tr.Normalize(models.MRawRecord{
		Symbol:  " SBIN ",
		Date:    "2023-10-30",
		Numbers: map[string]interface{}{"close": "602.95"},
	})
	require.Equal(t, "SBIN", rec.Symbol)
	require.Equal(t, "2023-10-30 00:00:00", rec.Timestamp)
	require.Equal(t, "2023-10", rec.Month)
	require.Equal(t, models.FloatNumber(602.95), rec.Close)
	require.Nil(t, rec.Volume)

	hinted := tr.Normalize(models.MRawRecord{Symbol: "SBIN", Date: "2023-10-30", Month: "2023-11"})
	require.Equal(t, "2023-11", hinted.Month)

	undated := tr.Normalize(models.MRawRecord{Symbol: "SBIN", Date: "not a date"})
	require.Empty(t, undated.Timestamp)
	require.Empty(t, undated.Month)
}

func TestNormalizeKeepsRecordOnFieldFailure(t *testing.T) {
	tr := newTestTransformer()

	rec := tr.Normalize(models.MRawRecord{
		Symbol: "TCS",
		Date:   "2023-10-02",
		Numbers: map[string]interface{}{
			"open":   "abc",
			"close":  "3,500.10",
			"volume": "1,45,000",
		},
	})
	require.Nil(t, rec.Open)
	require.Equal(t, models.FloatNumber(3500.1), rec.Close)
	require.Equal(t, models.IntNumber(145000), rec.Volume)
	require.True(t, tr.IsValid(rec))
}

func TestValidate(t *testing.T) {
	tr := newTestTransformer()
	valid := models.MCanonicalRecord{
		Symbol:    "SBIN",
		Timestamp: "2023-10-30 00:00:00",
		Month:     "2023-10",
		Close:     models.FloatNumber(602.95),
	}
	require.NoError(t, tr.Validate(valid))

	tests := []struct {
		name   string
		mutate func(r *models.MCanonicalRecord)
	}{
		{"missing symbol", func(r *models.MCanonicalRecord) { r.Symbol = "" }},
		{"missing timestamp", func(r *models.MCanonicalRecord) { r.Timestamp = "" }},
		{"missing close", func(r *models.MCanonicalRecord) { r.Close = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)

			err := tr.Validate(rec)
			var invalid *helpers.RecordValidationError
			require.ErrorAs(t, err, &invalid)
			require.False(t, tr.IsValid(rec))
		})
	}

	partial := valid
	partial.Open, partial.High, partial.Low, partial.Volume = nil, nil, nil, nil
	require.True(t, tr.IsValid(partial))
}
