package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stock-analysis/src/analysis"
	"stock-analysis/src/dataset"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// parseFilter builds a dataset filter from raw from/to (YYYY-MM-DD) and symbols.
func parseFilter(from, to string, symbols []string) (dataset.Filter, error) {
	var f dataset.Filter
	var err error

	if from = strings.TrimSpace(from); from != "" {
		if f.From, err = time.Parse(time.DateOnly, from); err != nil {
			return f, fmt.Errorf("invalid 'from' date %q, want YYYY-MM-DD", from)
		}
	}
	if to = strings.TrimSpace(to); to != "" {
		if f.To, err = time.Parse(time.DateOnly, to); err != nil {
			return f, fmt.Errorf("invalid 'to' date %q, want YYYY-MM-DD", to)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("'to' date %s is before 'from' date %s", to, from)
	}

	for _, s := range symbols {
		if s = strings.TrimSpace(s); s != "" {
			f.Symbols = append(f.Symbols, s)
		}
	}
	return f, nil
}

// -----------------------------------------------------------------------------

// queryFilter reads from, to and symbols (comma-separated) query parameters.
func queryFilter(c *gin.Context) (dataset.Filter, error) {
	var symbols []string
	if raw := c.Query("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}
	return parseFilter(c.Query("from"), c.Query("to"), symbols)
}

// -----------------------------------------------------------------------------

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid '%s' value %q, want a positive integer", key, raw)
	}
	return v, nil
}

// -----------------------------------------------------------------------------

func queryFloat(c *gin.Context, key string, fallback float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v > 1 {
		return 0, fmt.Errorf("invalid '%s' value %q, want a number in (0, 1]", key, raw)
	}
	return v, nil
}

// -----------------------------------------------------------------------------

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

// analysisError maps analysis errors to HTTP statuses.
func analysisError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, analysis.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, analysis.ErrNoSectorMatch), errors.Is(err, analysis.ErrTooFewSymbols):
		status = http.StatusUnprocessableEntity
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
