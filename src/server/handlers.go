package server

import (
	"net/http"

	"stock-analysis/src/dataset"
	"stock-analysis/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getHealth(c *gin.Context) {
	rows, _, loadedAt := s.snapshot()

	s.stateMutex.RLock()
	connections := s.connections
	s.stateMutex.RUnlock()

	var loaded int64
	if !loadedAt.IsZero() {
		loaded = loadedAt.Unix()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": connections,
		"rows":        len(rows),
		"loaded_at":   loaded,
	})
}

// -----------------------------------------------------------------------------

// filteredRows applies the request filter to the loaded dataset. It writes
// the error response itself and reports false on failure.
func (s *AnalyticsServer) filteredRows(c *gin.Context) ([]models.MPriceRow, bool) {
	filter, err := queryFilter(c)
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	rows, _, _ := s.snapshot()
	return filter.Apply(rows), true
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getSymbols(c *gin.Context) {
	rows, _, _ := s.snapshot()
	first, last := dataset.DateRange(rows)

	c.JSON(http.StatusOK, gin.H{
		"symbols": dataset.Symbols(rows),
		"from":    first,
		"to":      last,
	})
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getOverview(c *gin.Context) {
	rows, ok := s.filteredRows(c)
	if !ok {
		return
	}
	overview, err := s.Analysis.MarketOverview(rows)
	if err != nil {
		analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getGainersLosers(c *gin.Context) {
	n, err := queryInt(c, "n", s.Config.Analytics.TopN)
	if err != nil {
		badRequest(c, err)
		return
	}
	rows, ok := s.filteredRows(c)
	if !ok {
		return
	}
	result, err := s.Analysis.GainersLosers(rows, n)
	if err != nil {
		analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getVolatility(c *gin.Context) {
	rows, ok := s.filteredRows(c)
	if !ok {
		return
	}
	report, err := s.Analysis.Volatility(rows)
	if err != nil {
		analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getCumulativeReturns(c *gin.Context) {
	n, err := queryInt(c, "n", s.Config.Analytics.CumulativeTopN)
	if err != nil {
		badRequest(c, err)
		return
	}
	rows, ok := s.filteredRows(c)
	if !ok {
		return
	}
	series, err := s.Analysis.CumulativeReturns(rows, n)
	if err != nil {
		analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getSectors(c *gin.Context) {
	rows, ok := s.filteredRows(c)
	if !ok {
		return
	}
	_, mapping, _ := s.snapshot()

	perf, err := s.Analysis.SectorPerformance(rows, mapping)
	if err != nil {
		analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sectors": perf})
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) getCorrelation(c *gin.Context) {
	maxStocks, err := queryInt(c, "max_stocks", s.Config.Analytics.CorrelationMaxStocks)
	if err != nil {
		badRequest(c, err)
		return
	}
	coverage, err := queryFloat(c, "coverage", s.Config.Analytics.CorrelationCoverage)
	if err != nil {
		badRequest(c, err)
		return
	}
	rows, ok := s.filteredRows(c)
	if !ok {
		return
	}

	matrix, err := s.Analysis.Correlation(rows, maxStocks, coverage)
	if err != nil {
		analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) postReload(c *gin.Context) {
	if err := s.Reload(); err != nil {
		s.Logger.Error("Reload failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	rows, _, loadedAt := s.snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":    "reloaded",
		"rows":      len(rows),
		"loaded_at": loadedAt.Unix(),
	})
}
