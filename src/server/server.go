package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"stock-analysis/src/analysis"
	"stock-analysis/src/dataset"
	"stock-analysis/src/etl"
	"stock-analysis/src/interfaces"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"
	"stock-analysis/src/sectors"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

var _ interfaces.IDataExchanger = (*AnalyticsServer)(nil)

// -----------------------------------------------------------------------------
// AnalyticsServer
// -----------------------------------------------------------------------------

type AnalyticsServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Analysis   *analysis.AnalysisFacade
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub loop
	clients    map[*Client]struct{}
	broadcast  chan *models.MUpdate
	register   chan *Client
	unregister chan *Client
	direct     chan directMessage
	done       chan struct{}
	stopOnce   sync.Once

	// Local cache
	latestState *models.MUpdate
	connections int
	stateMutex  sync.RWMutex

	// Loaded dataset
	rows       []models.MPriceRow
	mapping    models.MSectorMapping
	loadedAt   time.Time
	dataMutex  sync.RWMutex
	reloadLock sync.Mutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAnalyticsServer(cfg *models.MConfig, log *logger.Logger) *AnalyticsServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &AnalyticsServer{
		Config:   cfg,
		Logger:   log,
		Analysis: analysis.NewAnalysisFacade(cfg.Analytics, log.Named("analysis")),
		engine:   gin.New(),
		clients:  make(map[*Client]struct{}),
		// Buffered so a reload never waits on slow websocket clients
		broadcast:  make(chan *models.MUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan directMessage, 64),
		done:       make(chan struct{}),
		mapping:    make(models.MSectorMapping),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.engine,
	}
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *AnalyticsServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/symbols", s.getSymbols)
	api.GET("/overview", s.getOverview)
	api.GET("/gainers-losers", s.getGainersLosers)
	api.GET("/volatility", s.getVolatility)
	api.GET("/cumulative-returns", s.getCumulativeReturns)
	api.GET("/sectors", s.getSectors)
	api.GET("/correlation", s.getCorrelation)
	api.POST("/reload", s.postReload)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for tests.
func (s *AnalyticsServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start loads the dataset, runs the websocket hub and serves until Stop.
// A missing dataset is logged; /api/reload can load it later.
func (s *AnalyticsServer) Start() error {
	if err := s.Reload(); err != nil {
		s.Logger.Warning("Dataset not loaded: %v", err)
	}

	s.Logger.Info("Starting server on %s", s.httpServer.Addr)
	go s.handleWebsockets()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// Dataset
// -----------------------------------------------------------------------------

// CombinedPath is the combined artifact the server reads.
func (s *AnalyticsServer) CombinedPath() string {
	return filepath.Join(s.Config.ETL.CombinedDir, etl.CombinedFileName)
}

// -----------------------------------------------------------------------------

// Reload re-reads the combined artifact and the sector mapping, then pushes
// the new market overview to websocket clients. On error the previous
// dataset stays in place.
func (s *AnalyticsServer) Reload() error {
	s.reloadLock.Lock()
	defer s.reloadLock.Unlock()

	rows, err := dataset.Load(s.CombinedPath())
	if err != nil {
		return err
	}

	mapping, err := sectors.LoadCSV(s.Config.Analytics.SectorMappingPath)
	if err != nil {
		s.Logger.Warning("Sector mapping unavailable: %v", err)
		mapping = make(models.MSectorMapping)
	}

	s.dataMutex.Lock()
	s.rows = rows
	s.mapping = mapping
	s.loadedAt = time.Now()
	s.dataMutex.Unlock()

	s.Logger.Info("Loaded %d rows for %d symbols from %s", len(rows), len(dataset.Symbols(rows)), s.CombinedPath())

	update := s.buildUpdate(models.UpdateTypeUpdate, rows)
	s.SetLatestState(update)
	s.Broadcast(update)
	return nil
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) snapshot() ([]models.MPriceRow, models.MSectorMapping, time.Time) {
	s.dataMutex.RLock()
	defer s.dataMutex.RUnlock()
	return s.rows, s.mapping, s.loadedAt
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) buildUpdate(kind string, rows []models.MPriceRow) *models.MUpdate {
	update := &models.MUpdate{
		Type:      kind,
		Timestamp: time.Now().Unix(),
		Rows:      len(rows),
		Symbols:   dataset.Symbols(rows),
	}
	overview, err := s.Analysis.MarketOverview(rows)
	if err != nil {
		update.Error = err.Error()
	} else {
		update.Overview = overview
	}
	return update
}

// -----------------------------------------------------------------------------

// requestLogger logs each request through the application logger.
func (s *AnalyticsServer) requestLogger() gin.HandlerFunc {
	log := s.Logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
