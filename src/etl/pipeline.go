package etl

import (
	"context"
	"errors"
	"time"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"
	"stock-analysis/src/utils"

	"github.com/google/uuid"
)

// Stage names the pipeline state a run is in.
type Stage string

const (
	StageInit      Stage = "INIT"
	StageDiscover  Stage = "DISCOVER"
	StagePerFile   Stage = "PER_FILE"
	StagePerRecord Stage = "PER_RECORD"
	StageFinalize  Stage = "FINALIZE"
	StageDone      Stage = "DONE"
)

// -----------------------------------------------------------------------------

// Pipeline wires Extractor, Transformer and Loader for one run at a time.
type Pipeline struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Calendar *utils.TradingCalendar

	stage Stage
}

// -----------------------------------------------------------------------------

func NewPipeline(cfg *models.MConfig, log *logger.Logger) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Logger:   log,
		Calendar: utils.GetCalendar(cfg.CalendarMIC),
		stage:    StageInit,
	}
}

// -----------------------------------------------------------------------------

// Stage returns the state reached by the last run.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// -----------------------------------------------------------------------------

// Run processes every source file once. Data-quality problems are logged and
// counted; only DiscoveryError, PersistenceError and ctx cancellation are
// returned. The summary is returned even alongside an error.
func (p *Pipeline) Run(ctx context.Context) (*models.MRunSummary, error) {
	summary := &models.MRunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	// INIT
	p.stage = StageInit
	transformer := NewTransformer(p.Logger.Named("transformer"))
	loader, err := NewLoader(p.Config.ETL, p.Logger.Named("loader"))
	if err != nil {
		p.Logger.Error("Run %s: %v", summary.RunID, err)
		return summary, err
	}
	defer func() {
		if err := loader.Close(); err != nil {
			p.Logger.Error("Closing per-symbol files: %v", err)
		}
	}()

	// DISCOVER
	p.stage = StageDiscover
	extractor := NewExtractor(p.Config.ETL.DataDir, p.Logger.Named("extractor"))
	files, err := extractor.Discover()
	if err != nil {
		p.Logger.Error("Run %s: %v", summary.RunID, err)
		return summary, err
	}
	summary.FilesDiscovered = len(files)
	if len(files) == 0 {
		p.Logger.Info("No source files found in %s", p.Config.ETL.DataDir)
		p.stage = StageDone
		return summary, nil
	}

	// PER_FILE
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			p.Logger.Warning("Run %s cancelled after %d records", summary.RunID, summary.RecordsWritten)
			summary.PerKeyArtifacts = loader.PerKeyArtifacts()
			return summary, err
		}

		p.stage = StagePerFile
		raws, err := extractor.Extract(path)
		if err != nil {
			summary.FilesSkipped++
			continue
		}
		summary.RecordsExtracted += len(raws)

		p.stage = StagePerRecord
		for _, raw := range raws {
			if err := p.processRecord(transformer, loader, raw, summary); err != nil {
				summary.PerKeyArtifacts = loader.PerKeyArtifacts()
				p.Logger.Error("Run %s: %v", summary.RunID, err)
				return summary, err
			}
		}
	}
	summary.PerKeyArtifacts = loader.PerKeyArtifacts()

	// FINALIZE
	p.stage = StageFinalize
	if summary.CombinedWritten, err = loader.WriteCombined(); err != nil {
		p.Logger.Error("Run %s: %v", summary.RunID, err)
		return summary, err
	}
	if summary.MonthlyArtifacts, err = loader.WriteMonthlyAggregates(); err != nil {
		p.Logger.Error("Run %s: %v", summary.RunID, err)
		return summary, err
	}

	p.stage = StageDone
	p.Logger.Info("Run %s done: %d files (%d skipped), %d records extracted, %d written, %d invalid, %d duplicate, %d artifacts",
		summary.RunID,
		summary.FilesDiscovered,
		summary.FilesSkipped,
		summary.RecordsExtracted,
		summary.RecordsWritten,
		summary.RecordsSkipped,
		summary.RecordsDuplicate,
		summary.ArtifactsWritten(),
	)
	return summary, nil
}

// -----------------------------------------------------------------------------

// processRecord normalizes, validates and persists one raw record. Only a
// persistence failure is returned.
func (p *Pipeline) processRecord(t *Transformer, l *Loader, raw models.MRawRecord, summary *models.MRunSummary) error {
	rec := t.Normalize(raw)

	if err := t.Validate(rec); err != nil {
		var invalid *helpers.RecordValidationError
		if errors.As(err, &invalid) {
			p.Logger.Warning("Skipping invalid row from %s: %v", raw.Source, err)
			summary.RecordsSkipped++
			return nil
		}
		return err
	}

	if day, err := time.Parse(models.TimestampLayout, rec.Timestamp); err == nil && !p.Calendar.IsTradingDay(day) {
		p.Logger.Debug("%s has a row on non-trading day %s", rec.Symbol, day.Format(time.DateOnly))
		summary.NonTradingDays++
	}

	written, err := l.WritePerKey(rec)
	if err != nil {
		return err
	}
	if written {
		summary.RecordsWritten++
	} else {
		summary.RecordsDuplicate++
	}
	return nil
}
