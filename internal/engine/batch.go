package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
	"github.com/haricode-hub/rfp-ofsaa/internal/metrics"
)

// Orchestrator fans requirement rows out to the row processor in fixed-size
// batches. All rows of a batch run concurrently and the next batch starts
// only after the previous one fully completes. Each goroutine writes only to
// its own row, so output order always matches input order.
type Orchestrator struct {
	processor *RowProcessor
	cfg       config.EngineConfig
	logger    *zap.Logger
}

// NewOrchestrator creates a batch orchestrator.
func NewOrchestrator(processor *RowProcessor, cfg config.EngineConfig, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{processor: processor, cfg: cfg, logger: logger}
}

// Run processes every row, populating row.Output in place.
func (o *Orchestrator) Run(ctx context.Context, rows []*domain.RequirementRow, inputCols, outputCols []string, userPrompt string) {
	total := len(rows)
	o.logger.Info("Starting batch processing",
		zap.Int("total_rows", total),
		zap.Int("batch_size", o.cfg.BatchSize))

	for start := 0; start < total; start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for _, row := range rows[start:end] {
			wg.Add(1)
			go func(r *domain.RequirementRow) {
				defer wg.Done()
				o.processor.Process(ctx, r, inputCols, outputCols, userPrompt)
			}(row)
		}
		wg.Wait()

		metrics.BatchesCompleted.Inc()
		o.logger.Info("Batch completed",
			zap.Int("rows_completed", end),
			zap.Int("total_rows", total))
	}
}
