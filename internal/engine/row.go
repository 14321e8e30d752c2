package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
	"github.com/haricode-hub/rfp-ofsaa/internal/metrics"
	"github.com/haricode-hub/rfp-ofsaa/internal/parser"
)

const (
	msgInsufficient = "Insufficient content for analysis"
	errMarkerLimit  = 150
)

// RowProcessor runs the full retrieve-judge-parse-compose pipeline for a
// single requirement row. It never lets a failure escape: panics and errors
// are converted into error-marker output values so one bad row cannot take
// down its batch.
type RowProcessor struct {
	searcher domain.Searcher
	judge    *Judge
	cfg      config.EngineConfig
	logger   *zap.Logger
}

// NewRowProcessor creates a row processor.
func NewRowProcessor(searcher domain.Searcher, judge *Judge, cfg config.EngineConfig, logger *zap.Logger) *RowProcessor {
	return &RowProcessor{searcher: searcher, judge: judge, cfg: cfg, logger: logger}
}

// Process populates row.Output for every configured output column.
func (p *RowProcessor) Process(ctx context.Context, row *domain.RequirementRow, inputCols, outputCols []string, userPrompt string) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			metrics.RowsProcessed.WithLabelValues("error").Inc()
			p.logger.Error("Row processing panicked",
				zap.Int("row", row.Index),
				zap.Any("panic", r))
			fillAll(row, outputCols, errorMarker(fmt.Sprintf("%v", r)))
		}
	}()

	inputs := make(map[string]string, len(inputCols))
	var inputParts []string
	for _, col := range inputCols {
		val := strings.TrimSpace(row.Input[col])
		if val != "" {
			inputs[col] = val
			inputParts = append(inputParts, val)
		}
	}

	inputText := strings.Join(inputParts, " ")
	if len(strings.Fields(inputText)) < p.cfg.MinWordCount {
		metrics.RowsProcessed.WithLabelValues("skipped").Inc()
		p.logger.Warn("Row skipped, insufficient content", zap.Int("row", row.Index))
		fillAll(row, outputCols, msgInsufficient)
		return
	}

	query := p.buildQuery(inputs, inputCols)
	evidence := p.searcher.Search(ctx, query, row.Index)

	raw := p.judge.Judge(ctx, inputs, inputCols, evidence, userPrompt, outputCols)

	parsed := parser.Parse(raw, outputCols)
	parser.Compose(parsed, outputCols, evidence)

	if row.Output == nil {
		row.Output = make(map[string]string, len(outputCols))
	}
	for _, col := range outputCols {
		row.Output[col] = parsed.Columns[col]
	}

	elapsed := time.Since(started)
	metrics.RowsProcessed.WithLabelValues("analyzed").Inc()
	metrics.RowDuration.Observe(elapsed.Seconds())
	p.logger.Info("Row processed",
		zap.Int("row", row.Index),
		zap.Duration("elapsed", elapsed),
		zap.String("evidence_strength", string(evidence.Strength)))
}

// buildQuery extracts the longer words from the input fields, caps the term
// count, and prefixes the configured domain anchor to bias retrieval.
func (p *RowProcessor) buildQuery(inputs map[string]string, inputCols []string) string {
	var terms []string
	for _, col := range inputCols {
		val, ok := inputs[col]
		if !ok {
			continue
		}
		for _, w := range strings.Fields(val) {
			if len(w) >= p.cfg.MinTermLength {
				terms = append(terms, w)
			}
		}
	}
	if len(terms) > p.cfg.MaxQueryTerms {
		terms = terms[:p.cfg.MaxQueryTerms]
	}

	if p.cfg.QueryAnchor == "" {
		return strings.Join(terms, " ")
	}
	return p.cfg.QueryAnchor + " " + strings.Join(terms, " ")
}

func fillAll(row *domain.RequirementRow, outputCols []string, value string) {
	if row.Output == nil {
		row.Output = make(map[string]string, len(outputCols))
	}
	for _, col := range outputCols {
		row.Output[col] = value
	}
}

func errorMarker(msg string) string {
	if len(msg) > errMarkerLimit {
		msg = msg[:errMarkerLimit]
	}
	return fmt.Sprintf("Processing error: %s...", msg)
}
