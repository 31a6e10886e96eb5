// Package reports turns the analytics snapshot into a natural-language
// report through an LLM.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/ai/llm"
	"github.com/jordanlanch/adcreativelab/pkg/analytics"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/jordanlanch/adcreativelab/pkg/metrics"
)

// DefaultTimeout bounds a report when none is configured.
const DefaultTimeout = 60 * time.Second

// MaxQuestionLength caps the question sent to the model.
const MaxQuestionLength = 2000

const serviceName = "report generator"

// ErrNotConfigured is returned when no LLM client is available.
var ErrNotConfigured = errors.New("no LLM configured")

// StatsSource supplies the aggregate snapshot a report is written from.
type StatsSource interface {
	Stats(ctx context.Context) (*analytics.Stats, error)
}

// Report is a generated answer together with the data it was based on.
type Report struct {
	Question    string           `json:"question"`
	Answer      string           `json:"answer"`
	Snapshot    *analytics.Stats `json:"snapshot"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Generator writes lab reports
type Generator struct {
	llm     llm.LLMClient
	stats   StatsSource
	timeout time.Duration
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewGenerator creates a report generator. A nil client makes every call
// fail with an external service error.
func NewGenerator(client llm.LLMClient, stats StatsSource, timeout time.Duration, m *metrics.Metrics, log logger.Logger) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &Generator{
		llm:     client,
		stats:   stats,
		timeout: timeout,
		metrics: m,
		log:     log.With("component", "reports"),
	}
}

func validateQuestion(question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", domain.NewValidationError("question is required")
	}
	if len(q) > MaxQuestionLength {
		return "", domain.NewValidationError(fmt.Sprintf("question must be at most %d characters", MaxQuestionLength))
	}
	return q, nil
}

// prepare validates the question and builds the prompt from a fresh snapshot.
func (g *Generator) prepare(ctx context.Context, question string) (string, string, *analytics.Stats, error) {
	q, err := validateQuestion(question)
	if err != nil {
		return "", "", nil, err
	}
	if g.llm == nil {
		g.metrics.RecordReport(false)
		return "", "", nil, domain.NewExternalServiceError(serviceName, ErrNotConfigured)
	}

	snapshot, err := g.stats.Stats(ctx)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to collect stats: %w", err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode stats: %w", err)
	}
	return q, llm.ReportPrompt(q, string(data)), snapshot, nil
}

// Generate answers question from the current stats.
func (g *Generator) Generate(ctx context.Context, question string) (*Report, error) {
	q, prompt, snapshot, err := g.prepare(ctx, question)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	answer, err := g.llm.Complete(ctx, prompt, llm.CreativeAnalystSystemPrompt)
	if err != nil {
		g.metrics.RecordReport(false)
		g.log.Error("report generation failed", "error", err, "duration", time.Since(start))
		return nil, domain.NewExternalServiceError(serviceName, err)
	}

	g.metrics.RecordReport(true)
	g.log.Info("report generated", "duration", time.Since(start), "chars", len(answer))
	return &Report{
		Question:    q,
		Answer:      answer,
		Snapshot:    snapshot,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// Stream answers question chunk by chunk. emit is called for every chunk;
// an emit error (the client went away) stops the stream and is returned as is.
func (g *Generator) Stream(ctx context.Context, question string, emit func(chunk string) error) error {
	_, prompt, _, err := g.prepare(ctx, question)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	chunks, errs := g.llm.StreamChat(ctx, llm.ChatRequest{
		Messages: llm.Messages(prompt, llm.CreativeAnalystSystemPrompt),
	})

	for chunk := range chunks {
		if err := emit(chunk); err != nil {
			cancel()
			g.log.Warn("report stream aborted", "error", err)
			return err
		}
	}

	if err := <-errs; err != nil {
		g.metrics.RecordReport(false)
		g.log.Error("report stream failed", "error", err)
		return domain.NewExternalServiceError(serviceName, err)
	}

	g.metrics.RecordReport(true)
	return nil
}
