package pipeline

import (
	"context"
	"time"

	"issue-triage-pipeline/aggregate"
	"issue-triage-pipeline/classifier"
	"issue-triage-pipeline/metrics"
	"issue-triage-pipeline/models"
	"issue-triage-pipeline/normalize"
	"issue-triage-pipeline/translate"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// Publisher receives a summary of every completed run. Publishing is
// best-effort: a failure is logged and never fails the run.
type Publisher interface {
	Publish(message interface{}) error
}

// RunSummary is the message published after a completed run.
type RunSummary struct {
	RunID       string          `json:"run_id"`
	Source      string          `json:"source"`
	Stats       models.RunStats `json:"stats"`
	DisplayLang string          `json:"display_lang"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Service executes the scoring-and-aggregation pipeline. All collaborators
// are injected; the service holds no hidden global state.
type Service struct {
	classifier  classifier.Client
	translator  translate.Translator
	pivotLang   string
	displayLang string
	publisher   Publisher
}

// NewService creates a pipeline service. translator may be a translate.Noop
// when translation is disabled; publisher may be nil when publishing is not
// configured.
func NewService(cls classifier.Client, translator translate.Translator, pivotLang, displayLang string, publisher Publisher) *Service {
	return &Service{
		classifier:  cls,
		translator:  translator,
		pivotLang:   pivotLang,
		displayLang: displayLang,
		publisher:   publisher,
	}
}

// SourceName exposes the classifier provider label for status reporting.
func (s *Service) SourceName() string {
	return s.classifier.SourceName()
}

// Run transforms raw records into a ranked, deduplicated result table.
// Records are expected in input order; sampling has already been applied.
func (s *Service) Run(ctx context.Context, records []models.IssueRecord, cfg models.RunConfig) (*models.RunResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	logger := log.WithField("run_id", runID).WithField("records", len(records))
	logger.Info("starting pipeline run")

	scored := s.scoreRecords(ctx, records)

	issues := aggregate.Aggregate(scored)
	stats := aggregate.Stats(issues, len(scored))

	result := &models.RunResult{
		ID:        runID,
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Issues:    issues,
		Stats:     stats,
	}

	s.publishSummary(result)

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	metrics.RunDurationSeconds.Observe(time.Since(start).Seconds())
	logger.WithField("unique_issues", stats.UniqueIssues).
		WithField("degraded", stats.DegradedIssues).
		Info("pipeline run complete")

	return result, nil
}

func (s *Service) scoreRecords(ctx context.Context, records []models.IssueRecord) []models.ScoredRecord {
	scored := make([]models.ScoredRecord, len(records))

	// Normalize and pivot-translate up front so the classifier sees one
	// batch of model-ready texts.
	pivotTexts := make([]string, len(records))
	for i, rec := range records {
		cleaned := normalize.Clean(rec.RawText)
		scored[i] = models.ScoredRecord{
			Index:       rec.Index,
			RawText:     rec.RawText,
			DisplayText: cleaned,
		}

		if cleaned == "" {
			continue
		}

		pivot, degraded := s.translator.Translate(ctx, cleaned, s.pivotLang)
		if degraded {
			scored[i].TranslateDegraded = true
			metrics.TranslateDegradedTotal.Inc()
		}
		pivotTexts[i] = pivot
	}

	// Batch-score the non-empty texts in one model call. Empty texts never
	// reach the model: they get the fallback zero score directly.
	indices := make([]int, 0, len(records))
	batch := make([]string, 0, len(records))
	for i, text := range pivotTexts {
		if text != "" {
			indices = append(indices, i)
			batch = append(batch, text)
		}
	}

	results := s.classifier.ScoreBatch(ctx, batch)
	for pos, i := range indices {
		scored[i].PriorityScore = results[pos].Score
		scored[i].ScoreDegraded = results[pos].Degraded
	}
	for i := range scored {
		if pivotTexts[i] == "" {
			scored[i].ScoreDegraded = true
		}
		scored[i].PriorityLevel = Label(scored[i].PriorityScore)

		if scored[i].ScoreDegraded {
			metrics.RowsScoredTotal.WithLabelValues("degraded").Inc()
		} else {
			metrics.RowsScoredTotal.WithLabelValues("ok").Inc()
		}
	}

	// Display translation happens after scoring so the grouping key is the
	// text users actually see.
	if s.displayLang != "" && s.displayLang != s.pivotLang {
		for i := range scored {
			if scored[i].DisplayText == "" {
				continue
			}
			display, degraded := s.translator.Translate(ctx, scored[i].DisplayText, s.displayLang)
			if degraded {
				scored[i].TranslateDegraded = true
				metrics.TranslateDegradedTotal.Inc()
			}
			scored[i].DisplayText = display
		}
	}

	return scored
}

func (s *Service) publishSummary(result *models.RunResult) {
	if s.publisher == nil {
		return
	}

	summary := RunSummary{
		RunID:       result.ID,
		Source:      s.classifier.SourceName(),
		Stats:       result.Stats,
		DisplayLang: s.displayLang,
		CreatedAt:   result.CreatedAt,
	}
	if err := s.publisher.Publish(summary); err != nil {
		metrics.PublishErrorTotal.Inc()
		log.WithError(err).Warn("failed to publish run summary")
	}
}
