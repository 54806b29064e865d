package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"issue-triage-pipeline/aggregate"
	"issue-triage-pipeline/export"
	"issue-triage-pipeline/ingest"
	"issue-triage-pipeline/models"
	"issue-triage-pipeline/pipeline"
	"issue-triage-pipeline/session"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handlers represents the HTTP handlers of the triage service.
type Handlers struct {
	pipeline           *pipeline.Service
	store              *session.Store
	translationEnabled bool
	defaultLimit       int
}

// NewHandlers creates new HTTP handlers.
func NewHandlers(p *pipeline.Service, store *session.Store, translationEnabled bool, defaultLimit int) *Handlers {
	return &Handlers{
		pipeline:           p,
		store:              store,
		translationEnabled: translationEnabled,
		defaultLimit:       ingest.ClampDisplayLimit(defaultLimit),
	}
}

// issueView is one row of the ranked table as rendered to clients. Scores
// are rounded to 3 decimals for display.
type issueView struct {
	DisplayText   string  `json:"display_text"`
	PriorityLevel string  `json:"priority_level"`
	PriorityScore float64 `json:"priority_score"`
	Occurrences   int     `json:"occurrences"`
	Degraded      bool    `json:"degraded"`
}

func toViews(issues []models.AggregatedIssue) []issueView {
	views := make([]issueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, issueView{
			DisplayText:   issue.DisplayText,
			PriorityLevel: issue.PriorityLevel,
			PriorityScore: export.Round3(issue.PriorityScore),
			Occurrences:   issue.Occurrences,
			Degraded:      issue.Degraded,
		})
	}
	return views
}

// HealthCheck handles health check requests.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "issue-triage-pipeline",
	})
}

// GetStatus returns the service status.
func (h *Handlers) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":             "issue-triage-pipeline",
		"classifier":          h.pipeline.SourceName(),
		"translation_enabled": h.translationEnabled,
		"runs_held":           h.store.Len(),
	})
}

// InspectDataset parses an upload and returns its columns and row count so
// callers can pick the text-bearing column before starting a run.
func (h *Handlers) InspectDataset(c *gin.Context) {
	dataset, ok := h.readUpload(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":   dataset.Columns,
		"row_count": len(dataset.Rows),
	})
}

// CreateRun ingests an upload and executes the pipeline on it.
func (h *Handlers) CreateRun(c *gin.Context) {
	dataset, ok := h.readUpload(c)
	if !ok {
		return
	}

	cfg := models.RunConfig{
		TextColumn:   c.PostForm("text_column"),
		SampleMode:   c.PostForm("sample_mode"),
		DisplayLimit: ingest.ClampDisplayLimit(atoiOr(c.PostForm("display_limit"), 0)),
	}
	if cfg.SampleMode == "" {
		cfg.SampleMode = models.SampleFull
	}
	if cfg.SampleMode == models.SampleCustom {
		cfg.SampleSize = atoiOr(c.PostForm("sample_size"), 0)
	}
	if cfg.TextColumn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text_column is required"})
		return
	}

	records, err := dataset.Records(cfg.TextColumn)
	if err != nil {
		h.renderError(c, err)
		return
	}

	records, err = ingest.Sample(records, cfg.SampleMode, cfg.SampleSize)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if cfg.SampleMode == models.SampleCustom {
		// Record the effective, clamped size.
		cfg.SampleSize = len(records)
	}

	result, err := h.pipeline.Run(c.Request.Context(), records, cfg)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.store.Put(result)

	c.JSON(http.StatusOK, gin.H{
		"run_id": result.ID,
		"stats":  result.Stats,
		"issues": toViews(capRows(result.Issues, cfg.DisplayLimit)),
	})
}

// GetRun returns a run's configuration and summary statistics.
func (h *Handlers) GetRun(c *gin.Context) {
	result, ok := h.lookupRun(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":     result.ID,
		"created_at": result.CreatedAt,
		"config":     result.Config,
		"stats":      result.Stats,
	})
}

// GetRunIssues returns the filtered ranked table of a run.
func (h *Handlers) GetRunIssues(c *gin.Context) {
	result, ok := h.lookupRun(c)
	if !ok {
		return
	}

	filtered := aggregate.Filter(result.Issues, filterOptions(c))

	limit := ingest.ClampDisplayLimit(atoiOr(c.Query("limit"), result.Config.DisplayLimit))
	c.JSON(http.StatusOK, gin.H{
		"run_id":   result.ID,
		"total":    len(filtered),
		"returned": min(limit, len(filtered)),
		"issues":   toViews(capRows(filtered, limit)),
	})
}

// ExportRun streams the filtered table as a timestamped CSV download.
func (h *Handlers) ExportRun(c *gin.Context) {
	result, ok := h.lookupRun(c)
	if !ok {
		return
	}

	filtered := aggregate.Filter(result.Issues, filterOptions(c))

	filename := export.Filename(time.Now().UTC())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCSV(c.Writer, filtered); err != nil {
		log.WithError(err).Error("failed to write CSV export")
		c.Status(http.StatusInternalServerError)
	}
}

func (h *Handlers) readUpload(c *gin.Context) (*ingest.Dataset, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return nil, false
	}
	defer file.Close()

	dataset, err := ingest.Parse(file, fileHeader.Filename)
	if err != nil {
		h.renderError(c, err)
		return nil, false
	}
	return dataset, true
}

func (h *Handlers) lookupRun(c *gin.Context) (*models.RunResult, bool) {
	result, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return nil, false
	}
	return result, true
}

func (h *Handlers) renderError(c *gin.Context, err error) {
	if errors.Is(err, ingest.ErrRejected) {
		log.WithError(err).Warn("rejecting upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.WithError(err).Error("pipeline run failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func filterOptions(c *gin.Context) aggregate.FilterOptions {
	return aggregate.FilterOptions{
		MinScore:       atofOr(c.Query("min_score"), 0),
		MinOccurrences: atoiOr(c.Query("min_occurrences"), 0),
		Contains:       c.Query("q"),
	}
}

func capRows(issues []models.AggregatedIssue, limit int) []models.AggregatedIssue {
	if limit > 0 && len(issues) > limit {
		return issues[:limit]
	}
	return issues
}

func atoiOr(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return fallback
}

func atofOr(value string, fallback float64) float64 {
	if value == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return fallback
}
