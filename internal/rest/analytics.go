package rest

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"examLens/business/analytics"
	"examLens/business/normalizer"
	"examLens/domain"
	"examLens/pkg/logger"
	"examLens/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	AnalyticsService interface {
		Report(ctx context.Context, headers []string, rows []map[string]string, opts analytics.ReportOptions) (*domain.Report, error)
		Normalize(headers []string, rows []map[string]string, columnMapping map[string]string) (*normalizer.Result, error)
		CacheKey(ctx context.Context, records []domain.DeductionRecord) (string, error)
	}

	// ReportCache is the optional memoization layer around the engine.
	ReportCache interface {
		Get(ctx context.Context, key string) (*domain.Report, bool, error)
		Set(ctx context.Context, key string, report *domain.Report) error
	}

	AnalyticsHandler struct {
		validate *validator.Validate
		service  AnalyticsService
		cache    ReportCache
		timeout  time.Duration
	}

	ReportRequest struct {
		Headers         []string            `json:"headers"`
		Rows            []map[string]string `json:"rows" validate:"required,min=1"`
		ColumnMapping   map[string]string   `json:"column_mapping"`
		ExamOrder       []string            `json:"exam_order"`
		IncludeUnmapped bool                `json:"include_unmapped"`
		AllowedConcepts []string            `json:"allowed_concepts"`
		TopN            int                 `json:"top_n" validate:"omitempty,min=1"`
		SkipCache       bool                `json:"skip_cache"`
	}

	NormalizeRequest struct {
		Headers       []string            `json:"headers"`
		Rows          []map[string]string `json:"rows" validate:"required,min=1"`
		ColumnMapping map[string]string   `json:"column_mapping"`
	}

	SuggestMappingRequest struct {
		Headers []string `json:"headers" validate:"required,min=1"`
	}

	NormalizeResponse struct {
		Records    []domain.DeductionRecord `json:"records"`
		Violations []domain.Violation       `json:"violations"`
	}
)

func NewAnalyticsHandler(service AnalyticsService, cache ReportCache) *AnalyticsHandler {
	return &AnalyticsHandler{
		validate: validator.New(),
		service:  service,
		cache:    cache,
		timeout:  30 * time.Second,
	}
}

func (h *AnalyticsHandler) Report(c echo.Context) error {
	start := time.Now()

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	headers := req.Headers
	if len(headers) == 0 {
		headers = deriveHeaders(req.Rows)
	}

	metrics.ReportRequests.Inc()

	// memoization lives here, outside the engine: the cache key is the
	// dataset fingerprint plus the mapping-store version
	var key string
	if h.cache != nil && !req.SkipCache {
		normalized, err := h.service.Normalize(headers, req.Rows, req.ColumnMapping)
		if err != nil {
			return h.reportError(c, err)
		}
		key, err = h.service.CacheKey(ctx, normalized.Clean())
		if err == nil {
			if cached, ok, cerr := h.cache.Get(ctx, key); cerr == nil && ok {
				metrics.ReportCacheLookups.WithLabelValues("hit").Inc()
				metrics.ReportLatency.Observe(time.Since(start).Seconds())
				return c.JSON(http.StatusOK, fres.Response.StatusOK(cached))
			}
			metrics.ReportCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	report, err := h.service.Report(ctx, headers, req.Rows, analytics.ReportOptions{
		ColumnMapping:   req.ColumnMapping,
		ExamOrder:       req.ExamOrder,
		IncludeUnmapped: req.IncludeUnmapped,
		AllowedConcepts: req.AllowedConcepts,
		TopN:            req.TopN,
	})
	if err != nil {
		return h.reportError(c, err)
	}

	if h.cache != nil && key != "" {
		if err := h.cache.Set(ctx, key, report); err != nil {
			logger.Warn("report_cache_write_failed", "error", err)
		}
	}

	metrics.ReportLatency.Observe(time.Since(start).Seconds())
	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}

func (h *AnalyticsHandler) Normalize(c echo.Context) error {
	var req NormalizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	headers := req.Headers
	if len(headers) == 0 {
		headers = deriveHeaders(req.Rows)
	}

	result, err := h.service.Normalize(headers, req.Rows, req.ColumnMapping)
	if err != nil {
		return h.reportError(c, err)
	}

	violations := result.Violations
	if violations == nil {
		violations = []domain.Violation{}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(NormalizeResponse{
		Records:    result.Records,
		Violations: violations,
	}))
}

func (h *AnalyticsHandler) SuggestMapping(c echo.Context) error {
	var req SuggestMappingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(normalizer.SuggestMapping(req.Headers)))
}

func (h *AnalyticsHandler) reportError(c echo.Context, err error) error {
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: schemaErr.Error()})
	}

	logger.Error("analytics_request_failed", "error", err)
	return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
}

// deriveHeaders recovers the column set from row keys when the client
// does not send headers explicitly.
func deriveHeaders(rows []map[string]string) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}
	headers := make([]string, 0, len(seen))
	for k := range seen {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}
