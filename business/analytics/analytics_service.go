package analytics

import (
	"context"
	"errors"
	"fmt"

	"examLens/business/cluster"
	"examLens/business/concept"
	"examLens/business/normalizer"
	"examLens/business/persistence"
	"examLens/business/recommend"
	"examLens/business/risk"
	"examLens/domain"
	"examLens/pkg/logger"
)

// ReportOptions scope one full pipeline pass.
type ReportOptions struct {
	// ColumnMapping maps canonical fields to source columns; nil means the
	// headers are already canonical.
	ColumnMapping map[string]string
	// ExamOrder is an explicit total order of exam ids; empty means
	// lexicographic.
	ExamOrder []string
	// IncludeUnmapped opts the reserved "Unmapped" concept into
	// recommendations.
	IncludeUnmapped bool
	// AllowedConcepts optionally restricts recommendations to a whitelist.
	AllowedConcepts []string
	// TopN limits the recommendation list; 0 applies the configured default.
	TopN int
}

// Service runs the full analytics pipeline: normalize → resolve concepts →
// {persistence, clustering} → recommendations → predictive risk. Pure and
// synchronous; identical inputs over an identical mapping snapshot produce
// identical reports, which is what makes external memoization safe.
type Service struct {
	normalizer  *normalizer.Service
	concepts    *concept.Service
	persistence *persistence.Service
	clusters    *cluster.Service
	recommender *recommend.Service
	risks       *risk.Service
	defaultTopN int
}

func NewService(
	normalizerSvc *normalizer.Service,
	conceptSvc *concept.Service,
	persistenceSvc *persistence.Service,
	clusterSvc *cluster.Service,
	recommendSvc *recommend.Service,
	riskSvc *risk.Service,
	defaultTopN int,
) *Service {
	return &Service{
		normalizer:  normalizerSvc,
		concepts:    conceptSvc,
		persistence: persistenceSvc,
		clusters:    clusterSvc,
		recommender: recommendSvc,
		risks:       riskSvc,
		defaultTopN: defaultTopN,
	}
}

// Concepts exposes the mapping service for the handlers that manage the
// store directly.
func (s *Service) Concepts() *concept.Service {
	return s.concepts
}

// Normalize runs schema validation and canonicalization only.
func (s *Service) Normalize(headers []string, rows []map[string]string, columnMapping map[string]string) (*normalizer.Result, error) {
	m, err := s.mapping(columnMapping)
	if err != nil {
		return nil, err
	}
	return s.normalizer.Normalize(headers, rows, m)
}

// CacheKey derives the memoization key for a dataset: its fingerprint
// combined with the current mapping-store version.
func (s *Service) CacheKey(ctx context.Context, records []domain.DeductionRecord) (string, error) {
	version, err := s.concepts.SnapshotVersion(ctx)
	if err != nil {
		return "", err
	}
	return Fingerprint(records) + ":" + version, nil
}

// Report runs the whole pipeline over one raw tabular upload. A missing
// required column fails the pass; a bad exam order disables only the
// sections that depend on it; everything else degrades per row or per
// concept.
func (s *Service) Report(ctx context.Context, headers []string, rows []map[string]string, opts ReportOptions) (*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	tid := TraceIDFromContext(ctx)

	m, err := s.mapping(opts.ColumnMapping)
	if err != nil {
		return nil, err
	}

	normalized, err := s.normalizer.Normalize(headers, rows, m)
	if err != nil {
		PipelineSectionsTotal.WithLabelValues("normalize", "error").Inc()
		return nil, err
	}
	PipelineSectionsTotal.WithLabelValues("normalize", "ok").Inc()

	// downstream invariants (non-negative numeric points, non-blank ids)
	// only hold for violation-free rows; flagged rows stay visible in the
	// violation list
	clean := normalized.Clean()

	resolved, coverage, err := s.concepts.Resolve(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("resolve concepts: %w", err)
	}

	report := &domain.Report{
		Fingerprint: Fingerprint(clean),
		Violations:  normalized.Violations,
		Coverage:    coverage,
	}

	order, err := persistence.BuildOrder(resolved, opts.ExamOrder)
	var ordErr *domain.OrderingError
	switch {
	case err == nil:
		report.ItemPersistence = s.persistence.Persistence(resolved, persistence.ByRubricItem, order)
		report.ConceptPersistence = s.persistence.Persistence(resolved, persistence.ByConcept, order)
		report.Trajectory = s.persistence.Trajectory(resolved, persistence.ByRubricItem, order)
		report.Transitions = s.persistence.Transitions(resolved, persistence.ByRubricItem, order)
		PipelineSectionsTotal.WithLabelValues("persistence", "ok").Inc()
	case errors.As(err, &ordErr):
		// fatal to persistence, trajectory and risk only; the rest of the
		// report still runs
		report.OrderingProblem = ordErr.Error()
		report.RiskProblem = "exam order invalid"
		PipelineSectionsTotal.WithLabelValues("persistence", "skipped").Inc()
		logger.Warn("exam_order_invalid", "trace_id", tid, "problem", ordErr.Error())
	default:
		return nil, fmt.Errorf("build exam order: %w", err)
	}

	clusters, pairs, err := s.clusters.Clusters(resolved)
	if err != nil {
		return nil, fmt.Errorf("cluster rubric items: %w", err)
	}
	report.Clusters = clusters
	report.Similarities = pairs
	PipelineSectionsTotal.WithLabelValues("cluster", "ok").Inc()

	topN := opts.TopN
	if topN == 0 {
		topN = s.defaultTopN
	}
	report.Recommendations = s.recommender.Recommend(resolved, report.ConceptPersistence, recommend.Options{
		IncludeUnmapped: opts.IncludeUnmapped,
		AllowedConcepts: opts.AllowedConcepts,
		TopN:            topN,
	})
	PipelineSectionsTotal.WithLabelValues("recommend", "ok").Inc()

	if order != nil && s.risks.Available() {
		assessment, err := s.risks.Predict(resolved, order)
		switch {
		case errors.Is(err, domain.ErrInsufficientData):
			report.RiskProblem = err.Error()
			PipelineSectionsTotal.WithLabelValues("risk", "skipped").Inc()
		case err != nil:
			return nil, fmt.Errorf("predict risks: %w", err)
		default:
			report.Risks = assessment.Estimates
			report.RiskCoefficients = assessment.Coefficients
			report.SkippedConcepts = assessment.Skipped
			PipelineSectionsTotal.WithLabelValues("risk", "ok").Inc()
		}
	} else if order != nil {
		report.RiskProblem = "predictive backend unavailable"
	}

	logger.Info("report_built",
		"trace_id", tid,
		"rows", len(rows),
		"violations", len(report.Violations),
		"concept_coverage", coverage.Fraction,
		"clusters", len(report.Clusters),
		"recommendations", len(report.Recommendations),
		"risk_estimates", len(report.Risks),
	)

	return report, nil
}

func (s *Service) mapping(columns map[string]string) (*normalizer.Mapping, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	return normalizer.NewMapping(columns)
}
