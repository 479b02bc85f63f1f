package analytics

import (
	"context"
	"testing"

	"examLens/business/cluster"
	"examLens/business/concept"
	"examLens/business/normalizer"
	"examLens/business/persistence"
	"examLens/business/recommend"
	"examLens/business/risk"
	"examLens/domain"
	"examLens/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, store concept.Store) *Service {
	t.Helper()
	return NewService(
		normalizer.NewService(),
		concept.NewService(store),
		persistence.NewService(),
		cluster.NewService(cluster.DefaultConfig()),
		recommend.NewService(0.2),
		risk.NewService(risk.NewLogisticModel()),
		0,
	)
}

func testHeaders() []string {
	return []string{"student_id", "exam_id", "question_id", "rubric_item", "points_lost"}
}

func row(student, exam, rubric, points string) map[string]string {
	return map[string]string{
		"student_id":  student,
		"exam_id":     exam,
		"question_id": "q1",
		"rubric_item": rubric,
		"points_lost": points,
	}
}

func testRows() []map[string]string {
	return []map[string]string{
		row("s1", "exam1", "Arrow direction", "2"),
		row("s2", "exam1", "Arrow direction", "2"),
		row("s1", "exam2", "Arrow direction", "1"),
		row("s2", "exam2", "Arrow direction", "3"),
		row("s3", "exam1", "Wrong nucleophile", "1"),
		row("s4", "exam1", "Wrong nucleophile", "2"),
		row("s4", "exam2", "Missing charge", "-1"), // flagged, filtered downstream
	}
}

func seededStore(t *testing.T) concept.Store {
	t.Helper()
	store := memory.NewConceptRepository()
	require.NoError(t, store.BulkSet(context.Background(), map[string]string{
		"Arrow direction":   "Mechanisms",
		"Wrong nucleophile": "Nucleophilicity",
	}))
	return store
}

func TestReport(t *testing.T) {
	svc := newTestService(t, seededStore(t))

	report, err := svc.Report(context.Background(), testHeaders(), testRows(), ReportOptions{})
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	assert.Equal(t, domain.ViolationNegativePoints, report.Violations[0].Kind)

	// six clean rows, all mapped
	assert.Equal(t, 6, report.Coverage.Rows)
	assert.Equal(t, 1.0, report.Coverage.Fraction)

	itemRates := make(map[string]domain.PersistenceResult)
	for _, pr := range report.ItemPersistence {
		itemRates[pr.Key] = pr
	}
	assert.Equal(t, 1.0, itemRates["Arrow direction"].Rate)
	assert.Equal(t, 0.0, itemRates["Wrong nucleophile"].Rate)

	require.NotEmpty(t, report.Recommendations)
	top := report.Recommendations[0]
	assert.Equal(t, "Mechanisms", top.Concept)
	assert.Equal(t, 16.0, top.ImpactScore) // 8 points x 2 students
	assert.Equal(t, domain.ActionReteach, top.Action)

	assert.Empty(t, report.OrderingProblem)
	assert.NotEmpty(t, report.Fingerprint)
}

func TestReport_Deterministic(t *testing.T) {
	svc := newTestService(t, seededStore(t))

	first, err := svc.Report(context.Background(), testHeaders(), testRows(), ReportOptions{})
	require.NoError(t, err)
	second, err := svc.Report(context.Background(), testHeaders(), testRows(), ReportOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReport_BadExamOrderDegrades(t *testing.T) {
	svc := newTestService(t, seededStore(t))

	report, err := svc.Report(context.Background(), testHeaders(), testRows(), ReportOptions{
		ExamOrder: []string{"exam1"}, // exam2 missing
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.OrderingProblem)
	assert.Empty(t, report.ItemPersistence)
	assert.Empty(t, report.Trajectory)
	assert.Empty(t, report.Transitions)
	assert.Empty(t, report.Risks)

	// components that do not depend on the order still run
	assert.NotEmpty(t, report.Recommendations)
	assert.Equal(t, 6, report.Coverage.Rows)
}

func TestReport_MissingColumnFailsPass(t *testing.T) {
	svc := newTestService(t, memory.NewConceptRepository())

	_, err := svc.Report(context.Background(), []string{"student_id"}, []map[string]string{{"student_id": "s1"}}, ReportOptions{})

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestFingerprint(t *testing.T) {
	a := domain.DeductionRecord{StudentID: "s1", ExamID: "e1", QuestionID: "q1", RubricItem: "A", PointsLost: 1}
	b := domain.DeductionRecord{StudentID: "s2", ExamID: "e1", QuestionID: "q2", RubricItem: "B", PointsLost: 2}

	assert.Equal(t,
		Fingerprint([]domain.DeductionRecord{a, b}),
		Fingerprint([]domain.DeductionRecord{b, a}),
		"row order must not change the fingerprint")

	assert.NotEqual(t,
		Fingerprint([]domain.DeductionRecord{a}),
		Fingerprint([]domain.DeductionRecord{b}))
}

func TestCacheKey_TracksMappingVersion(t *testing.T) {
	store := memory.NewConceptRepository()
	svc := newTestService(t, store)
	ctx := context.Background()

	records := []domain.DeductionRecord{
		{StudentID: "s1", ExamID: "e1", QuestionID: "q1", RubricItem: "A", PointsLost: 1},
	}

	before, err := svc.CacheKey(ctx, records)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "A", "Mechanisms"))

	after, err := svc.CacheKey(ctx, records)
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "a mapping change must invalidate memoized reports")
}
