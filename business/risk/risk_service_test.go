package risk

import (
	"testing"

	"examLens/business/persistence"
	"examLens/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(student, exam, concept string, points float64) domain.DeductionRecord {
	return domain.DeductionRecord{
		StudentID:  student,
		ExamID:     exam,
		QuestionID: "q1",
		RubricItem: concept + " item",
		PointsLost: points,
		Concept:    concept,
	}
}

// trainingSet: s1 keeps repeating Algebra with heavy deductions, s2 made
// one light Algebra mistake and moved on to Geometry.
func trainingSet() []domain.DeductionRecord {
	return []domain.DeductionRecord{
		rec("s1", "e1", "Algebra", 3),
		rec("s1", "e2", "Algebra", 3),
		rec("s1", "e3", "Algebra", 3),
		rec("s2", "e1", "Algebra", 1),
		rec("s2", "e2", "Geometry", 1),
		rec("s2", "e3", "Geometry", 1),
	}
}

func mustOrder(t *testing.T, records []domain.DeductionRecord) *persistence.Order {
	t.Helper()
	order, err := persistence.BuildOrder(records, nil)
	require.NoError(t, err)
	return order
}

func TestPredict(t *testing.T) {
	records := trainingSet()
	svc := NewService(NewLogisticModel())
	require.True(t, svc.Available())

	assessment, err := svc.Predict(records, mustOrder(t, records))
	require.NoError(t, err)

	estimates := make(map[string]map[string]domain.RiskEstimate)
	for _, est := range assessment.Estimates {
		assert.GreaterOrEqual(t, est.Probability, 0.0)
		assert.LessOrEqual(t, est.Probability, 1.0)
		assert.Contains(t, []string{domain.ConfidenceLow, domain.ConfidenceMedium, domain.ConfidenceHigh}, est.Confidence)
		if estimates[est.Concept] == nil {
			estimates[est.Concept] = make(map[string]domain.RiskEstimate)
		}
		estimates[est.Concept][est.StudentID] = est
	}

	algebra := estimates["Algebra"]
	require.Len(t, algebra, 2)
	assert.Greater(t, algebra["s1"].Probability, algebra["s2"].Probability,
		"the student who keeps repeating the mistake must score higher")

	// coefficients are exposed, not hidden
	require.NotEmpty(t, assessment.Coefficients)
	concepts := make(map[string]domain.ConceptCoefficients)
	for _, c := range assessment.Coefficients {
		concepts[c.Concept] = c
	}
	algebraFit, ok := concepts["Algebra"]
	require.True(t, ok)
	assert.Equal(t, 4, algebraFit.TrainingRows)
	assert.InDelta(t, 0.5, algebraFit.PositiveFraction, 1e-12)
}

func TestPredict_Deterministic(t *testing.T) {
	records := trainingSet()
	svc := NewService(NewLogisticModel())
	order := mustOrder(t, records)

	first, err := svc.Predict(records, order)
	require.NoError(t, err)
	second, err := svc.Predict(records, order)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPredict_DegenerateLabelsSkipped(t *testing.T) {
	// every student repeats "Spelling" on every exam: labels have no
	// variation, so the concept is excluded, never defaulted to 0.5
	records := []domain.DeductionRecord{
		rec("s1", "e1", "Spelling", 1),
		rec("s1", "e2", "Spelling", 1),
		rec("s2", "e1", "Spelling", 1),
		rec("s2", "e2", "Spelling", 1),
	}

	svc := NewService(NewLogisticModel())
	assessment, err := svc.Predict(records, mustOrder(t, records))
	require.NoError(t, err)

	assert.Empty(t, assessment.Estimates)
	assert.Empty(t, assessment.Coefficients)
	require.Len(t, assessment.Skipped, 1)
	assert.Equal(t, "Spelling", assessment.Skipped[0].Concept)
	assert.Equal(t, "no variation in outcome labels", assessment.Skipped[0].Reason)
}

func TestPredict_SingleExamIsInsufficient(t *testing.T) {
	records := []domain.DeductionRecord{
		rec("s1", "e1", "Algebra", 1),
		rec("s2", "e1", "Algebra", 2),
	}

	svc := NewService(NewLogisticModel())
	_, err := svc.Predict(records, mustOrder(t, records))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestPredict_UnmappedExcluded(t *testing.T) {
	records := []domain.DeductionRecord{
		rec("s1", "e1", domain.UnmappedConcept, 1),
		rec("s1", "e2", domain.UnmappedConcept, 1),
		rec("s2", "e1", domain.UnmappedConcept, 1),
		rec("s2", "e2", domain.UnmappedConcept, 1),
	}

	svc := NewService(NewLogisticModel())
	assessment, err := svc.Predict(records, mustOrder(t, records))
	require.NoError(t, err)
	assert.Empty(t, assessment.Estimates)
	assert.Empty(t, assessment.Skipped)
}

func TestUnavailableModel(t *testing.T) {
	svc := NewService(UnavailableModel{})
	assert.False(t, svc.Available())

	records := trainingSet()
	assessment, err := svc.Predict(records, mustOrder(t, records))
	require.NoError(t, err)
	assert.Empty(t, assessment.Estimates)

	_, err = UnavailableModel{}.Fit(nil, nil)
	assert.Error(t, err)
}

func TestLogisticFit_SeparatesOnFeature(t *testing.T) {
	x := [][featureDim]float64{
		{1, 0, 0}, {1, 0, 0}, {1, 0, 0},
		{1, 1, 2}, {1, 1, 2}, {1, 1, 2},
	}
	y := []float64{0, 0, 0, 1, 1, 1}

	beta, err := NewLogisticModel().Fit(x, y)
	require.NoError(t, err)
	assert.Greater(t, beta[1], 0.0, "prior_seen must push risk up")

	low := sigmoid(dot(beta, [featureDim]float64{1, 0, 0}))
	high := sigmoid(dot(beta, [featureDim]float64{1, 1, 2}))
	assert.Less(t, low, 0.5)
	assert.Greater(t, high, 0.5)
}

func TestConfidenceBucket(t *testing.T) {
	assert.Equal(t, domain.ConfidenceHigh, confidenceBucket(0.9))
	assert.Equal(t, domain.ConfidenceHigh, confidenceBucket(0.1))
	assert.Equal(t, domain.ConfidenceMedium, confidenceBucket(0.65))
	assert.Equal(t, domain.ConfidenceMedium, confidenceBucket(0.38))
	assert.Equal(t, domain.ConfidenceLow, confidenceBucket(0.5))
	assert.Equal(t, domain.ConfidenceLow, confidenceBucket(0.55))
}
