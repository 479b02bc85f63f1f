package cluster

import (
	"testing"

	"examLens/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(student, item string) domain.DeductionRecord {
	return domain.DeductionRecord{
		StudentID:  student,
		ExamID:     "e1",
		QuestionID: "q1",
		RubricItem: item,
		PointsLost: 1,
	}
}

// overlap builds records where each listed student exhibits every listed item.
func overlap(items []string, students ...string) []domain.DeductionRecord {
	var records []domain.DeductionRecord
	for _, s := range students {
		for _, item := range items {
			records = append(records, rec(s, item))
		}
	}
	return records
}

func TestClusters_TransitiveClosure(t *testing.T) {
	// A and B co-occur for s1,s2; B and C co-occur for s3,s4. A never
	// co-occurs with C directly, but union-find must still group all three.
	var records []domain.DeductionRecord
	records = append(records, overlap([]string{"A", "B"}, "s1", "s2")...)
	records = append(records, overlap([]string{"B", "C"}, "s3", "s4")...)

	svc := NewService(Config{Metric: MetricJaccard, Threshold: 0.3, MinSupport: 2})
	clusters, pairs, err := svc.Clusters(records)
	require.NoError(t, err)

	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"A", "B", "C"}, clusters[0].Items)
	assert.Equal(t, "Misconception 1", clusters[0].Label)
	assert.Equal(t, 4, clusters[0].SupportStudents)

	// cohesion is the mean over realized edges: A-B at 2/2=... A:{s1,s2},
	// B:{s1..s4} → jaccard 2/4 = 0.5; same for B-C; A-C = 0/4 below threshold
	assert.InDelta(t, 0.5, clusters[0].Cohesion, 1e-12)
	assert.Len(t, pairs, 2)
}

func TestClusters_SingletonsNotReported(t *testing.T) {
	var records []domain.DeductionRecord
	records = append(records, overlap([]string{"A", "B"}, "s1", "s2")...)
	// C shared by nobody
	records = append(records, rec("s3", "C"), rec("s4", "C"))

	svc := NewService(DefaultConfig())
	clusters, _, err := svc.Clusters(records)
	require.NoError(t, err)

	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"A", "B"}, clusters[0].Items)
}

func TestClusters_NoEdgesIsEmptyNotError(t *testing.T) {
	records := []domain.DeductionRecord{
		rec("s1", "A"), rec("s2", "A"),
		rec("s3", "B"), rec("s4", "B"),
	}

	svc := NewService(DefaultConfig())
	clusters, pairs, err := svc.Clusters(records)
	require.NoError(t, err)
	assert.Empty(t, clusters)
	assert.Empty(t, pairs)
}

func TestClusters_MinSupportFilter(t *testing.T) {
	// only s1 has both items; min support 2 keeps them out entirely
	records := overlap([]string{"A", "B"}, "s1")

	svc := NewService(Config{Metric: MetricJaccard, Threshold: 0.1, MinSupport: 2})
	clusters, pairs, err := svc.Clusters(records)
	require.NoError(t, err)
	assert.Empty(t, clusters)
	assert.Empty(t, pairs)
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := map[string]bool{"s1": true, "s2": true, "s3": true}
	b := map[string]bool{"s2": true, "s3": true, "s4": true}

	for _, metric := range []string{MetricJaccard, MetricCorrelation} {
		svc := NewService(Config{Metric: metric, Threshold: 0.1, MinSupport: 1})
		assert.Equal(t, svc.similarity(a, b, 5), svc.similarity(b, a, 5), metric)
	}
}

func TestSimilarity_Jaccard(t *testing.T) {
	svc := NewService(DefaultConfig())

	a := map[string]bool{"s1": true, "s2": true}
	b := map[string]bool{"s2": true, "s3": true}
	assert.InDelta(t, 1.0/3.0, svc.similarity(a, b, 3), 1e-12)
}

func TestSimilarity_CorrelationBounds(t *testing.T) {
	svc := NewService(Config{Metric: MetricCorrelation, Threshold: 0.3, MinSupport: 1})

	identical := map[string]bool{"s1": true, "s2": true}
	assert.InDelta(t, 1.0, svc.similarity(identical, identical, 4), 1e-12)

	disjoint := map[string]bool{"s3": true, "s4": true}
	assert.InDelta(t, -1.0, svc.similarity(identical, disjoint, 4), 1e-12)

	// degenerate population (every student has both) has zero variance
	assert.Equal(t, 0.0, svc.similarity(identical, identical, 2))
}

func TestClusters_Deterministic(t *testing.T) {
	var records []domain.DeductionRecord
	records = append(records, overlap([]string{"A", "B"}, "s1", "s2")...)
	records = append(records, overlap([]string{"C", "D"}, "s3", "s4")...)

	svc := NewService(DefaultConfig())
	first, firstPairs, err := svc.Clusters(records)
	require.NoError(t, err)
	second, secondPairs, err := svc.Clusters(records)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstPairs, secondPairs)
}
