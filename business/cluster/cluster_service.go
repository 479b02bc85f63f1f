package cluster

import (
	"fmt"
	"math"
	"sort"

	"examLens/domain"
)

// Similarity metrics over per-student indicator vectors.
const (
	MetricJaccard     = "jaccard"
	MetricCorrelation = "correlation"
)

// Config is explicit clustering configuration. Threshold and metric are
// never auto-tuned; under/over-clustering on small or noisy cohorts is an
// accepted limitation.
type Config struct {
	Metric     string
	Threshold  float64
	MinSupport int // min distinct students exhibiting an item before it is considered
}

func DefaultConfig() Config {
	return Config{
		Metric:     MetricJaccard,
		Threshold:  0.2,
		MinSupport: 2,
	}
}

type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	if cfg.Metric == "" {
		cfg.Metric = MetricJaccard
	}
	if cfg.MinSupport < 1 {
		cfg.MinSupport = 1
	}
	return &Service{cfg: cfg}
}

// Clusters groups rubric items into misconception clusters: pairs whose
// co-occurrence similarity clears the threshold become edges, and the
// connected components under union-find are the clusters. Zero edges is a
// degenerate-but-valid outcome and yields an empty list, not an error.
func (s *Service) Clusters(records []domain.DeductionRecord) ([]domain.Cluster, []domain.SimilarityPair, error) {
	incidence := make(map[string]map[string]bool)
	population := make(map[string]bool)
	for _, rec := range records {
		if rec.RubricItem == "" || rec.StudentID == "" {
			continue
		}
		students, ok := incidence[rec.RubricItem]
		if !ok {
			students = make(map[string]bool)
			incidence[rec.RubricItem] = students
		}
		students[rec.StudentID] = true
		population[rec.StudentID] = true
	}

	// stable integer ids: items sorted lexicographically
	items := make([]string, 0, len(incidence))
	for item, students := range incidence {
		if len(students) >= s.cfg.MinSupport {
			items = append(items, item)
		}
	}
	sort.Strings(items)

	type edge struct {
		a, b int
		sim  float64
	}

	var edges []edge
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sim := s.similarity(incidence[items[i]], incidence[items[j]], len(population))
			if sim >= s.cfg.Threshold {
				edges = append(edges, edge{a: i, b: j, sim: sim})
			}
		}
	}

	pairs := make([]domain.SimilarityPair, 0, len(edges))
	for _, e := range edges {
		pairs = append(pairs, domain.SimilarityPair{
			ItemA:      items[e.a],
			ItemB:      items[e.b],
			Similarity: e.sim,
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].ItemA != pairs[j].ItemA {
			return pairs[i].ItemA < pairs[j].ItemA
		}
		return pairs[i].ItemB < pairs[j].ItemB
	})

	if len(edges) == 0 {
		return []domain.Cluster{}, pairs, nil
	}

	uf := newUnionFind(len(items))
	for _, e := range edges {
		uf.union(e.a, e.b)
	}

	members := make(map[int][]int)
	for i := range items {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	// cohesion = mean similarity over realized edges only; non-edges were
	// never computed as cluster members
	edgeSum := make(map[int]float64)
	edgeCount := make(map[int]int)
	for _, e := range edges {
		root := uf.find(e.a)
		edgeSum[root] += e.sim
		edgeCount[root]++
	}

	var clusters []domain.Cluster
	for root, ids := range members {
		if len(ids) < 2 {
			continue // singletons are not clusters
		}
		labels := make([]string, 0, len(ids))
		support := make(map[string]bool)
		for _, id := range ids {
			labels = append(labels, items[id])
			for student := range incidence[items[id]] {
				support[student] = true
			}
		}
		sort.Strings(labels)
		clusters = append(clusters, domain.Cluster{
			Items:           labels,
			Cohesion:        edgeSum[root] / float64(edgeCount[root]),
			SupportStudents: len(support),
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Items) != len(clusters[j].Items) {
			return len(clusters[i].Items) > len(clusters[j].Items)
		}
		return clusters[i].Items[0] < clusters[j].Items[0]
	})
	for i := range clusters {
		clusters[i].Label = fmt.Sprintf("Misconception %d", i+1)
	}

	return clusters, pairs, nil
}

func (s *Service) similarity(a, b map[string]bool, population int) float64 {
	inter := 0
	for student := range a {
		if b[student] {
			inter++
		}
	}

	switch s.cfg.Metric {
	case MetricCorrelation:
		// Pearson correlation of two binary indicator vectors (phi)
		n := float64(population)
		nA, nB, nAB := float64(len(a)), float64(len(b)), float64(inter)
		den := math.Sqrt(nA * nB * (n - nA) * (n - nB))
		if den == 0 {
			return 0
		}
		return (n*nAB - nA*nB) / den
	default:
		union := len(a) + len(b) - inter
		if union == 0 {
			return 0
		}
		return float64(inter) / float64(union)
	}
}
