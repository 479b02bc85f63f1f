package recommend

import (
	"sort"

	"examLens/domain"
)

// Options scope one ranking pass. The zero value excludes "Unmapped",
// applies no whitelist, and returns every concept.
type Options struct {
	IncludeUnmapped bool
	AllowedConcepts []string // optional whitelist
	TopN            int      // 0 means no limit
}

// Service ranks concepts by impact and persistence. It never re-derives
// either quantity itself: records arrive already concept-resolved and
// persistence rates come from the persistence analyzer.
type Service struct {
	persistenceCutoff float64
}

func NewService(persistenceCutoff float64) *Service {
	return &Service{persistenceCutoff: persistenceCutoff}
}

// Recommend reduces resolved records plus concept persistence rates into a
// ranked recommendation list. Ordering is a stable total order: impact
// desc, persistence desc, concept label asc.
func (s *Service) Recommend(records []domain.DeductionRecord, conceptPersistence []domain.PersistenceResult, opts Options) []domain.Recommendation {
	rates := make(map[string]float64, len(conceptPersistence))
	for _, pr := range conceptPersistence {
		rates[pr.Key] = pr.Rate
	}

	var allowed map[string]bool
	if len(opts.AllowedConcepts) > 0 {
		allowed = make(map[string]bool, len(opts.AllowedConcepts))
		for _, c := range opts.AllowedConcepts {
			allowed[c] = true
		}
	}

	type agg struct {
		points   float64
		students map[string]bool
	}
	byConcept := make(map[string]*agg)
	for _, rec := range records {
		if rec.Concept == "" {
			continue
		}
		if rec.Concept == domain.UnmappedConcept && !opts.IncludeUnmapped {
			continue
		}
		if allowed != nil && !allowed[rec.Concept] {
			continue
		}
		a, ok := byConcept[rec.Concept]
		if !ok {
			a = &agg{students: make(map[string]bool)}
			byConcept[rec.Concept] = a
		}
		a.points += rec.PointsLost
		if rec.StudentID != "" {
			a.students[rec.StudentID] = true
		}
	}

	recs := make([]domain.Recommendation, 0, len(byConcept))
	for concept, a := range byConcept {
		r := domain.Recommendation{
			Concept:          concept,
			PointsLost:       a.points,
			StudentsAffected: len(a.students),
			PersistenceScore: rates[concept],
		}
		r.ImpactScore = r.PointsLost * float64(r.StudentsAffected)
		if r.PersistenceScore >= s.persistenceCutoff {
			r.Action = domain.ActionReteach
		} else {
			r.Action = domain.ActionAddPractice
		}
		recs = append(recs, r)
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ImpactScore != recs[j].ImpactScore {
			return recs[i].ImpactScore > recs[j].ImpactScore
		}
		if recs[i].PersistenceScore != recs[j].PersistenceScore {
			return recs[i].PersistenceScore > recs[j].PersistenceScore
		}
		return recs[i].Concept < recs[j].Concept
	})

	if opts.TopN > 0 && len(recs) > opts.TopN {
		recs = recs[:opts.TopN]
	}
	return recs
}
