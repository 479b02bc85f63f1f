package persistence

import (
	"sort"

	"examLens/domain"
)

// GroupKey selects the grouping dimension for persistence analysis.
type GroupKey func(domain.DeductionRecord) string

// ByRubricItem groups on the raw rubric-item label.
func ByRubricItem(rec domain.DeductionRecord) string { return rec.RubricItem }

// ByConcept groups on the resolved concept label.
func ByConcept(rec domain.DeductionRecord) string { return rec.Concept }

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// occurrences maps key → student → set of exam ranks where the student
// exhibited the key. Records whose exam id is absent from the order are
// skipped (they can only exist if the caller filtered the order-building
// input differently from the analysis input).
func occurrences(records []domain.DeductionRecord, key GroupKey, order *Order) map[string]map[string]map[int]bool {
	occ := make(map[string]map[string]map[int]bool)
	for _, rec := range records {
		k := key(rec)
		if k == "" || rec.StudentID == "" {
			continue
		}
		rank, ok := order.Rank(rec.ExamID)
		if !ok {
			continue
		}
		students, ok := occ[k]
		if !ok {
			students = make(map[string]map[int]bool)
			occ[k] = students
		}
		ranks, ok := students[rec.StudentID]
		if !ok {
			ranks = make(map[int]bool)
			students[rec.StudentID] = ranks
		}
		ranks[rank] = true
	}
	return occ
}

// Persistence computes, per key, the cohort of students anchored at their
// earliest occurrence and how many of them repeat the mistake on any
// later exam. Rate is 0 for an empty cohort, never NaN.
func (s *Service) Persistence(records []domain.DeductionRecord, key GroupKey, order *Order) []domain.PersistenceResult {
	occ := occurrences(records, key, order)

	results := make([]domain.PersistenceResult, 0, len(occ))
	for k, students := range occ {
		res := domain.PersistenceResult{Key: k, CohortSize: len(students)}
		for _, ranks := range students {
			first := -1
			last := -1
			for r := range ranks {
				if first == -1 || r < first {
					first = r
				}
				if r > last {
					last = r
				}
			}
			if last > first {
				res.RepeatedCount++
			}
		}
		if res.CohortSize > 0 {
			res.Rate = float64(res.RepeatedCount) / float64(res.CohortSize)
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	return results
}

// Trajectory computes drop-off and emergence fractions per key across
// each adjacent exam pair. A fraction whose base population is empty is
// left nil rather than reported as zero.
func (s *Service) Trajectory(records []domain.DeductionRecord, key GroupKey, order *Order) []domain.TrajectoryPoint {
	occ := occurrences(records, key, order)
	exams := order.Exams()

	keys := make([]string, 0, len(occ))
	for k := range occ {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var points []domain.TrajectoryPoint
	for _, k := range keys {
		// population per rank for this key
		pop := make([]map[string]bool, len(exams))
		for student, ranks := range occ[k] {
			for r := range ranks {
				if pop[r] == nil {
					pop[r] = make(map[string]bool)
				}
				pop[r][student] = true
			}
		}

		for r := 0; r+1 < len(exams); r++ {
			cur, next := pop[r], pop[r+1]
			if len(cur) == 0 && len(next) == 0 {
				continue
			}
			pt := domain.TrajectoryPoint{Key: k, FromExam: exams[r], ToExam: exams[r+1]}
			if len(cur) > 0 {
				gone := 0
				for student := range cur {
					if !next[student] {
						gone++
					}
				}
				v := float64(gone) / float64(len(cur))
				pt.DropOff = &v
			}
			if len(next) > 0 {
				fresh := 0
				for student := range next {
					if !cur[student] {
						fresh++
					}
				}
				v := float64(fresh) / float64(len(next))
				pt.Emergence = &v
			}
			points = append(points, pt)
		}
	}

	return points
}

// Transitions estimates P(B on exam k+1 | A on exam k) over same-student
// exam-adjacent pairs. Pairs that were never observed are omitted rather
// than reported as zero, so an edge never implies evidence that does not
// exist. Support is the denominator: (student, exam) instances exhibiting
// A with a following exam in the order.
func (s *Service) Transitions(records []domain.DeductionRecord, key GroupKey, order *Order) []domain.TransitionEdge {
	// student → rank → set of keys
	byStudent := make(map[string]map[int]map[string]bool)
	for _, rec := range records {
		k := key(rec)
		if k == "" || rec.StudentID == "" {
			continue
		}
		rank, ok := order.Rank(rec.ExamID)
		if !ok {
			continue
		}
		ranks, ok := byStudent[rec.StudentID]
		if !ok {
			ranks = make(map[int]map[string]bool)
			byStudent[rec.StudentID] = ranks
		}
		items, ok := ranks[rank]
		if !ok {
			items = make(map[string]bool)
			ranks[rank] = items
		}
		items[k] = true
	}

	denom := make(map[string]int)
	num := make(map[string]map[string]int)
	last := order.Len() - 1

	for _, ranks := range byStudent {
		for r, items := range ranks {
			if r >= last {
				continue
			}
			following := ranks[r+1]
			for a := range items {
				denom[a]++
				for b := range following {
					if num[a] == nil {
						num[a] = make(map[string]int)
					}
					num[a][b]++
				}
			}
		}
	}

	var edges []domain.TransitionEdge
	for a, tos := range num {
		for b, n := range tos {
			edges = append(edges, domain.TransitionEdge{
				From:        a,
				To:          b,
				Probability: float64(n) / float64(denom[a]),
				Support:     denom[a],
			})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
