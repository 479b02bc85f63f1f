package persistence

import (
	"sort"

	"examLens/domain"
)

// Order is the validated total ordering of exam ids. It is load-bearing
// for every cohort and trajectory computation, so it must cover exactly
// the exam ids present in the data, with no duplicates.
type Order struct {
	exams []string
	rank  map[string]int
}

// BuildOrder derives the exam order for a dataset. An empty explicit
// order means lexicographic over the distinct exam ids; an explicit order
// is validated against the data and any mismatch is an OrderingError,
// never silently resolved.
func BuildOrder(records []domain.DeductionRecord, explicit []string) (*Order, error) {
	present := make(map[string]bool)
	for _, rec := range records {
		if rec.ExamID != "" {
			present[rec.ExamID] = true
		}
	}

	var exams []string
	if len(explicit) == 0 {
		exams = make([]string, 0, len(present))
		for id := range present {
			exams = append(exams, id)
		}
		sort.Strings(exams)
	} else {
		ordErr := &domain.OrderingError{}
		seen := make(map[string]bool, len(explicit))
		for _, id := range explicit {
			if seen[id] {
				ordErr.Duplicates = append(ordErr.Duplicates, id)
				continue
			}
			seen[id] = true
			if !present[id] {
				ordErr.Unknown = append(ordErr.Unknown, id)
			}
		}
		for id := range present {
			if !seen[id] {
				ordErr.Missing = append(ordErr.Missing, id)
			}
		}
		sort.Strings(ordErr.Missing)
		sort.Strings(ordErr.Unknown)
		sort.Strings(ordErr.Duplicates)
		if len(ordErr.Missing) > 0 || len(ordErr.Unknown) > 0 || len(ordErr.Duplicates) > 0 {
			return nil, ordErr
		}
		exams = append([]string(nil), explicit...)
	}

	rank := make(map[string]int, len(exams))
	for i, id := range exams {
		rank[id] = i
	}
	return &Order{exams: exams, rank: rank}, nil
}

// Exams returns the ordered exam ids.
func (o *Order) Exams() []string {
	return append([]string(nil), o.exams...)
}

// Rank returns an exam's position in the order.
func (o *Order) Rank(examID string) (int, bool) {
	r, ok := o.rank[examID]
	return r, ok
}

// Len is the number of exams in the order.
func (o *Order) Len() int {
	return len(o.exams)
}
