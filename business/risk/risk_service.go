package risk

import (
	"math"
	"sort"

	"examLens/business/persistence"
	"examLens/domain"
	"examLens/pkg/logger"
)

// Confidence bucket boundaries: distance of the predicted probability
// from the 0.5 decision boundary. Explicit constants, not inferred.
const (
	highConfidenceDistance   = 0.25
	mediumConfidenceDistance = 0.10
)

// Assessment is the full predictive output. Coefficients are exposed to
// instructors rather than hidden; the model is uncalibrated and carries
// no cross-validation, and must never be presented as a guarantee.
type Assessment struct {
	Estimates    []domain.RiskEstimate
	Coefficients []domain.ConceptCoefficients
	Skipped      []domain.SkippedConcept
}

type Service struct {
	model Model
}

func NewService(model Model) *Service {
	if model == nil {
		model = UnavailableModel{}
	}
	return &Service{model: model}
}

// Available reports whether the predictive backend can be invoked.
func (s *Service) Available() bool {
	return s.model.Available()
}

// trainingRow is one (student, exam) observation for one concept.
type trainingRow struct {
	features [featureDim]float64
	label    float64
}

// Predict fits one model per concept from historical per-student features
// and scores each student's probability of repeating the concept on their
// next exam. Concepts that cannot support a fit are skipped and reported,
// never defaulted to 0.5.
func (s *Service) Predict(records []domain.DeductionRecord, order *persistence.Order) (*Assessment, error) {
	if !s.model.Available() {
		return &Assessment{}, nil
	}
	if order.Len() < 2 {
		return nil, domain.ErrInsufficientData
	}

	// student → ordered list of their observed exam ranks, and
	// student → rank → concept → points lost
	studentRanks := make(map[string][]int)
	points := make(map[string]map[int]map[string]float64)
	concepts := make(map[string]bool)
	for _, rec := range records {
		if rec.StudentID == "" || rec.Concept == "" || rec.Concept == domain.UnmappedConcept {
			continue
		}
		rank, ok := order.Rank(rec.ExamID)
		if !ok {
			continue
		}
		concepts[rec.Concept] = true
		byRank, ok := points[rec.StudentID]
		if !ok {
			byRank = make(map[int]map[string]float64)
			points[rec.StudentID] = byRank
		}
		if byRank[rank] == nil {
			byRank[rank] = make(map[string]float64)
			studentRanks[rec.StudentID] = append(studentRanks[rec.StudentID], rank)
		}
		byRank[rank][rec.Concept] += rec.PointsLost
	}

	students := make([]string, 0, len(studentRanks))
	for student, ranks := range studentRanks {
		sort.Ints(ranks)
		studentRanks[student] = ranks
		students = append(students, student)
	}
	sort.Strings(students)

	conceptList := make([]string, 0, len(concepts))
	for c := range concepts {
		conceptList = append(conceptList, c)
	}
	sort.Strings(conceptList)

	out := &Assessment{}
	for _, c := range conceptList {
		s.fitConcept(c, students, studentRanks, points, out)
	}

	logger.Debug("risk_model_done",
		"concepts", len(conceptList),
		"fitted", len(out.Coefficients),
		"skipped", len(out.Skipped),
		"estimates", len(out.Estimates),
	)

	return out, nil
}

func (s *Service) fitConcept(
	concept string,
	students []string,
	studentRanks map[string][]int,
	points map[string]map[int]map[string]float64,
	out *Assessment,
) {
	var rows []trainingRow
	positives := 0

	for _, student := range students {
		ranks := studentRanks[student]
		priorSeen := 0.0
		priorPoints := 0.0
		for idx, rank := range ranks {
			if idx > 0 {
				label := 0.0
				if _, ok := points[student][rank][concept]; ok {
					label = 1.0
				}
				rows = append(rows, trainingRow{
					features: [featureDim]float64{1.0, priorSeen, priorPoints},
					label:    label,
				})
				if label == 1.0 {
					positives++
				}
			}
			if pts, ok := points[student][rank][concept]; ok {
				priorSeen = 1.0
				priorPoints += pts
			}
		}
	}

	if len(rows) == 0 {
		out.Skipped = append(out.Skipped, domain.SkippedConcept{
			Concept: concept,
			Reason:  "no student with more than one exam",
		})
		return
	}
	if positives == 0 || positives == len(rows) {
		out.Skipped = append(out.Skipped, domain.SkippedConcept{
			Concept: concept,
			Reason:  "no variation in outcome labels",
		})
		return
	}

	x := make([][featureDim]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = r.features
		y[i] = r.label
	}

	beta, err := s.model.Fit(x, y)
	if err != nil {
		out.Skipped = append(out.Skipped, domain.SkippedConcept{
			Concept: concept,
			Reason:  "model fit failed: " + err.Error(),
		})
		return
	}

	out.Coefficients = append(out.Coefficients, domain.ConceptCoefficients{
		Concept:          concept,
		Intercept:        beta[0],
		PriorSeen:        beta[1],
		PriorPoints:      beta[2],
		TrainingRows:     len(rows),
		PositiveFraction: float64(positives) / float64(len(rows)),
	})

	// score each student from their cumulative state after their last exam
	for _, student := range students {
		priorSeen := 0.0
		priorPoints := 0.0
		for _, rank := range studentRanks[student] {
			if pts, ok := points[student][rank][concept]; ok {
				priorSeen = 1.0
				priorPoints += pts
			}
		}
		p := sigmoid(dot(beta, [featureDim]float64{1.0, priorSeen, priorPoints}))
		out.Estimates = append(out.Estimates, domain.RiskEstimate{
			StudentID:   student,
			Concept:     concept,
			Probability: p,
			Confidence:  confidenceBucket(p),
		})
	}
}

// confidenceBucket discretizes certainty by distance from the decision
// boundary: the closer to 0.5, the lower the confidence.
func confidenceBucket(p float64) string {
	switch dist := math.Abs(p - 0.5); {
	case dist >= highConfidenceDistance:
		return domain.ConfidenceHigh
	case dist >= mediumConfidenceDistance:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
