package domain

// PersistenceResult measures how often a mistake recurs for one grouping
// key (rubric item or concept).
type PersistenceResult struct {
	Key           string  `json:"key"`
	CohortSize    int     `json:"cohort_size"`
	RepeatedCount int     `json:"repeated_count"`
	Rate          float64 `json:"rate"`
}

// TrajectoryPoint describes the population shift for one key across one
// adjacent exam pair. DropOff or Emergence is nil when the corresponding
// population is empty, never zero-filled.
type TrajectoryPoint struct {
	Key       string   `json:"key"`
	FromExam  string   `json:"from_exam"`
	ToExam    string   `json:"to_exam"`
	DropOff   *float64 `json:"drop_off,omitempty"`
	Emergence *float64 `json:"emergence,omitempty"`
}

// TransitionEdge is the conditional probability of exhibiting To on exam
// k+1 given From on exam k, over same-student exam-adjacent pairs.
type TransitionEdge struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Probability float64 `json:"probability"`
	Support     int     `json:"support"` // students exhibiting From with a following exam
}

// SimilarityPair is one computed item-pair similarity above the reporting floor.
type SimilarityPair struct {
	ItemA      string  `json:"item_a"`
	ItemB      string  `json:"item_b"`
	Similarity float64 `json:"similarity"`
}

// Cluster is a set of rubric items connected transitively by similarity
// edges above threshold. Singletons are never reported.
type Cluster struct {
	Label           string   `json:"label"`
	Items           []string `json:"items"`
	Cohesion        float64  `json:"cohesion"`
	SupportStudents int      `json:"support_students"`
}

// Recommendation ranks one concept by how much it costs and how sticky it is.
type Recommendation struct {
	Concept          string  `json:"concept"`
	ImpactScore      float64 `json:"impact_score"`
	PersistenceScore float64 `json:"persistence_score"`
	PointsLost       float64 `json:"points_lost"`
	StudentsAffected int     `json:"students_affected"`
	Action           string  `json:"action"`
}

// Recommendation actions.
const (
	ActionReteach     = "Re-teach"
	ActionAddPractice = "Add practice"
)

// RiskEstimate is the predicted probability that a student repeats a
// concept's mistake on their next exam.
type RiskEstimate struct {
	StudentID   string  `json:"student_id"`
	Concept     string  `json:"concept"`
	Probability float64 `json:"probability"`
	Confidence  string  `json:"confidence"`
}

// Confidence buckets, by distance of the probability from 0.5.
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// ConceptCoefficients exposes one fitted model for instructor transparency.
// The model is uncalibrated and not cross-validated; it must never be
// presented as a guarantee.
type ConceptCoefficients struct {
	Concept          string  `json:"concept"`
	Intercept        float64 `json:"intercept"`
	PriorSeen        float64 `json:"prior_seen"`
	PriorPoints      float64 `json:"prior_concept_points"`
	TrainingRows     int     `json:"training_rows"`
	PositiveFraction float64 `json:"positive_fraction"`
}

// Coverage summarizes concept resolution over one dataset pass.
type Coverage struct {
	Rows     int     `json:"rows"`
	Resolved int     `json:"resolved"`
	Fraction float64 `json:"fraction"`
}

// Report is the full engine output handed to the presentation layer.
// Plain data only; sections gated by an ordering error are nil.
type Report struct {
	Fingerprint string `json:"fingerprint"`

	Violations []Violation `json:"violations"`
	Coverage   Coverage    `json:"coverage"`

	ItemPersistence    []PersistenceResult `json:"item_persistence,omitempty"`
	ConceptPersistence []PersistenceResult `json:"concept_persistence,omitempty"`
	Trajectory         []TrajectoryPoint   `json:"trajectory,omitempty"`
	Transitions        []TransitionEdge    `json:"transitions,omitempty"`
	OrderingProblem    string              `json:"ordering_problem,omitempty"`

	Similarities []SimilarityPair `json:"similarities,omitempty"`
	Clusters     []Cluster        `json:"clusters,omitempty"`

	Recommendations []Recommendation `json:"recommendations,omitempty"`

	Risks            []RiskEstimate        `json:"risks,omitempty"`
	RiskCoefficients []ConceptCoefficients `json:"risk_coefficients,omitempty"`
	SkippedConcepts  []SkippedConcept      `json:"skipped_concepts,omitempty"`
	RiskProblem      string                `json:"risk_problem,omitempty"`
}
