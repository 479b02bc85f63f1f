package domain

// Canonical field names for the deduction schema. External column-mapping
// resolves arbitrary headers to these before the normalizer runs.
const (
	FieldStudentID  = "student_id"
	FieldExamID     = "exam_id"
	FieldQuestionID = "question_id"
	FieldRubricItem = "rubric_item"
	FieldPointsLost = "points_lost"
	FieldTopic      = "topic"
	FieldSectionID  = "section_id"
	FieldTAID       = "ta_id"
)

// RequiredFields must all be present in the input header set.
var RequiredFields = []string{
	FieldStudentID,
	FieldExamID,
	FieldQuestionID,
	FieldRubricItem,
	FieldPointsLost,
}

// OptionalFields are carried through when present.
var OptionalFields = []string{
	FieldTopic,
	FieldSectionID,
	FieldTAID,
}

// DeductionRecord is one rubric-item deduction for one student on one exam.
// Immutable once normalized; the unit row of all downstream computation.
type DeductionRecord struct {
	StudentID  string  `json:"student_id"`
	ExamID     string  `json:"exam_id"`
	QuestionID string  `json:"question_id"`
	RubricItem string  `json:"rubric_item"`
	PointsLost float64 `json:"points_lost"`
	Topic      string  `json:"topic,omitempty"`
	SectionID  string  `json:"section_id,omitempty"`
	TAID       string  `json:"ta_id,omitempty"`

	// Concept is filled by the concept mapper; "Unmapped" when unresolved.
	Concept string `json:"concept,omitempty"`
}

// UnmappedConcept is the reserved fallback label for rubric items
// with no topic value and no entry in the mapping store.
const UnmappedConcept = "Unmapped"
