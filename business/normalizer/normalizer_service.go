package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"examLens/domain"
)

// Result is the normalizer output: every input row as a record, plus the
// structured list of data-level violations. Rows are never silently
// dropped; the caller decides whether to filter flagged ones.
type Result struct {
	Records    []domain.DeductionRecord
	Violations []domain.Violation

	flagged map[int]bool
}

// Clean returns only the records whose row produced no violation.
func (r *Result) Clean() []domain.DeductionRecord {
	out := make([]domain.DeductionRecord, 0, len(r.Records))
	for i, rec := range r.Records {
		if !r.flagged[i] {
			out = append(out, rec)
		}
	}
	return out
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Normalize canonicalizes raw header-named rows into DeductionRecords.
// headers is the input's column set; a nil mapping means the headers are
// already canonical. A required column absent from headers is a
// SchemaError and fails the whole pass.
func (s *Service) Normalize(headers []string, rows []map[string]string, m *Mapping) (*Result, error) {
	if m == nil {
		m = CanonicalMapping()
	}

	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		headerSet[h] = true
	}

	var missing []string
	for _, field := range domain.RequiredFields {
		col, _ := m.Column(field)
		if !headerSet[col] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Missing: missing}
	}

	res := &Result{
		Records: make([]domain.DeductionRecord, 0, len(rows)),
		flagged: make(map[int]bool),
	}

	for i, row := range rows {
		rec := domain.DeductionRecord{
			StudentID:  s.cell(row, m, domain.FieldStudentID),
			ExamID:     s.cell(row, m, domain.FieldExamID),
			QuestionID: s.cell(row, m, domain.FieldQuestionID),
			RubricItem: collapseWhitespace(s.cell(row, m, domain.FieldRubricItem)),
			Topic:      s.cell(row, m, domain.FieldTopic),
			SectionID:  s.cell(row, m, domain.FieldSectionID),
			TAID:       s.cell(row, m, domain.FieldTAID),
		}

		for _, id := range []struct{ field, value string }{
			{domain.FieldStudentID, rec.StudentID},
			{domain.FieldExamID, rec.ExamID},
			{domain.FieldQuestionID, rec.QuestionID},
			{domain.FieldRubricItem, rec.RubricItem},
		} {
			if id.value == "" {
				res.flag(i, domain.Violation{
					Kind:    domain.ViolationMissingIdentifier,
					Row:     i,
					Field:   id.field,
					Message: fmt.Sprintf("row %d: %s is blank", i, id.field),
				})
			}
		}

		rawPoints := s.cell(row, m, domain.FieldPointsLost)
		points, err := strconv.ParseFloat(rawPoints, 64)
		switch {
		case err != nil:
			res.flag(i, domain.Violation{
				Kind:    domain.ViolationNonNumericPoints,
				Row:     i,
				Field:   domain.FieldPointsLost,
				Message: fmt.Sprintf("row %d: points_lost %q is not numeric", i, rawPoints),
			})
		case points < 0:
			rec.PointsLost = points
			res.flag(i, domain.Violation{
				Kind:    domain.ViolationNegativePoints,
				Row:     i,
				Field:   domain.FieldPointsLost,
				Message: fmt.Sprintf("row %d: points_lost %v is negative", i, points),
			})
		default:
			rec.PointsLost = points
		}

		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func (s *Service) cell(row map[string]string, m *Mapping, field string) string {
	col, ok := m.Column(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func (r *Result) flag(row int, v domain.Violation) {
	r.flagged[row] = true
	r.Violations = append(r.Violations, v)
}

// collapseWhitespace folds internal whitespace runs so that rubric items
// copied from different export formats compare equal.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
