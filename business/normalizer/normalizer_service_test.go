package normalizer

import (
	"testing"

	"examLens/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalHeaders() []string {
	return []string{"student_id", "exam_id", "question_id", "rubric_item", "points_lost"}
}

func row(student, exam, question, rubric, points string) map[string]string {
	return map[string]string{
		"student_id":  student,
		"exam_id":     exam,
		"question_id": question,
		"rubric_item": rubric,
		"points_lost": points,
	}
}

func TestNormalize(t *testing.T) {
	svc := NewService()

	t.Run("missing required column fails the pass", func(t *testing.T) {
		_, err := svc.Normalize([]string{"student_id", "exam_id"}, nil, nil)
		require.Error(t, err)

		var schemaErr *domain.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Missing, "question_id")
		assert.Contains(t, schemaErr.Missing, "rubric_item")
		assert.Contains(t, schemaErr.Missing, "points_lost")
	})

	t.Run("negative points flagged but row kept", func(t *testing.T) {
		rows := []map[string]string{
			row("s1", "e1", "q1", "Arrow direction", "2"),
			row("s2", "e1", "q1", "Arrow direction", "-1"),
		}

		res, err := svc.Normalize(canonicalHeaders(), rows, nil)
		require.NoError(t, err)

		assert.Len(t, res.Records, 2)
		require.Len(t, res.Violations, 1)
		assert.Equal(t, domain.ViolationNegativePoints, res.Violations[0].Kind)
		assert.Equal(t, 1, res.Violations[0].Row)
		assert.Equal(t, -1.0, res.Records[1].PointsLost)

		clean := res.Clean()
		require.Len(t, clean, 1)
		assert.Equal(t, "s1", clean[0].StudentID)
	})

	t.Run("non numeric points flagged", func(t *testing.T) {
		rows := []map[string]string{row("s1", "e1", "q1", "Arrow direction", "two")}

		res, err := svc.Normalize(canonicalHeaders(), rows, nil)
		require.NoError(t, err)
		require.Len(t, res.Violations, 1)
		assert.Equal(t, domain.ViolationNonNumericPoints, res.Violations[0].Kind)
		assert.Empty(t, res.Clean())
	})

	t.Run("blank identifiers flagged per field", func(t *testing.T) {
		rows := []map[string]string{row("", "e1", "q1", "", "1")}

		res, err := svc.Normalize(canonicalHeaders(), rows, nil)
		require.NoError(t, err)
		assert.Len(t, res.Violations, 2)
		for _, v := range res.Violations {
			assert.Equal(t, domain.ViolationMissingIdentifier, v.Kind)
		}
	})

	t.Run("rubric item whitespace collapsed", func(t *testing.T) {
		rows := []map[string]string{row("s1", "e1", "q1", "  Arrow   direction ", "1")}

		res, err := svc.Normalize(canonicalHeaders(), rows, nil)
		require.NoError(t, err)
		assert.Equal(t, "Arrow direction", res.Records[0].RubricItem)
	})

	t.Run("explicit column mapping", func(t *testing.T) {
		m, err := NewMapping(map[string]string{
			"student_id":  "Email",
			"exam_id":     "Assessment",
			"question_id": "Question",
			"rubric_item": "Deduction",
			"points_lost": "Points",
		})
		require.NoError(t, err)

		rows := []map[string]string{{
			"Email":      "s1@x.edu",
			"Assessment": "Midterm 1",
			"Question":   "3b",
			"Deduction":  "Wrong nucleophile",
			"Points":     "2.5",
		}}
		headers := []string{"Email", "Assessment", "Question", "Deduction", "Points"}

		res, err := svc.Normalize(headers, rows, m)
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "s1@x.edu", res.Records[0].StudentID)
		assert.Equal(t, 2.5, res.Records[0].PointsLost)
		assert.Empty(t, res.Violations)
	})
}

func TestNewMapping_MissingRequiredField(t *testing.T) {
	_, err := NewMapping(map[string]string{"student_id": "Email"})

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Missing, "points_lost")
}

func TestSuggestMapping(t *testing.T) {
	headers := []string{"Student Email", "Exam Name", "Question Number", "Rubric Comment", "Points Deducted", "Topic Tag"}

	suggested := SuggestMapping(headers)

	assert.Equal(t, "Student Email", suggested[domain.FieldStudentID])
	assert.Equal(t, "Exam Name", suggested[domain.FieldExamID])
	assert.Equal(t, "Question Number", suggested[domain.FieldQuestionID])
	assert.Equal(t, "Rubric Comment", suggested[domain.FieldRubricItem])
	assert.Equal(t, "Points Deducted", suggested[domain.FieldPointsLost])
	assert.Equal(t, "Topic Tag", suggested[domain.FieldTopic])
}
