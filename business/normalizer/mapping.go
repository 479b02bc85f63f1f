package normalizer

import (
	"strings"

	"examLens/domain"
)

// Mapping is the validated canonical-field → source-column value object.
// It is built once, before normalization runs; the normalizer itself only
// ever deals in canonical field names.
type Mapping struct {
	columns map[string]string
}

// NewMapping validates that every required canonical field has a source
// column. Missing required fields are a SchemaError, which blocks the
// whole pass.
func NewMapping(columns map[string]string) (*Mapping, error) {
	cleaned := make(map[string]string, len(columns))
	for field, col := range columns {
		field = strings.TrimSpace(field)
		col = strings.TrimSpace(col)
		if field == "" || col == "" {
			continue
		}
		cleaned[field] = col
	}

	var missing []string
	for _, field := range domain.RequiredFields {
		if _, ok := cleaned[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Missing: missing}
	}

	return &Mapping{columns: cleaned}, nil
}

// CanonicalMapping maps every canonical field to a column of the same name.
func CanonicalMapping() *Mapping {
	columns := make(map[string]string)
	for _, field := range domain.RequiredFields {
		columns[field] = field
	}
	for _, field := range domain.OptionalFields {
		columns[field] = field
	}
	return &Mapping{columns: columns}
}

// Column returns the source column for a canonical field.
func (m *Mapping) Column(field string) (string, bool) {
	col, ok := m.columns[field]
	return col, ok
}

// Columns returns a copy of the field → column table.
func (m *Mapping) Columns() map[string]string {
	out := make(map[string]string, len(m.columns))
	for k, v := range m.columns {
		out[k] = v
	}
	return out
}

// mappingHints drive SuggestMapping. First hint that matches a header wins;
// each header is assigned to at most one field.
var mappingHints = []struct {
	field string
	hints []string
}{
	{domain.FieldStudentID, []string{"student", "sid", "email", "learner"}},
	{domain.FieldExamID, []string{"exam", "assessment", "test", "assignment"}},
	{domain.FieldQuestionID, []string{"question", "problem", "item_id"}},
	{domain.FieldRubricItem, []string{"rubric", "deduction", "criteria", "comment"}},
	{domain.FieldPointsLost, []string{"points", "score", "penalty", "lost"}},
	{domain.FieldTopic, []string{"topic", "concept", "tag", "skill"}},
	{domain.FieldSectionID, []string{"section", "class"}},
	{domain.FieldTAID, []string{"ta", "grader", "instructor"}},
}

// SuggestMapping guesses a field → column table from raw header names.
// The result is a starting point for the caller's mapping step, not a
// validated Mapping; pass it through NewMapping before use.
func SuggestMapping(headers []string) map[string]string {
	taken := make(map[string]bool, len(headers))
	suggested := make(map[string]string)

	for _, entry := range mappingHints {
		for _, header := range headers {
			if taken[header] {
				continue
			}
			lower := strings.ToLower(header)
			for _, hint := range entry.hints {
				if strings.Contains(lower, hint) {
					suggested[entry.field] = header
					taken[header] = true
					break
				}
			}
			if _, ok := suggested[entry.field]; ok {
				break
			}
		}
	}

	return suggested
}
