package domain

import "strings"

// ConceptMapping is one persisted rubric-item → concept row.
type ConceptMapping struct {
	RubricItem string `gorm:"column:rubric_item;primaryKey" json:"rubric_item"`
	Concept    string `gorm:"column:concept;not null" json:"concept"`
}

func (ConceptMapping) TableName() string {
	return "concept_mappings"
}

// conceptPlaceholders are values the mapping store must never hold. They are
// what spreadsheet exports leave behind in a topic column ("yes", "true",
// blank fills) rather than real concept labels.
var conceptPlaceholders = map[string]struct{}{
	"":      {},
	"none":  {},
	"null":  {},
	"nil":   {},
	"n/a":   {},
	"na":    {},
	"yes":   {},
	"true":  {},
	"false": {},
}

// IsPlaceholderConcept reports whether v is a rejected placeholder value.
// Comparison is case-insensitive after trimming.
func IsPlaceholderConcept(v string) bool {
	_, ok := conceptPlaceholders[strings.ToLower(strings.TrimSpace(v))]
	return ok
}
