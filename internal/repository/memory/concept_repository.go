package memory

import (
	"context"
	"sync"

	"examLens/domain"
)

// ConceptRepository is an in-memory concept store with the same boundary
// rules as the database-backed one. Used for tests and for running the
// server without a database.
type ConceptRepository struct {
	mu       sync.RWMutex
	mappings map[string]string
}

func NewConceptRepository() *ConceptRepository {
	return &ConceptRepository{mappings: make(map[string]string)}
}

func (r *ConceptRepository) Get(ctx context.Context, rubricItem string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	concept, ok := r.mappings[rubricItem]
	return concept, ok, nil
}

func (r *ConceptRepository) All(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.mappings))
	for k, v := range r.mappings {
		out[k] = v
	}
	return out, nil
}

func (r *ConceptRepository) Set(ctx context.Context, rubricItem, concept string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if domain.IsPlaceholderConcept(concept) {
		return &domain.MappingError{Item: rubricItem, Value: concept}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[rubricItem] = concept
	return nil
}

func (r *ConceptRepository) BulkSet(ctx context.Context, mappings map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for item, concept := range mappings {
		if domain.IsPlaceholderConcept(concept) {
			return &domain.MappingError{Item: item, Value: concept}
		}
	}

	next := make(map[string]string, len(mappings))
	for k, v := range mappings {
		next[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings = next
	return nil
}
