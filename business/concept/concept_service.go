package concept

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"examLens/domain"
	"examLens/pkg/logger"
)

// Store is the persisted rubric-item → concept mapping. Implementations
// must reject placeholder values at write time and apply bulk writes
// atomically; a partial bulk update never leaves a malformed store.
type Store interface {
	Get(ctx context.Context, rubricItem string) (string, bool, error)
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, rubricItem, concept string) error
	BulkSet(ctx context.Context, mappings map[string]string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve assigns a concept to every record: a usable topic value wins,
// then the mapping store, then the reserved "Unmapped" label. The store is
// read once per pass so a concurrent write cannot split a dataset across
// two mapping versions.
func (s *Service) Resolve(ctx context.Context, records []domain.DeductionRecord) ([]domain.DeductionRecord, domain.Coverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Coverage{}, fmt.Errorf("context error: %w", err)
	}

	mapping, err := s.store.All(ctx)
	if err != nil {
		return nil, domain.Coverage{}, fmt.Errorf("load concept mappings: %w", err)
	}

	out := make([]domain.DeductionRecord, len(records))
	resolved := 0
	for i, rec := range records {
		switch {
		case usableConcept(rec.Topic):
			rec.Concept = strings.TrimSpace(rec.Topic)
		case usableConcept(mapping[rec.RubricItem]):
			rec.Concept = mapping[rec.RubricItem]
		default:
			rec.Concept = domain.UnmappedConcept
		}
		if rec.Concept != domain.UnmappedConcept {
			resolved++
		}
		out[i] = rec
	}

	cov := domain.Coverage{Rows: len(out), Resolved: resolved}
	if cov.Rows > 0 {
		cov.Fraction = float64(cov.Resolved) / float64(cov.Rows)
	}

	logger.Debug("concepts_resolved",
		"rows", cov.Rows,
		"resolved", cov.Resolved,
		"mapping_entries", len(mapping),
	)

	return out, cov, nil
}

// Mapping returns the current store contents.
func (s *Service) Mapping(ctx context.Context) (map[string]string, error) {
	return s.store.All(ctx)
}

// Get is a point read of one rubric item's concept.
func (s *Service) Get(ctx context.Context, rubricItem string) (string, bool, error) {
	return s.store.Get(ctx, rubricItem)
}

// Set writes one rubric-item → concept entry. Placeholder values are
// rejected before the store is touched.
func (s *Service) Set(ctx context.Context, rubricItem, concept string) error {
	rubricItem = strings.TrimSpace(rubricItem)
	concept = strings.TrimSpace(concept)
	if rubricItem == "" {
		return fmt.Errorf("rubric item is required")
	}
	if domain.IsPlaceholderConcept(concept) {
		return &domain.MappingError{Item: rubricItem, Value: concept}
	}
	return s.store.Set(ctx, rubricItem, concept)
}

// BulkSet overwrites the store with the given mapping, all or nothing.
// Any placeholder value rejects the whole write.
func (s *Service) BulkSet(ctx context.Context, mappings map[string]string) error {
	cleaned := make(map[string]string, len(mappings))
	for item, c := range mappings {
		item = strings.TrimSpace(item)
		c = strings.TrimSpace(c)
		if item == "" {
			continue
		}
		if domain.IsPlaceholderConcept(c) {
			return &domain.MappingError{Item: item, Value: c}
		}
		cleaned[item] = c
	}
	return s.store.BulkSet(ctx, cleaned)
}

// SnapshotVersion hashes the current mapping; combined with the dataset
// fingerprint it keys external report memoization.
func (s *Service) SnapshotVersion(ctx context.Context) (string, error) {
	mapping, err := s.store.All(ctx)
	if err != nil {
		return "", fmt.Errorf("load concept mappings: %w", err)
	}

	items := make([]string, 0, len(mapping))
	for item := range mapping {
		items = append(items, item)
	}
	sort.Strings(items)

	h := sha256.New()
	for _, item := range items {
		fmt.Fprintf(h, "%s\x00%s\x00", item, mapping[item])
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// usableConcept reports whether v is a real concept label rather than
// a blank or placeholder value.
func usableConcept(v string) bool {
	return strings.TrimSpace(v) != "" && !domain.IsPlaceholderConcept(v)
}
