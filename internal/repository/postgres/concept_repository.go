package postgres

import (
	"context"
	"errors"
	"fmt"

	"examLens/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConceptRepository is the gorm-backed rubric-item → concept store.
// Placeholder values are rejected at this boundary so the table never
// holds one, and bulk writes run inside a transaction so a failed update
// leaves the prior contents intact.
type ConceptRepository struct {
	DB *gorm.DB
}

func NewConceptRepository(db *gorm.DB) *ConceptRepository {
	return &ConceptRepository{DB: db}
}

func (r *ConceptRepository) Get(ctx context.Context, rubricItem string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("context error: %w", err)
	}

	var row domain.ConceptMapping
	err := r.DB.WithContext(ctx).First(&row, "rubric_item = ?", rubricItem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query concept mapping: %w", err)
	}

	return row.Concept, true, nil
}

func (r *ConceptRepository) All(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ConceptMapping
	if err := r.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load concept mappings: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.RubricItem] = row.Concept
	}
	return out, nil
}

func (r *ConceptRepository) Set(ctx context.Context, rubricItem, concept string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if domain.IsPlaceholderConcept(concept) {
		return &domain.MappingError{Item: rubricItem, Value: concept}
	}

	row := domain.ConceptMapping{RubricItem: rubricItem, Concept: concept}
	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "rubric_item"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert concept mapping: %w", err)
	}

	return nil
}

func (r *ConceptRepository) BulkSet(ctx context.Context, mappings map[string]string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	for item, concept := range mappings {
		if domain.IsPlaceholderConcept(concept) {
			return &domain.MappingError{Item: item, Value: concept}
		}
	}

	rows := make([]domain.ConceptMapping, 0, len(mappings))
	for item, concept := range mappings {
		rows = append(rows, domain.ConceptMapping{RubricItem: item, Concept: concept})
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.ConceptMapping{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to overwrite concept mappings: %w", err)
	}

	return nil
}
