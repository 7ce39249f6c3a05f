package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GORMRepository implements Repository for any GORM model keyed by an "id" column.
type GORMRepository[T any] struct {
	db   *gorm.DB
	name string
}

// NewGORMRepository creates a repository for T. name is used in error messages.
func NewGORMRepository[T any](db *gorm.DB, name string) *GORMRepository[T] {
	return &GORMRepository[T]{
		db:   db,
		name: name,
	}
}

// Save inserts entity.
func (r *GORMRepository[T]) Save(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.name, err)
	}
	return nil
}

// Update applies patch to the row with the given id and returns the refreshed row.
func (r *GORMRepository[T]) Update(ctx context.Context, id uint, patch map[string]any) (*T, error) {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update %s %d: %w", r.name, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%s %d not found for update: %w", r.name, id, gorm.ErrRecordNotFound)
	}

	var entity T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, fmt.Errorf("failed to reload %s %d: %w", r.name, id, err)
	}
	return &entity, nil
}

// FindOne returns the first row matching q, or an error wrapping gorm.ErrRecordNotFound.
func (r *GORMRepository[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	var entity T
	if err := r.scope(ctx, q).First(&entity).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", r.name, err)
	}
	return &entity, nil
}

// FindAll returns every row matching q.
func (r *GORMRepository[T]) FindAll(ctx context.Context, q Query) ([]T, error) {
	entities := []T{}
	if err := r.scope(ctx, q).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.name, err)
	}
	return entities, nil
}

// Delete removes the row with the given id.
func (r *GORMRepository[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.name, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d not found for deletion: %w", r.name, id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *GORMRepository[T]) scope(ctx context.Context, q Query) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(new(T))
	if len(q.Select) > 0 {
		tx = tx.Select(q.Select)
	}
	if len(q.Where) > 0 {
		tx = tx.Where(q.Where)
	}
	if q.Order != "" {
		tx = tx.Order(q.Order)
	}
	return tx
}
