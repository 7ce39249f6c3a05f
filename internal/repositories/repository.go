package repositories

import "context"

// Query narrows a lookup to equality constraints and optionally projects columns.
type Query struct {
	Select []string       // columns to load; all when empty
	Where  map[string]any // column -> value, ANDed
	Order  string         // e.g. "id asc"
}

// Repository is the data access contract shared by every entity.
// Store errors are wrapped, never translated: callers match gorm sentinels with errors.Is.
type Repository[T any] interface {
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, id uint, patch map[string]any) (*T, error)
	FindOne(ctx context.Context, q Query) (*T, error)
	FindAll(ctx context.Context, q Query) ([]T, error)
	Delete(ctx context.Context, id uint) error
}
