package services_test

import (
	"context"

	"todo/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of repositories.Repository.
type MockRepository[T any] struct {
	mock.Mock
}

func (m *MockRepository[T]) Save(ctx context.Context, entity *T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockRepository[T]) Update(ctx context.Context, id uint, patch map[string]any) (*T, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) FindOne(ctx context.Context, q repositories.Query) (*T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) FindAll(ctx context.Context, q repositories.Query) ([]T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRepository[T]) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(routingKey string, data any) error {
	args := m.Called(routingKey, data)
	return args.Error(0)
}

func whereEquals(key string, value any) any {
	return mock.MatchedBy(func(q repositories.Query) bool {
		return q.Where[key] == value
	})
}
