package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"inventory_back_end/internal/models"
)

type MockListCache struct {
	mock.Mock
}

func (m *MockListCache) Version(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListCache) Get(ctx context.Context, version int64, filter models.ProductFilter) ([]models.Product, bool) {
	args := m.Called(ctx, version, filter)
	if res := args.Get(0); res != nil {
		return res.([]models.Product), args.Bool(1)
	}
	return nil, args.Bool(1)
}

func (m *MockListCache) Set(ctx context.Context, version int64, filter models.ProductFilter, products []models.Product) {
	m.Called(ctx, version, filter, products)
}

func (m *MockListCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type MockSearchIndex struct {
	mock.Mock
}

func (m *MockSearchIndex) Index(ctx context.Context, p models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockSearchIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSearchIndex) Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	if res := args.Get(0); res != nil {
		return res.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, ev models.ProductEvent) {
	m.Called(ctx, ev)
}
