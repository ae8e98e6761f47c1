package mocks

import (
	"context"
	"time"

	"docinspect/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, id string) (*model.DocumentInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentInfo), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, info *model.DocumentInfo, ttl time.Duration) error {
	args := m.Called(ctx, info, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
