package mocks

import (
	"context"

	"docinspect/internal/model"
	"docinspect/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockInfoService struct {
	mock.Mock
}

func (m *MockInfoService) Resolve(ctx context.Context, id string) (*model.DocumentInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentInfo), args.Error(1)
}

func (m *MockInfoService) List(ctx context.Context, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}
