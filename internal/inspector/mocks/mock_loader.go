package mocks

import (
	"context"

	"docinspect/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockLoader records calls. The callback passed to Load is available via
// Callback so tests decide when, and with what, to deliver.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, id string, callback func(*model.DocumentInfo)) {
	m.Called(ctx, id, callback)
}

func (m *MockLoader) Reset() {
	m.Called()
}

// Callback returns the callback captured by the i-th Load call.
func (m *MockLoader) Callback(i int) func(*model.DocumentInfo) {
	var n int
	for _, call := range m.Calls {
		if call.Method != "Load" {
			continue
		}
		if n == i {
			return call.Arguments.Get(2).(func(*model.DocumentInfo))
		}
		n++
	}
	return nil
}

type MockView struct {
	mock.Mock
}

func (m *MockView) Update(info *model.DocumentInfo) {
	m.Called(info)
}
