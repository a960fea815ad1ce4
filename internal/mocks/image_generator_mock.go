package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyforge/internal/service"
)

// MockImageGenerator is a mock type for the ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

// GenerateImage provides a mock function with given fields: ctx, prompt
func (_m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ret := _m.Called(ctx, prompt)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string) string); ok {
		r0 = rf(ctx, prompt)
	} else {
		r0 = ret.String(0)
	}

	return r0, ret.Error(1)
}

// NewMockImageGenerator creates a new instance of MockImageGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockImageGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockImageGenerator {
	m := &MockImageGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ service.ImageGenerator = (*MockImageGenerator)(nil)
