package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyforge/internal/service"
)

// MockTextGenerator is a mock type for the TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

// GenerateJSON provides a mock function with given fields: ctx, systemPrompt, userPrompt
func (_m *MockTextGenerator) GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, service.UsageInfo, error) {
	ret := _m.Called(ctx, systemPrompt, userPrompt)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, string) string); ok {
		r0 = rf(ctx, systemPrompt, userPrompt)
	} else {
		r0 = ret.String(0)
	}

	var r1 service.UsageInfo
	if rf, ok := ret.Get(1).(func(context.Context, string, string) service.UsageInfo); ok {
		r1 = rf(ctx, systemPrompt, userPrompt)
	} else if ret.Get(1) != nil {
		r1 = ret.Get(1).(service.UsageInfo)
	}

	return r0, r1, ret.Error(2)
}

// NewMockTextGenerator creates a new instance of MockTextGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTextGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ service.TextGenerator = (*MockTextGenerator)(nil)
