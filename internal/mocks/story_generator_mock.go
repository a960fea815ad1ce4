package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyforge/internal/models"
	"storyforge/internal/service"
)

// MockStoryGenerator is a mock type for the StoryGenerator type
type MockStoryGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, req
func (_m *MockStoryGenerator) Generate(ctx context.Context, req models.GenerationRequest) (*models.StoryData, error) {
	ret := _m.Called(ctx, req)

	var r0 *models.StoryData
	if rf, ok := ret.Get(0).(func(context.Context, models.GenerationRequest) *models.StoryData); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryData)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, models.GenerationRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockStoryGenerator creates a new instance of MockStoryGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStoryGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStoryGenerator {
	m := &MockStoryGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ service.StoryGenerator = (*MockStoryGenerator)(nil)
