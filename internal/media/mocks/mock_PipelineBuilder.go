package mocks

import (
	"context"

	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/stretchr/testify/mock"
)

// MockPipelineBuilder is a mock type for the PipelineBuilder type
type MockPipelineBuilder struct {
	mock.Mock
}

type MockPipelineBuilder_Expecter struct {
	mock *mock.Mock
}

func (_m *MockPipelineBuilder) EXPECT() *MockPipelineBuilder_Expecter {
	return &MockPipelineBuilder_Expecter{mock: &_m.Mock}
}

// Build provides a mock function with given fields: ctx, topology, locator
func (_m *MockPipelineBuilder) Build(ctx context.Context, topology pipeline.Topology, locator string) (*pipeline.Pipeline, error) {
	ret := _m.Called(ctx, topology, locator)

	if rf, ok := ret.Get(0).(func(context.Context, pipeline.Topology, string) (*pipeline.Pipeline, error)); ok {
		return rf(ctx, topology, locator)
	}

	var r0 *pipeline.Pipeline
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*pipeline.Pipeline)
	}

	return r0, ret.Error(1)
}

// MockPipelineBuilder_Build_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Build'
type MockPipelineBuilder_Build_Call struct {
	*mock.Call
}

// Build is a helper method to define mock.On call
//   - ctx context.Context
//   - topology pipeline.Topology
//   - locator string
func (_e *MockPipelineBuilder_Expecter) Build(ctx interface{}, topology interface{}, locator interface{}) *MockPipelineBuilder_Build_Call {
	return &MockPipelineBuilder_Build_Call{Call: _e.mock.On("Build", ctx, topology, locator)}
}

func (_c *MockPipelineBuilder_Build_Call) Return(_a0 *pipeline.Pipeline, _a1 error) *MockPipelineBuilder_Build_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockPipelineBuilder_Build_Call) RunAndReturn(run func(context.Context, pipeline.Topology, string) (*pipeline.Pipeline, error)) *MockPipelineBuilder_Build_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockPipelineBuilder creates a new instance of MockPipelineBuilder. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockPipelineBuilder(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPipelineBuilder {
	m := &MockPipelineBuilder{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
