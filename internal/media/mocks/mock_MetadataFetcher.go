package mocks

import (
	"context"

	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/stretchr/testify/mock"
)

// MockMetadataFetcher is a mock type for the MetadataFetcher type
type MockMetadataFetcher struct {
	mock.Mock
}

type MockMetadataFetcher_Expecter struct {
	mock *mock.Mock
}

func (_m *MockMetadataFetcher) EXPECT() *MockMetadataFetcher_Expecter {
	return &MockMetadataFetcher_Expecter{mock: &_m.Mock}
}

// FetchMetadata provides a mock function with given fields: ctx, locator
func (_m *MockMetadataFetcher) FetchMetadata(ctx context.Context, locator string) (*ytdlp.Metadata, error) {
	ret := _m.Called(ctx, locator)

	if rf, ok := ret.Get(0).(func(context.Context, string) (*ytdlp.Metadata, error)); ok {
		return rf(ctx, locator)
	}

	var r0 *ytdlp.Metadata
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ytdlp.Metadata)
	}

	return r0, ret.Error(1)
}

// MockMetadataFetcher_FetchMetadata_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FetchMetadata'
type MockMetadataFetcher_FetchMetadata_Call struct {
	*mock.Call
}

// FetchMetadata is a helper method to define mock.On call
//   - ctx context.Context
//   - locator string
func (_e *MockMetadataFetcher_Expecter) FetchMetadata(ctx interface{}, locator interface{}) *MockMetadataFetcher_FetchMetadata_Call {
	return &MockMetadataFetcher_FetchMetadata_Call{Call: _e.mock.On("FetchMetadata", ctx, locator)}
}

func (_c *MockMetadataFetcher_FetchMetadata_Call) Return(_a0 *ytdlp.Metadata, _a1 error) *MockMetadataFetcher_FetchMetadata_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockMetadataFetcher_FetchMetadata_Call) RunAndReturn(run func(context.Context, string) (*ytdlp.Metadata, error)) *MockMetadataFetcher_FetchMetadata_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockMetadataFetcher creates a new instance of MockMetadataFetcher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockMetadataFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMetadataFetcher {
	m := &MockMetadataFetcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
