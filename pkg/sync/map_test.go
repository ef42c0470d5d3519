package sync_test

import (
	"testing"

	"github.com/hbomb79/Siphon/pkg/sync"
	"github.com/stretchr/testify/assert"
)

func Test_TypedSyncMap(t *testing.T) {
	m := &sync.TypedSyncMap[string, int]{}

	_, ok := m.Load("missing")
	assert.False(t, ok)

	m.Store("a", 1)
	m.Store("b", 2)
	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.ElementsMatch(t, []int{1, 2}, m.Values())

	v, ok = m.LoadAndDelete("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = m.LoadAndDelete("b")
	assert.False(t, ok)

	m.Delete("a")
	assert.Empty(t, m.Values())
}
