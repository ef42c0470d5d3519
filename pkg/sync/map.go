package sync

import "sync"

// TypedSyncMap is a sync.Map restricted to a single key and value type.
type TypedSyncMap[K comparable, V any] struct {
	m sync.Map
}

func (m *TypedSyncMap[K, V]) Delete(key K) { m.m.Delete(key) }

func (m *TypedSyncMap[K, V]) Load(key K) (V, bool) {
	v, ok := m.m.Load(key)
	if !ok {
		return *new(V), ok
	}

	if vv, ok := v.(V); ok {
		return vv, true
	}
	return *new(V), false
}

func (m *TypedSyncMap[K, V]) LoadAndDelete(key K) (V, bool) {
	v, loaded := m.m.LoadAndDelete(key)
	if !loaded {
		return *new(V), loaded
	}

	if vv, ok := v.(V); ok {
		return vv, loaded
	}
	return *new(V), loaded
}

func (m *TypedSyncMap[K, V]) Store(key K, value V) { m.m.Store(key, value) }

// Range calls f for each entry in the map until f returns false. See sync.Map.Range.
func (m *TypedSyncMap[K, V]) Range(f func(key K, value V) bool) {
	m.m.Range(func(k, v any) bool {
		return f(k.(K), v.(V))
	})
}

// Values returns a snapshot of every value currently stored.
func (m *TypedSyncMap[K, V]) Values() []V {
	out := make([]V, 0)
	m.Range(func(_ K, v V) bool {
		out = append(out, v)
		return true
	})

	return out
}
