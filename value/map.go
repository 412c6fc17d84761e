package value

import "iter"

// Map is an insertion-ordered mapping with unique string keys. Setting an
// existing key replaces its value in place.
type Map struct {
	keys   []string
	values []Value
	index  map[string]int
}

func NewMap() *Map {
	return &Map{index: map[string]int{}}
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Map) Set(key string, item Value) {
	if m.index == nil {
		m.index = map[string]int{}
	}
	if idx, found := m.index[key]; found {
		m.values[idx] = item
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, item)
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Absent, false
	}
	idx, found := m.index[key]
	if !found {
		return Absent, false
	}
	return m.values[idx], true
}

func (m *Map) Has(key string) bool {
	_, found := m.Get(key)
	return found
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for idx, key := range m.keys {
			if !yield(key, m.values[idx]) {
				return
			}
		}
	}
}
