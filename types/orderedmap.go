package types

import (
	"iter"
	"reflect"

	json "github.com/goccy/go-json"
)

// Pair is one named value, used to seed an OrderedMap.
type Pair[V any] struct {
	Key   string
	Value V
}

func OP[V any](k string, v V) Pair[V] {
	return Pair[V]{Key: k, Value: v}
}

// OrderedMap keeps field names in the order they were first set. Directory
// entries only carry hashes, so decoded packets use it to present fields in
// the order a scheme declares them.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

type OrderedMapAny = OrderedMap[any]

func NewOrderedMap[V any](pairs ...Pair[V]) *OrderedMap[V] {
	om := &OrderedMap[V]{values: make(map[string]V, len(pairs))}
	for _, p := range pairs {
		om.Set(p.Key, p.Value)
	}
	return om
}

func NewOrderedMapAny(pairs ...Pair[any]) *OrderedMapAny {
	return NewOrderedMap(pairs...)
}

func (om *OrderedMap[V]) Len() int {
	return len(om.keys)
}

// Set inserts key at the end or replaces its value in place.
func (om *OrderedMap[V]) Set(key string, value V) {
	if _, ok := om.values[key]; !ok {
		om.keys = append(om.keys, key)
	}
	om.values[key] = value
}

func (om *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := om.values[key]
	return v, ok
}

// GetAs returns the value under key converted to U, or U's zero value.
func GetAs[U any](om *OrderedMapAny, key string) U {
	v, _ := om.Get(key)
	u, _ := v.(U)
	return u
}

func (om *OrderedMap[V]) Keys() []string {
	return append([]string(nil), om.keys...)
}

func (om *OrderedMap[V]) ItemsIter() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range om.keys {
			if !yield(k, om.values[k]) {
				return
			}
		}
	}
}

func (om *OrderedMap[V]) Equal(other *OrderedMap[V]) bool {
	if om.Len() != other.Len() {
		return false
	}
	for i, k := range om.keys {
		if other.keys[i] != k || !reflect.DeepEqual(om.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (om *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range om.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(om.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}
