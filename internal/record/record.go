// Package record provides the ordered field-name to scalar mapping that every
// command result is reduced to before it is written.
package record

import (
	"fmt"
	"math"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is an ordered mapping from field name to value. Field order is the
// order in which fields were first set.
type Record struct {
	m *orderedmap.OrderedMap[string, any]
}

// New returns an empty record.
func New() *Record {
	return &Record{m: orderedmap.New[string, any]()}
}

// Of builds a record from alternating key, value arguments. It panics if a key
// is not a string or the argument count is odd.
func Of(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("record.Of: odd number of arguments")
	}
	r := New()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("record.Of: key %v is not a string", kv[i]))
		}
		r.Set(key, kv[i+1])
	}
	return r
}

// Set stores value under key. Setting an existing key keeps its position.
func (r *Record) Set(key string, value any) *Record {
	if r.m == nil {
		r.m = orderedmap.New[string, any]()
	}
	r.m.Set(key, value)
	return r
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil || r.m == nil {
		return nil, false
	}
	return r.m.Get(key)
}

// Len returns the number of fields. A nil record has no fields.
func (r *Record) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Each(func(key string, _ any) {
		keys = append(keys, key)
	})
	return keys
}

// Each calls fn for every field in order.
func (r *Record) Each(fn func(key string, value any)) {
	if r == nil || r.m == nil {
		return
	}
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Equal reports whether both records hold the same fields in the same order.
func (r *Record) Equal(other *Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	a, b := r.m.Oldest(), other.m.Oldest()
	for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || !sameValue(a.Value, b.Value) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	fa, aok := a.(float64)
	fb, bok := b.(float64)
	if aok && bok && math.IsNaN(fa) && math.IsNaN(fb) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// MarshalJSON encodes the record as a JSON object preserving field order.
// Non-finite floats are encoded as null.
func (r *Record) MarshalJSON() ([]byte, error) {
	clean := orderedmap.New[string, any]()
	r.Each(func(key string, value any) {
		clean.Set(key, finite(value))
	})
	return clean.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, any]()
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	r.m = m
	return nil
}

func finite(v any) any {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil
		}
	}
	return v
}
