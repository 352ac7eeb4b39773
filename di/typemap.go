package di

import (
	"reflect"
)

// TypeOf returns the reflect.Type of T. Unlike reflect.TypeOf it works for
// interface types, which is what bindings are normally keyed by.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypeMap stores at most one value per type, keyed by type identity.
//
// The zero value is not usable; use NewTypeMap.
type TypeMap struct {
	items map[reflect.Type]any
}

// NewTypeMap returns an empty TypeMap.
func NewTypeMap() *TypeMap {
	return &TypeMap{items: make(map[reflect.Type]any)}
}

// Get returns the value stored under t.
func (m *TypeMap) Get(t reflect.Type) (any, bool) {
	if m == nil || m.items == nil {
		return nil, false
	}
	v, ok := m.items[t]
	return v, ok
}

// Has reports whether a value is stored under t.
func (m *TypeMap) Has(t reflect.Type) bool {
	_, ok := m.Get(t)
	return ok
}

// Take removes the value stored under t and returns it.
// Subsequent lookups of t report false.
func (m *TypeMap) Take(t reflect.Type) (any, bool) {
	v, ok := m.Get(t)
	if ok {
		delete(m.items, t)
	}
	return v, ok
}

// Len returns the number of stored values.
func (m *TypeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// Types returns the stored keys in no particular order.
func (m *TypeMap) Types() []reflect.Type {
	if m == nil {
		return nil
	}
	out := make([]reflect.Type, 0, len(m.items))
	for t := range m.items {
		out = append(out, t)
	}
	return out
}

func (m *TypeMap) set(t reflect.Type, v any) {
	m.items[t] = v
}

func (m *TypeMap) clone() *TypeMap {
	cp := NewTypeMap()
	if m == nil {
		return cp
	}
	for k, v := range m.items {
		cp.items[k] = v
	}
	return cp
}

// -----------------------------------------------------------------------------
// ParameterMap
// -----------------------------------------------------------------------------

// ParameterMap holds the parameter bundles supplied before a build starts,
// one per bundle type. Bundles are taken (removed) when their component is
// built; a bundle type shared by two components cannot tell them apart.
type ParameterMap struct {
	TypeMap
}

// NewParameterMap returns an empty ParameterMap.
func NewParameterMap() *ParameterMap {
	return &ParameterMap{TypeMap: *NewTypeMap()}
}

// Set stores v as the bundle of type t, replacing any earlier bundle.
// v must be assignable to t.
func (m *ParameterMap) Set(t reflect.Type, v any) error {
	if v == nil {
		return &ParameterTypeError{Want: t}
	}
	if got := reflect.TypeOf(v); !got.AssignableTo(t) {
		return &ParameterTypeError{Want: t, Got: got}
	}
	m.set(t, v)
	return nil
}

func (m *ParameterMap) clone() *ParameterMap {
	return &ParameterMap{TypeMap: *m.TypeMap.clone()}
}

// SetParameters stores p as the bundle of type P.
func SetParameters[P any](m *ParameterMap, p P) {
	m.set(TypeOf[P](), p)
}

// LookupParameters returns the bundle of type P without removing it.
func LookupParameters[P any](m *ParameterMap) (P, bool) {
	var zero P
	v, ok := m.Get(TypeOf[P]())
	if !ok {
		return zero, false
	}
	p, ok := v.(P)
	return p, ok
}

// TakeParameters removes the bundle of type P and returns it.
func TakeParameters[P any](m *ParameterMap) (P, bool) {
	var zero P
	v, ok := m.Take(TypeOf[P]())
	if !ok {
		return zero, false
	}
	p, ok := v.(P)
	return p, ok
}

// -----------------------------------------------------------------------------
// ComponentMap
// -----------------------------------------------------------------------------

// ComponentMap holds constructed components keyed by the interface they are
// bound to. An entry, once inserted, is never replaced or removed.
type ComponentMap struct {
	TypeMap
}

// NewComponentMap returns an empty ComponentMap.
func NewComponentMap() *ComponentMap {
	return &ComponentMap{TypeMap: *NewTypeMap()}
}

// insert stores v under t unless t already has an entry.
// It reports whether v was stored.
func (m *ComponentMap) insert(t reflect.Type, v any) bool {
	if m.Has(t) {
		return false
	}
	m.set(t, v)
	return true
}

// Take is not supported on a ComponentMap; entries live as long as the map.
func (m *ComponentMap) Take(reflect.Type) (any, bool) { return nil, false }

// LookupComponent returns the component bound to I, if it has been built.
func LookupComponent[I any](m *ComponentMap) (I, bool) {
	var zero I
	v, ok := m.Get(TypeOf[I]())
	if !ok {
		return zero, false
	}
	c, ok := v.(I)
	return c, ok
}
