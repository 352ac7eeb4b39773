package di

import (
	"errors"
	"fmt"
	"reflect"
)

// ParameterSource supplies parameter bundles that were not set explicitly
// on a ContainerBuilder.
//
// It is intentionally:
// - read-only
// - keyed by component name (see Named)
// - consulted once per component, before the build pass starts
//
// t is the bundle type the component expects; a returned value must be
// assignable to it. ok=false means the source has nothing for the component.
type ParameterSource interface {
	Parameters(component string, t reflect.Type) (val any, ok bool, err error)
}

// ErrSourcePanic is returned if a source implementation panics internally.
var ErrSourcePanic = errors.New("di: panic in parameter source")

// MapSource is a simple in-memory source of ready-made bundles.
type MapSource struct {
	items map[string]any
}

// NewMapSource returns an empty MapSource.
func NewMapSource() *MapSource {
	return &MapSource{items: map[string]any{}}
}

// Provide stores a bundle for a component and returns the source for chaining.
func (s *MapSource) Provide(component string, bundle any) *MapSource {
	s.items[component] = bundle
	return s
}

// Parameters implements ParameterSource and converts panics into errors.
func (s *MapSource) Parameters(component string, t reflect.Type) (val any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			val = nil
			ok = false
			err = fmt.Errorf("%w: %v", ErrSourcePanic, rec)
		}
	}()

	v, ok := s.items[component]
	if !ok {
		return nil, false, nil
	}
	if got := reflect.TypeOf(v); got == nil || !got.AssignableTo(t) {
		return nil, false, &ParameterTypeError{Want: t, Got: got}
	}
	return v, true, nil
}

// Get returns the bundle if present (no panic).
func (s *MapSource) Get(component string) (any, bool) {
	v, ok := s.items[component]
	return v, ok
}
