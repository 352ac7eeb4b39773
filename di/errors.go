package di

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrNotBound is matched by errors for interfaces the module never bound.
	ErrNotBound = errors.New("di: interface not bound")

	// ErrDuplicateBinding is matched when a module binds the same interface twice.
	ErrDuplicateBinding = errors.New("di: duplicate binding")

	// ErrCircularDependency is matched when resolving an interface requires
	// itself, directly or through other components.
	ErrCircularDependency = errors.New("di: circular dependency")

	// ErrNilComponent is returned when a builder returns a nil instance
	// without an error.
	ErrNilComponent = errors.New("di: builder returned nil component")

	// ErrParameterType is matched when a parameter bundle does not have the
	// bundle type it is stored under.
	ErrParameterType = errors.New("di: parameter bundle has wrong type")

	// ErrComponentType is returned when a resolved component cannot be
	// converted to the requested type.
	ErrComponentType = errors.New("di: component has wrong type")

	// ErrNilBuilder is returned when a binding is declared with a nil builder.
	ErrNilBuilder = errors.New("di: nil builder")

	// ErrAlreadyShutdown is returned by Container.Shutdown after the first call.
	ErrAlreadyShutdown = errors.New("di: container already shut down")
)

// NotBoundError reports an interface with no binding in the module.
type NotBoundError struct{ Interface reflect.Type }

// Error implements the error interface.
func (e *NotBoundError) Error() string {
	// Example: di: interface "datewriter.IOutput" not bound
	return "di: interface " + quoteType(e.Interface) + " not bound"
}

// Is reports whether target is ErrNotBound.
func (e *NotBoundError) Is(target error) bool { return target == ErrNotBound }

// DuplicateBindingError reports a second binding for the same interface.
type DuplicateBindingError struct{ Interface reflect.Type }

// Error implements the error interface.
func (e *DuplicateBindingError) Error() string {
	return "di: duplicate binding for " + quoteType(e.Interface)
}

// Is reports whether target is ErrDuplicateBinding.
func (e *DuplicateBindingError) Is(target error) bool { return target == ErrDuplicateBinding }

// CycleError reports a dependency chain that leads back to its start.
// Chain begins and ends with the same interface.
type CycleError struct{ Chain []reflect.Type }

// Error implements the error interface.
func (e *CycleError) Error() string {
	// Example: di: circular dependency: a.A -> a.B -> a.A
	parts := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		parts[i] = typeName(t)
	}
	return "di: circular dependency: " + strings.Join(parts, " -> ")
}

// Is reports whether target is ErrCircularDependency.
func (e *CycleError) Is(target error) bool { return target == ErrCircularDependency }

// BuildError wraps an error returned by the builder of Interface.
type BuildError struct {
	Interface reflect.Type
	Err       error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return "di: building " + quoteType(e.Interface) + ": " + e.Err.Error()
}

// Unwrap returns the builder error.
func (e *BuildError) Unwrap() error { return e.Err }

// ParameterTypeError reports a bundle stored under a type it does not have.
// Got is nil when the bundle itself was nil.
type ParameterTypeError struct {
	Want reflect.Type
	Got  reflect.Type
}

// Error implements the error interface.
func (e *ParameterTypeError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = typeName(e.Got)
	}
	return "di: parameters for " + quoteType(e.Want) + " have type (" + got + ")"
}

// Is reports whether target is ErrParameterType.
func (e *ParameterTypeError) Is(target error) bool { return target == ErrParameterType }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func quoteType(t reflect.Type) string {
	return strconv.Quote(typeName(t))
}
