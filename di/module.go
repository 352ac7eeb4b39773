package di

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// Defaulter is implemented (on the pointer receiver) by parameter bundles
// whose defaults are not the zero value. SetDefaults runs on a zero bundle
// whenever no bundle was supplied for a component.
type Defaulter interface {
	SetDefaults()
}

// Lifetime says how often a binding's builder runs within one container.
type Lifetime uint8

const (
	Singleton Lifetime = iota // once, by the build pass; every resolution shares it
	Transient                 // on every resolution; the bundle is read, never taken
)

var lifetimeNames = [...]string{Singleton: "singleton", Transient: "transient"}

func (l Lifetime) String() string {
	if int(l) < len(lifetimeNames) {
		return lifetimeNames[l]
	}
	return "Lifetime(" + strconv.Itoa(int(l)) + ")"
}

type buildFunc func(ctx *BuildContext, params any) (any, error)

// binding is one interface → builder entry of a module.
type binding struct {
	iface    reflect.Type
	params   reflect.Type
	name     string
	lifetime Lifetime
	deps     []reflect.Type
	build    buildFunc
	defaults func() any
}

// BindOption configures a binding declared with Bind.
type BindOption func(*binding)

// DependsOn declares that the component resolves J while it is built.
// Declared dependencies are validated when the module is built and decide
// the order in which a container builds its components.
func DependsOn[J any]() BindOption {
	return func(b *binding) {
		b.deps = append(b.deps, TypeOf[J]())
	}
}

// Named sets the component name used by parameter sources and logs.
// It defaults to the name of the bound interface.
func Named(name string) BindOption {
	return func(b *binding) {
		if name != "" {
			b.name = name
		}
	}
}

// WithLifetime sets the Lifetime of the binding. The default is Singleton.
func WithLifetime(l Lifetime) BindOption {
	return func(b *binding) {
		b.lifetime = l
	}
}

// ModuleBuilder collects bindings until Build freezes them into a Module.
type ModuleBuilder struct {
	name     string
	bindings map[reflect.Type]*binding
	order    []reflect.Type
	errs     []error
}

// NewModule starts an empty module.
func NewModule(name string) *ModuleBuilder {
	return &ModuleBuilder{
		name:     name,
		bindings: make(map[reflect.Type]*binding),
	}
}

// Bind binds interface I to build. P is the component's parameter bundle
// type; build receives the supplied bundle, or the default bundle when none
// was supplied, and may resolve its dependencies from ctx.
//
// Mistakes (duplicates, nil builders) are recorded and reported by Build.
func Bind[I, P any](m *ModuleBuilder, build func(ctx *BuildContext, p P) (I, error), opts ...BindOption) *ModuleBuilder {
	iface := TypeOf[I]()
	if build == nil {
		m.errs = append(m.errs, fmt.Errorf("%w for %s", ErrNilBuilder, quoteType(iface)))
		return m
	}
	if _, exists := m.bindings[iface]; exists {
		m.errs = append(m.errs, &DuplicateBindingError{Interface: iface})
		return m
	}

	b := &binding{
		iface:    iface,
		params:   TypeOf[P](),
		name:     iface.Name(),
		lifetime: Singleton,
		build: func(ctx *BuildContext, raw any) (any, error) {
			p, _ := raw.(P)
			inst, err := build(ctx, p)
			if err != nil {
				return nil, err
			}
			return inst, nil
		},
		defaults: func() any { return defaultParameters[P]() },
	}
	if b.name == "" {
		b.name = iface.String()
	}
	for _, opt := range opts {
		opt(b)
	}

	m.bindings[iface] = b
	m.order = append(m.order, iface)
	return m
}

func defaultParameters[P any]() P {
	var p P
	if d, ok := any(&p).(Defaulter); ok {
		d.SetDefaults()
	}
	return p
}

// Build validates the bindings and returns the immutable Module. It fails
// before any component exists when an interface is bound twice, a builder
// is nil, or a declared dependency is not bound. All problems are joined.
func (m *ModuleBuilder) Build() (*Module, error) {
	errs := slices.Clone(m.errs)
	for _, t := range m.order {
		for _, dep := range m.bindings[t].deps {
			if dep == t {
				errs = append(errs, &CycleError{Chain: []reflect.Type{t, t}})
				continue
			}
			if _, ok := m.bindings[dep]; !ok {
				errs = append(errs, fmt.Errorf("%s depends on %w", quoteType(t), &NotBoundError{Interface: dep}))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("module %q: %w", m.name, errors.Join(errs...))
	}

	bindings := make(map[reflect.Type]*binding, len(m.bindings))
	for t, b := range m.bindings {
		bindings[t] = b
	}
	interfaces := slices.Clone(m.order)

	order, err := dependencyOrder(interfaces, bindings)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", m.name, err)
	}

	return &Module{
		name:       m.name,
		bindings:   bindings,
		interfaces: interfaces,
		order:      order,
	}, nil
}

// Module is a fixed set of interface → component bindings. It is built by
// ModuleBuilder.Build and never changes afterwards.
type Module struct {
	name       string
	bindings   map[reflect.Type]*binding
	interfaces []reflect.Type
	order      []reflect.Type
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Binds reports whether the module binds t.
func (m *Module) Binds(t reflect.Type) bool {
	_, ok := m.bindings[t]
	return ok
}

// Binds reports whether m binds I.
func Binds[I any](m *Module) bool { return m.Binds(TypeOf[I]()) }

// Interfaces returns the bound interfaces in registration order.
func (m *Module) Interfaces() []reflect.Type { return slices.Clone(m.interfaces) }

// Order returns the bound interfaces with every declared dependency ahead
// of its dependents. Containers build singletons in this order.
func (m *Module) Order() []reflect.Type { return slices.Clone(m.order) }

// Dependencies returns the declared dependencies of t.
func (m *Module) Dependencies(t reflect.Type) []reflect.Type {
	b, ok := m.bindings[t]
	if !ok {
		return nil
	}
	return slices.Clone(b.deps)
}

// ComponentName returns the component name bound to t.
func (m *Module) ComponentName(t reflect.Type) (string, bool) {
	b, ok := m.bindings[t]
	if !ok {
		return "", false
	}
	return b.name, true
}

// Lifetime returns the lifetime of the binding for t.
func (m *Module) Lifetime(t reflect.Type) (Lifetime, bool) {
	b, ok := m.bindings[t]
	if !ok {
		return Singleton, false
	}
	return b.lifetime, true
}

func (m *Module) binding(t reflect.Type) (*binding, bool) {
	b, ok := m.bindings[t]
	return b, ok
}
