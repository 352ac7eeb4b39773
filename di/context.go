package di

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/go-logr/logr"
)

// Resolver hands out components by interface type. BuildContext and
// Container both implement it; prefer the generic Resolve helper.
type Resolver interface {
	Resolve(t reflect.Type) (any, error)
}

// BuildContext resolves components during a container's build pass. It
// builds each singleton at most once, consuming its parameter bundle, and
// caches the instance for every later resolution.
//
// Builders receive the context so they can resolve their own dependencies;
// the dependency graph is walked depth-first in whatever order builders ask
// for it. A BuildContext is single-threaded and is discarded once the
// container exists.
type BuildContext struct {
	module *Module

	resolved *ComponentMap
	params   *ParameterMap

	// transient bundles are read on every build and never taken.
	transient *ParameterMap

	// resolving is the chain of interfaces currently being built.
	resolving []reflect.Type

	// built records singletons in construction order.
	built []reflect.Type

	logger logr.Logger

	// sealed contexts serve transient resolutions after the build pass and
	// must not write to resolved.
	sealed bool
}

func newBuildContext(m *Module, params, transient *ParameterMap, logger logr.Logger) *BuildContext {
	return &BuildContext{
		module:    m,
		resolved:  NewComponentMap(),
		params:    params,
		transient: transient,
		logger:    logger,
	}
}

// Resolve returns the component bound to t, building it on first use.
func (ctx *BuildContext) Resolve(t reflect.Type) (any, error) {
	if inst, ok := ctx.resolved.Get(t); ok {
		return inst, nil
	}

	b, ok := ctx.module.binding(t)
	if !ok {
		return nil, &NotBoundError{Interface: t}
	}
	if ctx.sealed && b.lifetime == Singleton {
		// every singleton was built by the pass that sealed this map
		return nil, &NotBoundError{Interface: t}
	}

	if i := slices.Index(ctx.resolving, t); i >= 0 {
		chain := append(slices.Clone(ctx.resolving[i:]), t)
		return nil, &CycleError{Chain: chain}
	}

	ctx.resolving = append(ctx.resolving, t)
	defer func() { ctx.resolving = ctx.resolving[:len(ctx.resolving)-1] }()

	params := ctx.parameters(b)

	log := ctx.logger.WithValues("interface", t.String(), "component", b.name)
	log.V(1).Info("building component", "lifetime", b.lifetime.String(), "depth", len(ctx.resolving))

	inst, err := b.build(ctx, params)
	if err != nil {
		return nil, &BuildError{Interface: t, Err: err}
	}
	if isNil(inst) {
		return nil, fmt.Errorf("%w: %s", ErrNilComponent, quoteType(t))
	}

	if b.lifetime == Transient {
		return inst, nil
	}

	ctx.resolved.insert(t, inst)
	ctx.built = append(ctx.built, t)
	return inst, nil
}

// parameters returns the bundle for b. Singleton bundles are taken so a
// later resolution can never re-read them.
func (ctx *BuildContext) parameters(b *binding) any {
	var (
		p  any
		ok bool
	)
	if b.lifetime == Transient {
		p, ok = ctx.transient.Get(b.params)
	} else {
		p, ok = ctx.params.Take(b.params)
	}
	if ok {
		return p
	}
	ctx.logger.V(2).Info("using default parameters", "component", b.name, "parameters", b.params.String())
	return b.defaults()
}

// isNil also catches a nil pointer, map, slice, func or channel boxed in a
// non-nil interface, which is what a builder returning (*T)(nil) as I yields.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Module returns the module the context builds.
func (ctx *BuildContext) Module() *Module { return ctx.module }

// Resolve resolves I from r and converts it to I.
//
//	out, err := di.Resolve[IOutput](ctx)
func Resolve[I any](r Resolver) (I, error) {
	var zero I
	t := TypeOf[I]()

	v, err := r.Resolve(t)
	if err != nil {
		return zero, err
	}

	out, ok := v.(I)
	if !ok {
		return zero, fmt.Errorf("%w: cannot convert %T to %s", ErrComponentType, v, t)
	}
	return out, nil
}

// MustResolve is Resolve for composition roots: it panics on error.
func MustResolve[I any](r Resolver) I {
	out, err := Resolve[I](r)
	if err != nil {
		panic(err)
	}
	return out
}
