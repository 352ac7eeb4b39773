package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

// ContainerBuilder collects parameter bundles, sources and overrides for a
// module, then runs the single build pass that produces a Container.
type ContainerBuilder struct {
	module    *Module
	params    *ParameterMap
	overrides map[reflect.Type]any
	sources   []ParameterSource
	logger    logr.Logger
	errs      []error
}

// NewContainerBuilder starts a builder for m.
func NewContainerBuilder(m *Module) *ContainerBuilder {
	return &ContainerBuilder{
		module:    m,
		params:    NewParameterMap(),
		overrides: make(map[reflect.Type]any),
		logger:    logr.Discard(),
	}
}

// WithParameters supplies the bundle of type P. A second call for the same
// bundle type replaces the first.
func WithParameters[P any](b *ContainerBuilder, p P) *ContainerBuilder {
	SetParameters(b.params, p)
	return b
}

// WithOverride makes instance the component for I. Its builder never runs
// and the container does not close it on Shutdown.
func WithOverride[I any](b *ContainerBuilder, instance I) *ContainerBuilder {
	t := TypeOf[I]()
	if isNil(instance) {
		b.errs = append(b.errs, fmt.Errorf("override: %w: %s", ErrNilComponent, quoteType(t)))
		return b
	}
	b.overrides[t] = instance
	return b
}

// WithSource adds a source for bundles not supplied with WithParameters.
// Sources are consulted in the order they were added.
func (b *ContainerBuilder) WithSource(src ParameterSource) *ContainerBuilder {
	if src != nil {
		b.sources = append(b.sources, src)
	}
	return b
}

// WithLogger sets the logger for the build pass and the resulting container.
func (b *ContainerBuilder) WithLogger(l logr.Logger) *ContainerBuilder {
	if l.GetSink() == nil {
		l = logr.Discard()
	}
	b.logger = l
	return b
}

// Build runs the build pass: every singleton the module binds is built, in
// dependency order, before the container is returned. If a builder fails,
// the singletons built so far are closed as Shutdown would close them. The
// builder keeps its own bundles, so Build may be called again for an
// independent container.
func (b *ContainerBuilder) Build() (*Container, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	name := b.module.Name()
	for t := range b.overrides {
		if !b.module.Binds(t) {
			return nil, fmt.Errorf("module %q: override: %w", name, &NotBoundError{Interface: t})
		}
	}

	params := b.params.clone()
	if err := b.applySources(params); err != nil {
		return nil, fmt.Errorf("module %q: %w", name, err)
	}

	transient := NewParameterMap()
	for _, t := range b.module.interfaces {
		bd := b.module.bindings[t]
		if bd.lifetime != Transient {
			continue
		}
		if v, ok := params.Take(bd.params); ok {
			transient.set(bd.params, v)
		}
	}

	ctx := newBuildContext(b.module, params, transient, b.logger)
	for t, inst := range b.overrides {
		ctx.resolved.insert(t, inst)
	}

	for _, t := range b.module.order {
		if b.module.bindings[t].lifetime != Singleton {
			continue
		}
		if _, err := ctx.Resolve(t); err != nil {
			err = fmt.Errorf("module %q: %w", name, err)
			if cerr := closeBuilt(context.Background(), ctx.built, ctx.resolved, b.logger); cerr != nil {
				err = errors.Join(err, cerr)
			}
			return nil, err
		}
	}

	if n := params.Len(); n > 0 {
		b.logger.V(1).Info("parameter bundles left unused", "module", name, "count", n)
	}

	c := &Container{
		module:     b.module,
		components: ctx.resolved,
		transient:  transient,
		built:      ctx.built,
		logger:     b.logger,
	}
	b.logger.Info("container built", "module", name, "components", c.components.Len())
	return c, nil
}

// applySources fills in bundles that were not set explicitly.
func (b *ContainerBuilder) applySources(params *ParameterMap) error {
	if len(b.sources) == 0 {
		return nil
	}
	for _, t := range b.module.interfaces {
		bd := b.module.bindings[t]
		if params.Has(bd.params) {
			continue
		}
		for _, src := range b.sources {
			v, ok, err := src.Parameters(bd.name, bd.params)
			if err != nil {
				return fmt.Errorf("parameters for component %q: %w", bd.name, err)
			}
			if !ok {
				continue
			}
			if err := params.Set(bd.params, v); err != nil {
				return fmt.Errorf("parameters for component %q: %w", bd.name, err)
			}
			break
		}
	}
	return nil
}

// Container is the finished object graph of a module. It is immutable and
// safe for concurrent Resolve calls.
type Container struct {
	module     *Module
	components *ComponentMap
	transient  *ParameterMap

	// built holds singletons in construction order; overrides are absent.
	built  []reflect.Type
	logger logr.Logger

	mu       sync.Mutex
	shutdown bool
}

// Resolve returns the component bound to t. Singletons come straight from
// the finished map; transient bindings are built on each call.
func (c *Container) Resolve(t reflect.Type) (any, error) {
	if inst, ok := c.components.Get(t); ok {
		return inst, nil
	}

	b, ok := c.module.binding(t)
	if !ok || b.lifetime != Transient {
		return nil, &NotBoundError{Interface: t}
	}

	ctx := &BuildContext{
		module:    c.module,
		resolved:  c.components,
		params:    NewParameterMap(),
		transient: c.transient,
		logger:    c.logger,
		sealed:    true,
	}
	return ctx.Resolve(t)
}

// Module returns the module the container was built from.
func (c *Container) Module() *Module { return c.module }

// Len returns the number of cached components, overrides included.
func (c *Container) Len() int { return c.components.Len() }

// BuildOrder returns the singletons in the order they were constructed.
func (c *Container) BuildOrder() []reflect.Type { return slices.Clone(c.built) }

// Shutdown closes every built singleton that implements io.Closer, in
// reverse construction order, so dependents close before their
// dependencies. Overrides are left to their owner. If ctx ends, the
// remaining closers are skipped and the context error is included.
//
// Calls after the first return ErrAlreadyShutdown.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return ErrAlreadyShutdown
	}
	c.shutdown = true

	return closeBuilt(ctx, c.built, c.components, c.logger)
}

// closeBuilt closes the io.Closer components among built, last built first.
// Overrides never appear in built. It stops early once ctx is done.
func closeBuilt(ctx context.Context, built []reflect.Type, components *ComponentMap, logger logr.Logger) error {
	var errs []error
	for i := len(built) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		t := built[i]
		inst, _ := components.Get(t)
		closer, ok := inst.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Error(err, "closing component failed", "interface", t.String())
			errs = append(errs, fmt.Errorf("closing %s: %w", quoteType(t), err))
		}
	}

	return errors.Join(errs...)
}
