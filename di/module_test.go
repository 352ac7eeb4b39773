package di_test

import (
	"reflect"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/modi/di"
)

//
// -----------------------------------------------------------------------------
// ModuleBuilder.Build
// -----------------------------------------------------------------------------

// TestModuleBuild_DuplicateBinding verifies a second binding fails assembly before any builder runs.
func TestModuleBuild_DuplicateBinding(t *testing.T) {
	t.Parallel()

	calls := 0
	m := di.NewModule("dup")
	for range 2 {
		di.Bind(m, func(_ *di.BuildContext, _ outputParameters) (output, error) {
			calls++
			return &consoleOutput{}, nil
		})
	}

	mod, err := m.Build()
	require.ErrorIs(t, err, di.ErrDuplicateBinding)
	assert.Nil(t, mod)
	assert.Contains(t, err.Error(), `di: duplicate binding for "di_test.output"`)
	assert.Contains(t, err.Error(), `module "dup"`)
	assert.Equal(t, 0, calls)
}

// TestModuleBuild_UnboundDependency verifies declared dependencies must be bound.
func TestModuleBuild_UnboundDependency(t *testing.T) {
	t.Parallel()

	m := di.NewModule("partial")
	bindWriter(m)

	_, err := m.Build()
	require.ErrorIs(t, err, di.ErrNotBound)
	assert.Contains(t, err.Error(), `"di_test.writer" depends on di: interface "di_test.output" not bound`)
}

// TestModuleBuild_SelfDependency verifies a binding may not depend on itself.
func TestModuleBuild_SelfDependency(t *testing.T) {
	t.Parallel()

	m := di.NewModule("self")
	di.Bind(m, func(_ *di.BuildContext, _ struct{}) (selfRef, error) {
		return nil, nil
	}, di.DependsOn[selfRef]())

	_, err := m.Build()
	require.ErrorIs(t, err, di.ErrCircularDependency)
	assert.Contains(t, err.Error(), "di_test.selfRef -> di_test.selfRef")
}

// TestModuleBuild_NilBuilder verifies nil builders are reported.
func TestModuleBuild_NilBuilder(t *testing.T) {
	t.Parallel()

	m := di.NewModule("nil")
	di.Bind[output, outputParameters](m, nil)

	_, err := m.Build()
	require.ErrorIs(t, err, di.ErrNilBuilder)
}

// TestModuleBuild_JoinsErrors verifies every assembly problem is reported at once.
func TestModuleBuild_JoinsErrors(t *testing.T) {
	t.Parallel()

	m := di.NewModule("many")
	bindWriter(m)
	di.Bind[selfRef, struct{}](m, nil)

	_, err := m.Build()
	require.ErrorIs(t, err, di.ErrNotBound)
	require.ErrorIs(t, err, di.ErrNilBuilder)
}

//
// -----------------------------------------------------------------------------
// Module
// -----------------------------------------------------------------------------

// TestModule_Introspection verifies the accessors describe the bindings.
func TestModule_Introspection(t *testing.T) {
	t.Parallel()

	m := di.NewModule("app")
	bindOutput(m, di.Named("ConsoleOutput"), di.WithLifetime(di.Transient))
	bindWriter(m)
	mod := mustBuildModule(t, m)

	assert.Equal(t, "app", mod.Name())
	assert.True(t, di.Binds[output](mod))
	assert.True(t, mod.Binds(di.TypeOf[writer]()))
	assert.False(t, di.Binds[compA](mod))
	assert.Equal(t, []reflect.Type{di.TypeOf[output](), di.TypeOf[writer]()}, mod.Interfaces())
	assert.Equal(t, []reflect.Type{di.TypeOf[output]()}, mod.Dependencies(di.TypeOf[writer]()))
	assert.Nil(t, mod.Dependencies(di.TypeOf[compA]()))

	name, ok := mod.ComponentName(di.TypeOf[output]())
	require.True(t, ok)
	assert.Equal(t, "ConsoleOutput", name)

	name, ok = mod.ComponentName(di.TypeOf[writer]())
	require.True(t, ok)
	assert.Equal(t, "writer", name)

	lt, ok := mod.Lifetime(di.TypeOf[output]())
	require.True(t, ok)
	assert.Equal(t, di.Transient, lt)

	_, ok = mod.Lifetime(di.TypeOf[compA]())
	assert.False(t, ok)
}

// TestModule_OrderPutsDependenciesFirst verifies Order respects declared dependencies.
func TestModule_OrderPutsDependenciesFirst(t *testing.T) {
	t.Parallel()

	var builds int
	mod := diamondModule(t, &builds)
	order := mod.Order()
	require.Len(t, order, 4)

	pos := func(tt reflect.Type) int { return slices.Index(order, tt) }
	assert.Less(t, pos(di.TypeOf[compD]()), pos(di.TypeOf[compB]()))
	assert.Less(t, pos(di.TypeOf[compD]()), pos(di.TypeOf[compC]()))
	assert.Less(t, pos(di.TypeOf[compB]()), pos(di.TypeOf[compA]()))
	assert.Less(t, pos(di.TypeOf[compC]()), pos(di.TypeOf[compA]()))
	assert.Equal(t, 0, builds, "assembling a module builds nothing")
}

// TestModule_IsolatedFromBuilder verifies later Bind calls do not leak into a built module.
func TestModule_IsolatedFromBuilder(t *testing.T) {
	t.Parallel()

	m := di.NewModule("app")
	bindOutput(m)
	mod := mustBuildModule(t, m)

	bindWriter(m)
	assert.False(t, di.Binds[writer](mod))
	assert.Len(t, mod.Interfaces(), 1)
}

//
// -----------------------------------------------------------------------------
// Lifetime
// -----------------------------------------------------------------------------

// TestLifetime_String verifies lifetimes print by name and unknown values by number.
func TestLifetime_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   di.Lifetime
		want string
	}{
		{name: "singleton", in: di.Singleton, want: "singleton"},
		{name: "transient", in: di.Transient, want: "transient"},
		{name: "unknown", in: di.Lifetime(99), want: "Lifetime(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}
