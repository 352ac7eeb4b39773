package di

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared test components used across test files.

type output interface {
	Format(content string) string
}

type outputParameters struct {
	Prefix string
	Count  int
}

type consoleOutput struct {
	prefix string
	count  int
}

func (o *consoleOutput) Format(content string) string {
	return o.prefix + "#" + strconv.Itoa(o.count) + " " + content
}

type writer interface {
	Output() output
}

type todayWriter struct {
	output output
}

func (w *todayWriter) Output() output { return w.output }

// Diamond: a -> (b, c) -> d.
type (
	compA interface{ A() }
	compB interface{ B() }
	compC interface{ C() }
	compD interface{ D() }
)

type nodeA struct {
	b compB
	c compC
}

type nodeB struct{ d compD }
type nodeC struct{ d compD }
type nodeD struct{ id int }

func (*nodeA) A() {}
func (*nodeB) B() {}
func (*nodeC) C() {}
func (*nodeD) D() {}

var errBoom = errors.New("boom")

func bindOutput(m *ModuleBuilder, opts ...BindOption) {
	Bind(m, func(_ *BuildContext, p outputParameters) (output, error) {
		return &consoleOutput{prefix: p.Prefix, count: p.Count}, nil
	}, opts...)
}

func bindWriter(m *ModuleBuilder) {
	Bind(m, func(ctx *BuildContext, _ struct{}) (writer, error) {
		out, err := Resolve[output](ctx)
		if err != nil {
			return nil, err
		}
		return &todayWriter{output: out}, nil
	}, DependsOn[output]())
}

// diamondModule binds a -> (b, c) -> d and counts builds of d.
func diamondModule(t *testing.T, dBuilds *int) *Module {
	t.Helper()

	m := NewModule("diamond")
	Bind(m, func(ctx *BuildContext, _ struct{}) (compA, error) {
		b, err := Resolve[compB](ctx)
		if err != nil {
			return nil, err
		}
		c, err := Resolve[compC](ctx)
		if err != nil {
			return nil, err
		}
		return &nodeA{b: b, c: c}, nil
	}, DependsOn[compB](), DependsOn[compC]())
	Bind(m, func(ctx *BuildContext, _ struct{}) (compB, error) {
		d, err := Resolve[compD](ctx)
		if err != nil {
			return nil, err
		}
		return &nodeB{d: d}, nil
	}, DependsOn[compD]())
	Bind(m, func(ctx *BuildContext, _ struct{}) (compC, error) {
		d, err := Resolve[compD](ctx)
		if err != nil {
			return nil, err
		}
		return &nodeC{d: d}, nil
	}, DependsOn[compD]())
	Bind(m, func(_ *BuildContext, _ struct{}) (compD, error) {
		*dBuilds++
		return &nodeD{id: *dBuilds}, nil
	})

	return mustBuildModule(t, m)
}

// mustBuildModule calls t.Fatal if module assembly fails.
func mustBuildModule(t *testing.T, m *ModuleBuilder) *Module {
	t.Helper()
	mod, err := m.Build()
	require.NoError(t, err)
	return mod
}
