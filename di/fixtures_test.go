package di_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sghaida/modi/di"
)

// Components shared by the black-box tests.

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

// a -> (b, c) -> d
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

type (
	nodeB struct{ d compD }
	nodeC struct{ d compD }
	nodeD struct{ id int }
)

func (*nodeA) A() {}
func (*nodeB) B() {}
func (*nodeC) C() {}
func (*nodeD) D() {}

type (
	cycleX  interface{ X() }
	cycleY  interface{ Y() }
	selfRef interface{ Self() }
)

type (
	upstream   interface{ Name() string }
	downstream interface{ Name() string }
)

// closer appends its name to order when closed.
type closer struct {
	name  string
	order *[]string
	err   error
}

func (c *closer) Name() string { return c.name }

func (c *closer) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

var errBoom = errors.New("boom")

func bindOutput(m *di.ModuleBuilder, opts ...di.BindOption) {
	di.Bind(m, func(_ *di.BuildContext, p outputParameters) (output, error) {
		return &consoleOutput{prefix: p.Prefix, count: p.Count}, nil
	}, opts...)
}

func bindWriter(m *di.ModuleBuilder) {
	di.Bind(m, func(ctx *di.BuildContext, _ struct{}) (writer, error) {
		out, err := di.Resolve[output](ctx)
		if err != nil {
			return nil, err
		}
		return &todayWriter{output: out}, nil
	}, di.DependsOn[output]())
}

func mustBuildModule(t *testing.T, m *di.ModuleBuilder) *di.Module {
	t.Helper()
	mod, err := m.Build()
	require.NoError(t, err)
	return mod
}

func appModule(t *testing.T) *di.Module {
	t.Helper()
	m := di.NewModule("app")
	bindOutput(m)
	bindWriter(m)
	return mustBuildModule(t, m)
}

// diamondModule binds a -> (b, c) -> d and counts builds of d.
func diamondModule(t *testing.T, dBuilds *int) *di.Module {
	t.Helper()

	m := di.NewModule("diamond")
	di.Bind(m, func(ctx *di.BuildContext, _ struct{}) (compA, error) {
		b, err := di.Resolve[compB](ctx)
		if err != nil {
			return nil, err
		}
		c, err := di.Resolve[compC](ctx)
		if err != nil {
			return nil, err
		}
		return &nodeA{b: b, c: c}, nil
	}, di.DependsOn[compB](), di.DependsOn[compC]())
	di.Bind(m, func(ctx *di.BuildContext, _ struct{}) (compB, error) {
		d, err := di.Resolve[compD](ctx)
		if err != nil {
			return nil, err
		}
		return &nodeB{d: d}, nil
	}, di.DependsOn[compD]())
	di.Bind(m, func(ctx *di.BuildContext, _ struct{}) (compC, error) {
		d, err := di.Resolve[compD](ctx)
		if err != nil {
			return nil, err
		}
		return &nodeC{d: d}, nil
	}, di.DependsOn[compD]())
	di.Bind(m, func(_ *di.BuildContext, _ struct{}) (compD, error) {
		*dBuilds++
		return &nodeD{id: *dBuilds}, nil
	})

	return mustBuildModule(t, m)
}

// closerModule binds upstream (a closer failing with upErr) and a
// downstream closer built on top of it.
func closerModule(t *testing.T, order *[]string, upErr error) *di.Module {
	t.Helper()
	m := di.NewModule("closers")
	di.Bind(m, func(_ *di.BuildContext, _ struct{}) (upstream, error) {
		return &closer{name: "upstream", order: order, err: upErr}, nil
	})
	di.Bind(m, func(ctx *di.BuildContext, _ struct{}) (downstream, error) {
		if _, err := di.Resolve[upstream](ctx); err != nil {
			return nil, err
		}
		return &closer{name: "downstream", order: order}, nil
	}, di.DependsOn[upstream]())
	return mustBuildModule(t, m)
}
