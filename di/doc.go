// Package di provides a small, typed dependency-injection container.
//
// A Module binds each interface to exactly one builder function. Building a
// Container runs a single pass over the module: a BuildContext builds every
// component once, feeding each builder its parameter bundle and letting it
// resolve its own dependencies, and caches the instance so every dependent
// shares it.
//
//	m := di.NewModule("app")
//	di.Bind(m, func(ctx *di.BuildContext, p OutputParameters) (IOutput, error) {
//		return &ConsoleOutput{prefix: p.Prefix, count: p.Count}, nil
//	})
//	di.Bind(m, func(ctx *di.BuildContext, _ struct{}) (IWriter, error) {
//		out, err := di.Resolve[IOutput](ctx)
//		if err != nil {
//			return nil, err
//		}
//		return &Writer{output: out}, nil
//	}, di.DependsOn[IOutput]())
//
//	mod, err := m.Build()
//	...
//	c, err := di.WithParameters(di.NewContainerBuilder(mod), OutputParameters{Prefix: "P>", Count: 3}).Build()
//	...
//	w, err := di.Resolve[IWriter](c)
//
// Rules worth knowing:
//   - A module rejects duplicate bindings and undeclared-but-depended-on
//     interfaces when it is built, before any component exists.
//   - A parameter bundle is consumed by the first build of its component.
//     A missing bundle is not an error: the zero bundle is used, adjusted by
//     SetDefaults when the bundle type implements Defaulter.
//   - Resolving an interface the module does not bind returns an error
//     matching ErrNotBound. Dependency cycles return ErrCircularDependency.
//   - After Build the container only reads its component map, so Resolve is
//     safe from many goroutines.
//
// Registration glue can be written by hand or generated with cmd/modigen.
//
// Import
//
//	"github.com/sghaida/modi/di"
package di
