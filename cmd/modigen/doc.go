// Command modigen generates di module registration code from a YAML
// component manifest.
//
// Hand-written registration for a component is always the same shape: a
// parameter bundle type, a builder closure that resolves each dependency
// through the BuildContext, and a di.Bind call that declares those
// dependencies so module assembly can order and check them. modigen writes
// that shape for you; the component types themselves stay hand-written.
//
// Manifest
//
//	package: datewriter
//	di: github.com/sghaida/modi/di   # optional
//	imports: [time]                  # packages referenced by param types
//	components:
//	  - impl: ConsoleOutput
//	    interface: IOutput
//	    params:
//	      - {field: Prefix, type: string, default: '"> "'}
//	      - {field: Count, type: int, key: count}
//	  - impl: TodayWriter
//	    interface: IDateWriter
//	    lifetime: transient
//	    inject:
//	      - {field: output, type: IOutput}
//
// For each component modigen emits:
//
//   - <Impl>Parameters with yaml tags, so config.Source can decode it
//   - SetDefaults when any param has a default (a di.Defaulter)
//   - Register<Impl>(m) binding the interface to &<Impl>{...}
//
// plus RegisterComponents(m) calling every Register function. The bundle
// is stored in the Impl field named by paramsField (default "params") and
// each inject entry assigns a resolved interface to its field.
//
// The component name defaults to impl. It keys the component's section in
// config files.
//
// Typical go:generate usage
//
//	//go:generate go run ../../cmd/modigen -spec components.modi.yaml -out components_gen.go
//
// Run with -check in CI to fail when the generated file is stale.
package main
