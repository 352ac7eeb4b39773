// Package modi is a small module-based dependency injection toolkit for Go.
//
// Components are registered against interfaces in a module. A container
// built from that module constructs each component once, resolving its
// dependencies on demand and handing it the parameter bundle configured
// for it:
//
//   - di: modules, build contexts, containers and parameter sources
//   - config: YAML parameter files with dotenv and ${VAR} expansion
//   - cmd/modigen: generates registration code from a component manifest
//   - examples/datewriter: a runnable application wired end to end
//
// Wiring stays explicit: every binding names its interface, its builder and
// the interfaces it depends on, and a module that cannot be satisfied fails
// when it is assembled rather than at first use.
//
// Start with the di package documentation and examples/datewriter.
package modi
