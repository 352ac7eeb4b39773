package di

import (
	"errors"
	"reflect"
	"strconv"

	"ocm.software/open-component-model/bindings/go/dag"
)

// dependencyOrder sorts interfaces so that every declared dependency comes
// before its dependents. Ties are broken by vertex key, which keeps the
// order stable across runs.
func dependencyOrder(interfaces []reflect.Type, bindings map[reflect.Type]*binding) ([]reflect.Type, error) {
	g := dag.NewDirectedAcyclicGraph[string]()
	keys := make(map[reflect.Type]string, len(interfaces))
	byKey := make(map[string]reflect.Type, len(interfaces))

	for _, t := range interfaces {
		base := vertexKey(t)
		key := base
		for i := 2; ; i++ {
			if _, taken := byKey[key]; !taken {
				break
			}
			key = base + "#" + strconv.Itoa(i)
		}
		keys[t] = key
		byKey[key] = t

		b := bindings[t]
		attrs := map[string]any{
			"name":     b.name,
			"lifetime": b.lifetime.String(),
		}
		if err := g.AddVertex(key, attrs); err != nil {
			return nil, err
		}
	}

	for _, t := range interfaces {
		for _, dep := range bindings[t].deps {
			if err := g.AddEdge(keys[t], keys[dep]); err != nil {
				return nil, translateCycle(err, byKey)
			}
		}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, translateCycle(err, byKey)
	}

	order := make([]reflect.Type, 0, len(sorted))
	for _, key := range sorted {
		order = append(order, byKey[key])
	}
	return order, nil
}

// translateCycle turns a graph cycle into a CycleError over types.
func translateCycle(err error, byKey map[string]reflect.Type) error {
	var ce *dag.CycleError
	if !errors.As(err, &ce) {
		return err
	}
	chain := make([]reflect.Type, 0, len(ce.Cycle))
	for _, key := range ce.Cycle {
		if t, ok := byKey[key]; ok {
			chain = append(chain, t)
		}
	}
	return &CycleError{Chain: chain}
}

func vertexKey(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
