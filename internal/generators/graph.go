package generators

import "fmt"

// DependencyGraph orders generators so every parent runs before its
// dependents. Ties keep registration order.
type DependencyGraph struct {
	nodes map[string][]string
	names []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string][]string),
	}
}

func (g *DependencyGraph) Add(name string, dependsOn ...string) {
	if _, ok := g.nodes[name]; !ok {
		g.names = append(g.names, name)
	}
	g.nodes[name] = dependsOn
}

func (g *DependencyGraph) BuildOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return fmt.Errorf("circular dependency detected involving generator: %s", name)
		}
		if visited[name] {
			return nil
		}

		deps, ok := g.nodes[name]
		if !ok {
			return fmt.Errorf("unknown generator dependency: %s", name)
		}

		temp[name] = true
		for _, dep := range deps {
			if dep != name {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		temp[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range g.names {
		if !visited[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}
