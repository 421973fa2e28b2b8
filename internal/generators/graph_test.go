package generators

import (
	"strings"
	"testing"
)

func TestDependencyGraphOrder(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("comments", "articles", "users")
	g.Add("articles", "users")
	g.Add("users")
	g.Add("chat", "users")

	order, err := g.BuildOrder()
	if err != nil {
		t.Fatalf("BuildOrder failed: %v", err)
	}

	want := []string{"users", "articles", "comments", "chat"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("Expected order %v, got %v", want, order)
	}
}

func TestDependencyGraphCycle(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("a", "b")
	g.Add("b", "c")
	g.Add("c", "a")

	if _, err := g.BuildOrder(); err == nil || !strings.Contains(err.Error(), "circular dependency") {
		t.Errorf("Expected circular dependency error, got %v", err)
	}
}

func TestDependencyGraphUnknownDependency(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("articles", "authors")

	if _, err := g.BuildOrder(); err == nil || !strings.Contains(err.Error(), "authors") {
		t.Errorf("Expected unknown dependency error, got %v", err)
	}
}

func TestDependencyGraphSelfReferenceIgnored(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("comments", "comments")

	order, err := g.BuildOrder()
	if err != nil {
		t.Fatalf("BuildOrder failed: %v", err)
	}
	if len(order) != 1 || order[0] != "comments" {
		t.Errorf("Expected [comments], got %v", order)
	}
}

func TestAllGeneratorsOrder(t *testing.T) {
	p := &Pipeline{gens: All()}
	plan, err := p.Plan(nil)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	pos := make(map[string]int)
	for i, g := range plan {
		pos[g.Name()] = i
	}
	if len(pos) != len(All()) {
		t.Fatalf("Expected %d generators, got %v", len(All()), Names(plan))
	}
	for _, g := range plan {
		for _, dep := range g.DependsOn() {
			if pos[dep] >= pos[g.Name()] {
				t.Errorf("%s runs before its dependency %s", g.Name(), dep)
			}
		}
	}
}
