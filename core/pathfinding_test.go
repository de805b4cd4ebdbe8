package core

import (
	"testing"
)

func equalPath(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// graphFromEdges builds a graph of n anonymous nodes with the given edges.
func graphFromEdges(n int, edges ...Edge) *Graph {
	g := &Graph{Nodes: make([]*Node, n)}
	for i := range g.Nodes {
		g.Nodes[i] = &Node{Location: &Location{ID: string(rune('A' + i))}}
	}
	for _, e := range edges {
		g.Nodes[e.From].Edges = append(g.Nodes[e.From].Edges, e)
	}
	return g
}

func TestShortestPath_PrefersCheaperDetour(t *testing.T) {
	// 0 = start, 1 = mid, 2 = end.
	g := graphFromEdges(3,
		Edge{From: 0, To: 2, Cost: 5},
		Edge{From: 0, To: 1, Cost: 1},
		Edge{From: 1, To: 2, Cost: 2},
	)

	path, ok := ShortestPath(g, 0, 2)
	if !ok {
		t.Fatalf("expected a path")
	}
	if !equalPath(path, []int{0, 1, 2}) {
		t.Fatalf("path = %v, want [0 1 2]", path)
	}
	if cost := g.PathCost(path); cost != 3 {
		t.Fatalf("cost = %d, want 3", cost)
	}
}

func TestShortestPath_DirectWhenCheaper(t *testing.T) {
	g := graphFromEdges(3,
		Edge{From: 0, To: 2, Cost: 2},
		Edge{From: 0, To: 1, Cost: 1},
		Edge{From: 1, To: 2, Cost: 4},
	)

	path, ok := ShortestPath(g, 0, 2)
	if !ok || !equalPath(path, []int{0, 2}) {
		t.Fatalf("path = %v (ok=%v), want [0 2]", path, ok)
	}
}

func TestShortestPath_Disconnected(t *testing.T) {
	g := graphFromEdges(4,
		Edge{From: 0, To: 1, Cost: 1},
		Edge{From: 1, To: 0, Cost: 1},
		Edge{From: 2, To: 3, Cost: 1},
		Edge{From: 3, To: 2, Cost: 1},
	)

	path, ok := ShortestPath(g, 0, 3)
	if ok || path != nil {
		t.Fatalf("expected no path, got %v", path)
	}
}

func TestShortestPath_RespectsDirection(t *testing.T) {
	g := graphFromEdges(2, Edge{From: 1, To: 0, Cost: 1})

	if _, ok := ShortestPath(g, 0, 1); ok {
		t.Fatalf("expected edge direction to be honoured")
	}
	if path, ok := ShortestPath(g, 1, 0); !ok || !equalPath(path, []int{1, 0}) {
		t.Fatalf("path = %v (ok=%v), want [1 0]", path, ok)
	}
}

func TestShortestPath_StartIsEnd(t *testing.T) {
	g := graphFromEdges(2, Edge{From: 0, To: 1, Cost: 7})

	path, ok := ShortestPath(g, 1, 1)
	if !ok || !equalPath(path, []int{1}) {
		t.Fatalf("path = %v (ok=%v), want [1]", path, ok)
	}
}

func TestShortestPath_LongerChain(t *testing.T) {
	// Two routes 0->4: 0-1-2-4 (1+1+1) and 0-3-4 (1+5). Also a tempting
	// cheap first hop that dead-ends.
	g := graphFromEdges(6,
		Edge{From: 0, To: 1, Cost: 1},
		Edge{From: 1, To: 2, Cost: 1},
		Edge{From: 2, To: 4, Cost: 1},
		Edge{From: 0, To: 3, Cost: 1},
		Edge{From: 3, To: 4, Cost: 5},
		Edge{From: 0, To: 5, Cost: 0},
	)

	path, ok := ShortestPath(g, 0, 4)
	if !ok || !equalPath(path, []int{0, 1, 2, 4}) {
		t.Fatalf("path = %v (ok=%v), want [0 1 2 4]", path, ok)
	}
}

func TestShortestPath_PanicsOnBadIndex(t *testing.T) {
	g := graphFromEdges(2)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range index")
		}
	}()
	ShortestPath(g, 0, 2)
}
