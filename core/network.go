package core

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Edge is a directed, visibility-backed hop between two graph nodes.
// Cost is the straight-line distance in whole kilometres (truncated).
type Edge struct {
	From int
	To   int
	Cost int64
}

// Node is a graph vertex: a location and its outgoing edges.
type Node struct {
	Location *Location
	Edges    []Edge
}

// Graph is a visibility graph. A node's identity is its index in Nodes,
// which matches the index of its location in the slice the graph was built
// from. The graph is read-only once built.
type Graph struct {
	Nodes []*Node
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// EdgeCount returns the total number of directed edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, node := range g.Nodes {
		n += len(node.Edges)
	}
	return n
}

// IDs maps a sequence of node indices to location IDs.
func (g *Graph) IDs(path []int) []string {
	out := make([]string, 0, len(path))
	for _, idx := range path {
		out = append(out, g.Nodes[idx].Location.ID)
	}
	return out
}

// PathCost sums the edge costs along path. It returns -1 if two consecutive
// indices are not joined by an edge.
func (g *Graph) PathCost(path []int) int64 {
	var total int64
	for i := 0; i+1 < len(path); i++ {
		cost, ok := g.edgeCost(path[i], path[i+1])
		if !ok {
			return -1
		}
		total += cost
	}
	return total
}

func (g *Graph) edgeCost(from, to int) (int64, bool) {
	for _, e := range g.Nodes[from].Edges {
		if e.To == to {
			return e.Cost, true
		}
	}
	return 0, false
}

// Dump writes one line per node listing its outgoing edges, e.g.
//
//	SAT-1 -> SAT-2(1200), ROUTE-END(843)
func (g *Graph) Dump(w io.Writer) error {
	for _, node := range g.Nodes {
		hops := make([]string, 0, len(node.Edges))
		for _, e := range node.Edges {
			hops = append(hops, fmt.Sprintf("%s(%d)", g.Nodes[e.To].Location.ID, e.Cost))
		}
		if _, err := fmt.Fprintf(w, "%s -> %s\n", node.Location.ID, strings.Join(hops, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// VisibilityRecorder receives the outcome of every pairwise visibility
// test performed while building a network.
type VisibilityRecorder interface {
	ObserveVisibility(visible bool)
}

// NetworkBuilder builds visibility graphs over a planet.
type NetworkBuilder struct {
	planet     Planet
	maxRangeKm float64
	recorder   VisibilityRecorder
}

// NetworkBuilderOption configures a NetworkBuilder.
type NetworkBuilderOption func(*NetworkBuilder)

// WithMaxRangeKm drops edges longer than km. Candidate pairs are then
// pre-filtered through a SpatialIndex instead of testing every pair.
// Zero or negative means unlimited.
func WithMaxRangeKm(km float64) NetworkBuilderOption {
	return func(b *NetworkBuilder) {
		b.maxRangeKm = km
	}
}

// WithVisibilityRecorder attaches an optional recorder for visibility
// test outcomes.
func WithVisibilityRecorder(r VisibilityRecorder) NetworkBuilderOption {
	return func(b *NetworkBuilder) {
		b.recorder = r
	}
}

// NewNetworkBuilder constructs a builder for the given planet.
func NewNetworkBuilder(planet Planet, opts ...NetworkBuilderOption) *NetworkBuilder {
	b := &NetworkBuilder{planet: planet}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// BuildNetwork tests every ordered pair of locations and returns the
// resulting visibility graph. This is O(N²) in the number of locations.
func BuildNetwork(locations []*Location, planet Planet) *Graph {
	return NewNetworkBuilder(planet).Build(locations)
}

// Build returns the visibility graph over locations. Node i of the result
// holds locations[i]. Self-pairs are excluded by index, so two distinct
// locations sharing a position are still treated as separate nodes.
func (b *NetworkBuilder) Build(locations []*Location) *Graph {
	g := &Graph{Nodes: make([]*Node, len(locations))}
	for i, loc := range locations {
		g.Nodes[i] = &Node{Location: loc}
	}

	var index *SpatialIndex
	if b.maxRangeKm > 0 {
		index = NewSpatialIndex(locations)
	}

	for i, s1 := range locations {
		for _, j := range b.candidates(index, s1.Position, len(locations)) {
			if j == i {
				continue
			}
			s2 := locations[j]

			dist := s1.Position.DistanceTo(s2.Position)
			if b.maxRangeKm > 0 && dist > b.maxRangeKm {
				continue
			}

			if !b.visible(s1.Position, s2.Position) {
				continue
			}
			g.Nodes[i].Edges = append(g.Nodes[i].Edges, Edge{
				From: i,
				To:   j,
				Cost: int64(dist),
			})
		}
	}
	return g
}

// candidates lists, in ascending order, the node indices worth testing
// against a location at pos.
func (b *NetworkBuilder) candidates(index *SpatialIndex, pos Vec3, n int) []int {
	if index == nil {
		all := make([]int, n)
		for j := range all {
			all[j] = j
		}
		return all
	}
	out := index.Within(pos, b.maxRangeKm)
	sort.Ints(out)
	return out
}

func (b *NetworkBuilder) visible(p1, p2 Vec3) bool {
	var visible bool
	if p1 == p2 {
		// Distinct locations at one point: the kernel cannot cast a ray,
		// so the pair is visible exactly when the point is outside the body.
		visible = !b.planet.Contains(p1)
	} else {
		visible, _ = b.planet.HasLineOfSight(p1, p2)
	}
	if b.recorder != nil {
		b.recorder.ObserveVisibility(visible)
	}
	return visible
}
