package core

import (
	"container/heap"
	"fmt"
	"math"
)

// ShortestPath returns the minimum-cost sequence of node indices from start
// to end, inclusive of both. The boolean is false when end is unreachable.
// Ties between equal-cost paths are broken arbitrarily.
//
// start and end must be valid node indices; anything else panics.
func ShortestPath(g *Graph, start, end int) ([]int, bool) {
	n := g.Len()
	if start < 0 || start >= n || end < 0 || end >= n {
		panic(fmt.Sprintf("core.ShortestPath: index out of range [start=%d end=%d nodes=%d]", start, end, n))
	}

	dist := make([]int64, n)
	prev := make([]int, n)
	for i := range dist {
		dist[i] = math.MaxInt64
		prev[i] = -1
	}
	dist[start] = 0

	pq := &searchQueue{}
	heap.Push(pq, &searchItem{node: start, cost: 0})
	settled := make([]bool, n)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*searchItem)
		current := item.node
		if settled[current] {
			continue
		}
		settled[current] = true
		if current == end {
			return reconstructPath(prev, end), true
		}

		for _, e := range g.Nodes[current].Edges {
			if settled[e.To] {
				continue
			}
			tentative := dist[current] + e.Cost
			if tentative < dist[e.To] {
				dist[e.To] = tentative
				prev[e.To] = current
				heap.Push(pq, &searchItem{node: e.To, cost: tentative})
			}
		}
	}

	return nil, false
}

func reconstructPath(prev []int, end int) []int {
	var path []int
	for cur := end; cur != -1; cur = prev[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type searchItem struct {
	node int
	cost int64
}

// searchQueue is a min-heap on cost. Stale entries are skipped on pop
// rather than fixed in place.
type searchQueue []*searchItem

func (pq searchQueue) Len() int           { return len(pq) }
func (pq searchQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }
func (pq searchQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *searchQueue) Push(x interface{}) {
	*pq = append(*pq, x.(*searchItem))
}

func (pq *searchQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
