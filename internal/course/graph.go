// SPDX-License-Identifier: MPL-2.0

package course

import (
	"fmt"
	"strings"

	"kurso/pkg/types"
)

type (
	// CycleError indicates that the prerequisite graph contains a cycle,
	// preventing a study order.
	CycleError struct {
		// Cycle contains the lesson ids involved (enough of them to
		// identify the problem, not necessarily the full cycle).
		Cycle []types.Slug
	}

	// prereqGraph is a directed graph over lesson ids. An edge from A to B
	// means A must be studied before B.
	prereqGraph struct {
		adjacency map[types.Slug][]types.Slug
		nodes     []types.Slug
		nodeSet   map[types.Slug]bool
	}
)

// Error implements the error interface for CycleError.
func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, id := range e.Cycle {
		parts[i] = id.String()
	}
	return fmt.Sprintf("prerequisite cycle detected: %s", strings.Join(parts, " -> "))
}

func newPrereqGraph() *prereqGraph {
	return &prereqGraph{
		adjacency: make(map[types.Slug][]types.Slug),
		nodeSet:   make(map[types.Slug]bool),
	}
}

// addNode adds a node; adding an existing node is a no-op.
func (g *prereqGraph) addNode(id types.Slug) {
	if g.nodeSet[id] {
		return
	}
	g.nodeSet[id] = true
	g.nodes = append(g.nodes, id)
}

// addEdge records that from must be studied before to. Both nodes are
// implicitly added.
func (g *prereqGraph) addEdge(from, to types.Slug) {
	g.addNode(from)
	g.addNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// topologicalSort orders the graph with Kahn's algorithm. The order is
// deterministic: nodes at the same level appear in insertion order, which
// Discover makes the course order. Returns CycleError when no order exists.
func (g *prereqGraph) topologicalSort() ([]types.Slug, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[types.Slug]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]types.Slug, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []types.Slug
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycleNodes []types.Slug
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}
