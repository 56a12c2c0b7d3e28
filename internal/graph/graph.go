// Package graph models the dependency graph between capability registrations.
//
// Nodes are capability IDs. An edge from A to B means the provider of A needs
// B to be constructed first.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ErrCycle matches every *CycleError.
var ErrCycle = errors.New("dependency cycle")

// CycleError reports one cycle. Path starts and ends with the same node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

type Graph struct {
	nodes sets.Set[string]
	edges map[string]sets.Set[string]
}

func New() *Graph {
	return &Graph{
		nodes: sets.New[string](),
		edges: make(map[string]sets.Set[string]),
	}
}

func (g *Graph) AddNode(id string) {
	g.nodes.Insert(id)
}

// AddEdge records that from depends on to. Both nodes are added if missing.
func (g *Graph) AddEdge(from, to string) {
	g.nodes.Insert(from, to)
	deps, ok := g.edges[from]
	if !ok {
		deps = sets.New[string]()
		g.edges[from] = deps
	}
	deps.Insert(to)
}

// Nodes returns every node in lexical order.
func (g *Graph) Nodes() []string {
	return sets.List(g.nodes)
}

// DependenciesOf returns the direct dependencies of id in lexical order.
func (g *Graph) DependenciesOf(id string) []string {
	deps, ok := g.edges[id]
	if !ok {
		return nil
	}
	return sets.List(deps)
}

// Cycles returns one cycle per strongly connected component that contains a
// cycle (including self-loops). Each path begins at the lexically smallest
// node of its component; components are ordered by that node.
func (g *Graph) Cycles() [][]string {
	components := g.stronglyConnected()
	out := make([][]string, 0)
	for _, comp := range components {
		if len(comp) == 1 {
			n := comp[0]
			if deps, ok := g.edges[n]; ok && deps.Has(n) {
				out = append(out, []string{n, n})
			}
			continue
		}
		out = append(out, g.cycleWithin(sets.New(comp...), comp[0]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// TopologicalOrder returns the nodes with every dependency before its
// dependents. Ties are broken lexically so the order is deterministic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	pending := make(map[string]int, g.nodes.Len())
	dependents := make(map[string][]string, g.nodes.Len())
	for _, n := range g.Nodes() {
		deps := g.DependenciesOf(n)
		pending[n] = len(deps)
		for _, d := range deps {
			dependents[d] = append(dependents[d], n)
		}
	}

	ready := make([]string, 0)
	for _, n := range g.Nodes() {
		if pending[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]string, 0, g.nodes.Len())
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, dependent := range dependents[n] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != g.nodes.Len() {
		cycles := g.Cycles()
		if len(cycles) == 0 {
			// Unreachable: a leftover node always sits on or behind a cycle.
			return order, &CycleError{}
		}
		return order, &CycleError{Path: cycles[0]}
	}
	return order, nil
}

// stronglyConnected runs Tarjan's algorithm. Each component is sorted and the
// components are returned in order of their smallest member.
func (g *Graph) stronglyConnected() [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := sets.New[string]()
	stack := make([]string, 0)
	components := make([][]string, 0)

	var connect func(v string)
	connect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack.Insert(v)

		for _, w := range g.DependenciesOf(v) {
			if _, seen := indices[w]; !seen {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack.Has(w) {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			comp := make([]string, 0)
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack.Delete(w)
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			components = append(components, comp)
		}
	}

	for _, n := range g.Nodes() {
		if _, seen := indices[n]; !seen {
			connect(n)
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })
	return components
}

// cycleWithin walks from start back to start staying inside comp, always
// taking the lexically smallest unvisited dependency first.
func (g *Graph) cycleWithin(comp sets.Set[string], start string) []string {
	visited := sets.New[string]()
	var path []string

	var walk func(n string) bool
	walk = func(n string) bool {
		path = append(path, n)
		visited.Insert(n)
		for _, d := range g.DependenciesOf(n) {
			if !comp.Has(d) {
				continue
			}
			if d == start {
				path = append(path, start)
				return true
			}
			if !visited.Has(d) && walk(d) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	walk(start)
	return path
}
