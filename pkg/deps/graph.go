package deps

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v2"
	"golang.org/x/exp/maps"
)

// Graph records which files require which other files. It keeps the reverse
// relation alongside the forward one so dependent lookups stay cheap. Safe
// for concurrent use; the pool feeds it from results as they arrive.
type Graph struct {
	mu         sync.RWMutex
	requires   map[string][]string
	dependents map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		requires:   make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// Add records the requires list for file, replacing any previous entry.
// Self-requires and duplicates are dropped.
func (g *Graph) Add(file string, requires []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, old := range g.requires[file] {
		g.dependents[old] = removeString(g.dependents[old], file)
	}

	deduped := make([]string, 0, len(requires))
	seen := set.New[string](len(requires))
	for _, r := range requires {
		if r == file || !seen.Insert(r) {
			continue
		}
		deduped = append(deduped, r)
		g.dependents[r] = append(g.dependents[r], file)
	}
	g.requires[file] = deduped
}

// Files returns every file with a recorded entry, sorted.
func (g *Graph) Files() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := maps.Keys(g.requires)
	sort.Strings(out)
	return out
}

// Requires returns the files that file directly requires, in source order.
func (g *Graph) Requires(file string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.requires[file]...)
}

// Dependents returns the files that directly require file, sorted.
func (g *Graph) Dependents(file string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := append([]string(nil), g.dependents[file]...)
	sort.Strings(out)
	return out
}

// DependentsClosure returns the changed files together with every file that
// transitively requires one of them. The result is the set of files a
// recheck must revisit after those files change.
func (g *Graph) DependentsClosure(changed []string) *set.Set[string] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := set.From(changed)
	queue := append([]string(nil), changed...)
	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[file] {
			if out.Insert(dep) {
				queue = append(queue, dep)
			}
		}
	}
	return out
}

// CheckOrder returns the files in an order where every file comes after the
// files it requires. Requires targets never added to the graph carry no
// ordering constraint.
func (g *Graph) CheckOrder() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	indegree := make(map[string]int, len(g.requires))
	children := make(map[string][]string, len(g.requires))
	for file, reqs := range g.requires {
		if _, ok := indegree[file]; !ok {
			indegree[file] = 0
		}
		for _, r := range reqs {
			if _, known := g.requires[r]; !known {
				continue
			}
			indegree[file]++
			children[r] = append(children[r], file)
		}
	}

	queue := make([]string, 0, len(indegree))
	for file, deg := range indegree {
		if deg == 0 {
			queue = append(queue, file)
		}
	}
	sort.Strings(queue)
	for _, kids := range children {
		sort.Strings(kids)
	}

	order := make([]string, 0, len(indegree))
	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		order = append(order, file)
		for _, child := range children[file] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(order) != len(indegree) {
		emitted := set.From(order)
		var cycle []string
		for file := range indegree {
			if !emitted.Contains(file) {
				cycle = append(cycle, file)
			}
		}
		sort.Strings(cycle)
		return nil, fmt.Errorf("circular requires chain among files: %s", strings.Join(cycle, ", "))
	}
	return order, nil
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
