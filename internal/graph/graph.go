// Package graph holds the directed document-link graph that both PageRank
// variants read. Document identifiers are mapped to dense indices at build
// time; adjacency is stored as index slices in both directions.
package graph

import "sort"

// Graph is an immutable directed multigraph over document identifiers.
// Every edge target is a node, so the node set used for normalization is
// exactly Nodes().
type Graph struct {
	ids   []string
	index map[string]int
	out   [][]int
	in    [][]int
}

// Builder accumulates nodes and edges in insertion order. The zero value is
// not usable; call NewBuilder.
type Builder struct {
	ids   []string
	index map[string]int
	out   [][]int
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// AddNode declares id as a node and returns its dense index. Declaring an
// existing node is a no-op.
func (b *Builder) AddNode(id string) int {
	if i, ok := b.index[id]; ok {
		return i
	}
	i := len(b.ids)
	b.ids = append(b.ids, id)
	b.index[id] = i
	b.out = append(b.out, nil)
	return i
}

// AddEdge records a link from src to dst. Unknown endpoints are added as
// nodes, which is how a reference to an undeclared document becomes a
// dangling node. Duplicate edges are kept.
func (b *Builder) AddEdge(src, dst string) {
	s := b.AddNode(src)
	d := b.AddNode(dst)
	b.out[s] = append(b.out[s], d)
}

// AddLinks declares src and all of its targets in order.
func (b *Builder) AddLinks(src string, targets []string) {
	b.AddNode(src)
	for _, dst := range targets {
		b.AddEdge(src, dst)
	}
}

// Build freezes the builder into a Graph and precomputes in-neighbors.
func (b *Builder) Build() *Graph {
	n := len(b.ids)
	g := &Graph{
		ids:   append([]string(nil), b.ids...),
		index: make(map[string]int, n),
		out:   make([][]int, n),
		in:    make([][]int, n),
	}
	for id, i := range b.index {
		g.index[id] = i
	}
	for src, targets := range b.out {
		g.out[src] = append([]int(nil), targets...)
		for _, dst := range targets {
			g.in[dst] = append(g.in[dst], src)
		}
	}
	return g
}

// New builds a Graph from an adjacency map. Map iteration order is random,
// so source documents are inserted in ascending identifier order; each
// out-edge list keeps its given order.
func New(links map[string][]string) *Graph {
	keys := make([]string, 0, len(links))
	for id := range links {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	b := NewBuilder()
	for _, id := range keys {
		b.AddNode(id)
	}
	for _, id := range keys {
		b.AddLinks(id, links[id])
	}
	return b.Build()
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.ids) }

// Nodes returns the node identifiers in index order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.ids...)
}

// ID returns the identifier for a dense index.
func (g *Graph) ID(i int) string { return g.ids[i] }

// Index returns the dense index for id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// OutNeighbors returns the link targets of id in edge order, or nil if id is
// not a node.
func (g *Graph) OutNeighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.names(g.out[i])
}

// InNeighbors returns the documents linking to id, one entry per edge,
// ordered by source index.
func (g *Graph) InNeighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.names(g.in[i])
}

// OutDegree returns the number of out-edges of the node at index i.
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// IsDangling reports whether the node at index i has no out-edges.
func (g *Graph) IsDangling(i int) bool { return len(g.out[i]) == 0 }

// Out returns the out-edge targets of node i as indices. Callers must not
// modify the returned slice.
func (g *Graph) Out(i int) []int { return g.out[i] }

// In returns the in-edge sources of node i as indices. Callers must not
// modify the returned slice.
func (g *Graph) In(i int) []int { return g.in[i] }

// EdgeCount returns the total number of edges, duplicates included.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, targets := range g.out {
		total += len(targets)
	}
	return total
}

// Adjacency returns the graph as an identifier map, every node present as a
// key.
func (g *Graph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.ids))
	for i, id := range g.ids {
		adj[id] = g.names(g.out[i])
	}
	return adj
}

func (g *Graph) names(idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = g.ids[i]
	}
	return out
}
