// Package fixture generates the graph inputs used by the sparse-matrix and
// shortest-path benchmarks.
package fixture

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// Edge is an undirected weighted edge.
type Edge struct {
	U, V   int
	Weight float64
}

// Graph is an undirected weighted graph over nodes 0..N-1.
type Graph struct {
	n   int
	adj []map[int]float64
}

func NewGraph(n int) *Graph {
	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	return &Graph{n: n, adj: adj}
}

// Nodes returns the number of nodes.
func (g *Graph) Nodes() int { return g.n }

// AddEdge adds or reweights the edge u-v. Self loops are ignored.
func (g *Graph) AddEdge(u, v int, weight float64) {
	if u == v {
		return
	}
	g.adj[u][v] = weight
	g.adj[v][u] = weight
}

// Edges returns each edge once with U < V, ordered by U then V.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for u := range g.n {
		for _, v := range g.neighbors(u) {
			if u < v {
				edges = append(edges, Edge{U: u, V: v, Weight: g.adj[u][v]})
			}
		}
	}
	return edges
}

func (g *Graph) neighbors(u int) []int {
	out := make([]int, 0, len(g.adj[u]))
	for v := range g.adj[u] {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Components returns the connected components, each sorted, ordered by their
// smallest node.
func (g *Graph) Components() [][]int {
	seen := make([]bool, g.n)
	var components [][]int
	for start := range g.n {
		if seen[start] {
			continue
		}
		seen[start] = true
		component := []int{start}
		for i := 0; i < len(component); i++ {
			for _, v := range g.neighbors(component[i]) {
				if !seen[v] {
					seen[v] = true
					component = append(component, v)
				}
			}
		}
		slices.Sort(component)
		components = append(components, component)
	}
	return components
}

// IsConnected reports whether every node is reachable from node 0. The empty
// graph is not connected.
func (g *Graph) IsConnected() bool {
	return g.n > 0 && len(g.Components()) == 1
}

// RandomGeometric places n nodes uniformly in the unit square and joins every
// pair at Euclidean distance at most radius with a unit-weight edge.
func RandomGeometric(n int, radius float64, rng *rand.Rand) *Graph {
	g := NewGraph(n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range n {
		xs[i] = rng.Float64()
		ys[i] = rng.Float64()
	}
	for u := range n {
		for v := u + 1; v < n; v++ {
			if math.Hypot(xs[u]-xs[v], ys[u]-ys[v]) <= radius {
				g.AddEdge(u, v, 1)
			}
		}
	}
	return g
}

// Connect joins each pair of consecutive components with a unit-weight edge
// between randomly chosen members. It returns the number of edges added.
func Connect(g *Graph, rng *rand.Rand) int {
	components := g.Components()
	for i := 0; i+1 < len(components); i++ {
		a := components[i][rng.IntN(len(components[i]))]
		b := components[i+1][rng.IntN(len(components[i+1]))]
		g.AddEdge(a, b, 1)
	}
	return max(len(components)-1, 0)
}

// NewRand returns the deterministic generator used for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Geometric builds a connected random geometric graph for seed.
func Geometric(n int, radius float64, seed uint64) (*Graph, error) {
	if n <= 0 {
		return nil, fmt.Errorf("node count must be positive, got %d", n)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %g", radius)
	}
	rng := NewRand(seed)
	g := RandomGeometric(n, radius, rng)
	Connect(g, rng)
	if !g.IsConnected() {
		return nil, fmt.Errorf("graph with %d nodes is not connected", n)
	}
	return g, nil
}

// Triangle is the three node weighted graph 0-1 (1.5), 0-2 (2.5), 1-2 (3.5).
func Triangle() *Graph {
	g := NewGraph(3)
	g.AddEdge(0, 1, 1.5)
	g.AddEdge(0, 2, 2.5)
	g.AddEdge(1, 2, 3.5)
	return g
}

// COO is a sparse matrix in coordinate form. Indices are floats to match the
// benchmark loaders.
type COO struct {
	Rows    []float64
	Cols    []float64
	Values  []float64
	NumRows int
	NumCols int
}

// COO returns the symmetric adjacency matrix in row-major order.
func (g *Graph) COO() COO {
	m := COO{
		Rows:    []float64{},
		Cols:    []float64{},
		Values:  []float64{},
		NumRows: g.n,
		NumCols: g.n,
	}
	for u := range g.n {
		for _, v := range g.neighbors(u) {
			m.Rows = append(m.Rows, float64(u))
			m.Cols = append(m.Cols, float64(v))
			m.Values = append(m.Values, g.adj[u][v])
		}
	}
	return m
}

// ShortestPaths returns Dijkstra path lengths from src indexed by node.
// Unreachable nodes get 0.
func (g *Graph) ShortestPaths(src int) []float64 {
	dist := make([]float64, g.n)
	if src < 0 || src >= g.n {
		return dist
	}
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[src] = 0

	pq := &queue{{node: src}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(entry)
		if item.dist > dist[item.node] {
			continue
		}
		for v, w := range g.adj[item.node] {
			if d := item.dist + w; d < dist[v] {
				dist[v] = d
				heap.Push(pq, entry{node: v, dist: d})
			}
		}
	}

	for i, d := range dist {
		if math.IsInf(d, 1) {
			dist[i] = 0
		}
	}
	return dist
}

type entry struct {
	node int
	dist float64
}

type queue []entry

func (q queue) Len() int           { return len(q) }
func (q queue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q queue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)        { *q = append(*q, x.(entry)) }
func (q *queue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
