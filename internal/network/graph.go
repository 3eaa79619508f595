package network

import (
	"fmt"
	"sort"

	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
)

// Edge is an undirected connection between two stops. From is always the
// lexically smaller stop ID so that an edge has a single representation.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Length float64 `json:"length"`
}

func newEdge(a, b string, length float64) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{From: a, To: b, Length: length}
}

// Graph is an undirected simple graph of stops and connections.
// A Graph is never mutated after Build; the removal operations return new
// graphs.
type Graph struct {
	stops map[string]models.Stop
	order []string
	adj   map[string]map[string]float64
}

// Build constructs a graph from stop and connection records.
//
// Construction is all-or-nothing: an empty stop list, an invalid or
// duplicated stop, a self-loop, or a connection citing an unknown stop fails
// the whole build. Repeated connections between the same pair of stops are
// collapsed into one edge that keeps the first record's length.
func Build(stops []models.Stop, connections []models.Connection) (*Graph, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("build graph: %w", ErrEmptyInput)
	}

	g := newGraph(len(stops))
	for _, stop := range stops {
		if stop.ID == "" {
			return nil, ErrEmptyStopID
		}
		if !geo.IsValidLatLon(stop.Lat, stop.Lon) {
			return nil, fmt.Errorf("stop %q at (%v, %v): %w", stop.ID, stop.Lat, stop.Lon, ErrInvalidCoordinate)
		}
		if _, exists := g.stops[stop.ID]; exists {
			return nil, fmt.Errorf("stop %q: %w", stop.ID, ErrDuplicateStop)
		}
		g.addStop(stop)
	}

	for _, conn := range connections {
		for _, id := range []string{conn.From, conn.To} {
			if _, ok := g.stops[id]; !ok {
				return nil, &MalformedReferenceError{Connection: conn, StopID: id}
			}
		}
		if conn.From == conn.To {
			return nil, fmt.Errorf("stop %q: %w", conn.From, ErrSelfLoop)
		}
		if g.HasEdge(conn.From, conn.To) {
			continue
		}
		g.addEdge(conn.From, conn.To, conn.Length)
	}

	g.sortOrder()
	return g, nil
}

func newGraph(size int) *Graph {
	return &Graph{
		stops: make(map[string]models.Stop, size),
		order: make([]string, 0, size),
		adj:   make(map[string]map[string]float64, size),
	}
}

func (g *Graph) addStop(stop models.Stop) {
	g.stops[stop.ID] = stop
	g.order = append(g.order, stop.ID)
	g.adj[stop.ID] = make(map[string]float64)
}

func (g *Graph) addEdge(a, b string, length float64) {
	g.adj[a][b] = length
	g.adj[b][a] = length
}

func (g *Graph) sortOrder() {
	sort.Strings(g.order)
}

// NumStops returns the number of stops in the graph.
func (g *Graph) NumStops() int {
	return len(g.order)
}

// NumEdges returns the number of connections in the graph.
func (g *Graph) NumEdges() int {
	n := 0
	for _, neighbors := range g.adj {
		n += len(neighbors)
	}
	return n / 2
}

// Stops returns all stops ordered by ID.
func (g *Graph) Stops() []models.Stop {
	stops := make([]models.Stop, 0, len(g.order))
	for _, id := range g.order {
		stops = append(stops, g.stops[id])
	}
	return stops
}

// Stop looks up a stop by ID.
func (g *Graph) Stop(id string) (models.Stop, bool) {
	stop, ok := g.stops[id]
	return stop, ok
}

// Neighbors returns the IDs adjacent to the given stop in ascending order.
func (g *Graph) Neighbors(id string) []string {
	neighbors := make([]string, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		neighbors = append(neighbors, n)
	}
	sort.Strings(neighbors)
	return neighbors
}

// Degree returns the number of connections incident to the stop.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// HasEdge reports whether the two stops are connected.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adj[a][b]
	return ok
}

func (g *Graph) edge(a, b string) Edge {
	return newEdge(a, b, g.adj[a][b])
}

// Edges returns every connection once, ordered by (From, To).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.NumEdges())
	for _, a := range g.order {
		for _, b := range g.Neighbors(a) {
			if a < b {
				edges = append(edges, g.edge(a, b))
			}
		}
	}
	return edges
}

// Isolates returns the IDs of stops without connections, in ascending order.
func (g *Graph) Isolates() []string {
	var isolates []string
	for _, id := range g.order {
		if len(g.adj[id]) == 0 {
			isolates = append(isolates, id)
		}
	}
	return isolates
}

// WithoutEdges returns a copy of the graph with the given connections
// removed. Edges not present in the graph are ignored.
func (g *Graph) WithoutEdges(edges []Edge) *Graph {
	removed := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		e = newEdge(e.From, e.To, 0)
		removed[e] = struct{}{}
	}

	out := g.copyStops(nil)
	for _, e := range g.Edges() {
		if _, skip := removed[newEdge(e.From, e.To, 0)]; skip {
			continue
		}
		out.addEdge(e.From, e.To, e.Length)
	}
	return out
}

// WithoutStops returns a copy of the graph with the given stops and all
// their connections removed.
func (g *Graph) WithoutStops(ids []string) *Graph {
	removed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
	}

	out := g.copyStops(removed)
	for _, e := range g.Edges() {
		_, dropFrom := removed[e.From]
		_, dropTo := removed[e.To]
		if dropFrom || dropTo {
			continue
		}
		out.addEdge(e.From, e.To, e.Length)
	}
	return out
}

func (g *Graph) copyStops(skip map[string]struct{}) *Graph {
	out := newGraph(len(g.order))
	for _, id := range g.order {
		if _, ok := skip[id]; ok {
			continue
		}
		out.addStop(g.stops[id])
	}
	return out
}

// ConnectedComponents returns the stop IDs of every connected component.
// Components are ordered by their smallest stop ID and each component is
// sorted.
func (g *Graph) ConnectedComponents() [][]string {
	seen := make(map[string]bool, len(g.order))
	var components [][]string

	for _, root := range g.order {
		if seen[root] {
			continue
		}
		seen[root] = true
		component := []string{root}
		queue := []string{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for n := range g.adj[id] {
				if !seen[n] {
					seen[n] = true
					component = append(component, n)
					queue = append(queue, n)
				}
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}
	return components
}

// NumComponents returns the number of connected components.
func (g *Graph) NumComponents() int {
	return len(g.ConnectedComponents())
}
