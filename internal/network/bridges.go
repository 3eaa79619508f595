package network

import "sort"

// BridgeReport holds the critical connections of a graph and the subgraph
// made of only those connections.
type BridgeReport struct {
	Bridges  []Edge
	Subgraph *Graph
}

// Bridges finds the bridges of g and builds their subgraph.
func Bridges(g *Graph) BridgeReport {
	bridges := FindBridges(g)
	return BridgeReport{
		Bridges:  bridges,
		Subgraph: BridgeSubgraph(g, bridges),
	}
}

// dfsFrame is one level of the explicit DFS stack.
type dfsFrame struct {
	id        string
	parent    string
	hasParent bool
	neighbors []string
	next      int
}

// FindBridges returns the connections whose removal increases the number of
// connected components, ordered by (From, To).
//
// It runs Tarjan's low-link DFS with an explicit stack, so long chains of
// stops do not grow the goroutine stack. Every component is traversed,
// starting from stops in ascending ID order.
func FindBridges(g *Graph) []Edge {
	disc := make(map[string]int, g.NumStops())
	low := make(map[string]int, g.NumStops())
	timer := 0
	var bridges []Edge

	visit := func(id string) {
		disc[id] = timer
		low[id] = timer
		timer++
	}

	for _, root := range g.order {
		if _, seen := disc[root]; seen {
			continue
		}
		visit(root)
		stack := []*dfsFrame{{id: root, neighbors: g.Neighbors(root)}}

		for len(stack) > 0 {
			f := stack[len(stack)-1]

			if f.next < len(f.neighbors) {
				v := f.neighbors[f.next]
				f.next++
				if f.hasParent && v == f.parent {
					continue
				}
				if d, seen := disc[v]; seen {
					// back edge
					low[f.id] = min(low[f.id], d)
					continue
				}
				visit(v)
				stack = append(stack, &dfsFrame{id: v, parent: f.id, hasParent: true, neighbors: g.Neighbors(v)})
				continue
			}

			stack = stack[:len(stack)-1]
			if !f.hasParent {
				continue
			}
			p := stack[len(stack)-1]
			low[p.id] = min(low[p.id], low[f.id])
			if low[f.id] > disc[p.id] {
				bridges = append(bridges, g.edge(p.id, f.id))
			}
		}
	}

	sort.Slice(bridges, func(i, j int) bool {
		if bridges[i].From != bridges[j].From {
			return bridges[i].From < bridges[j].From
		}
		return bridges[i].To < bridges[j].To
	})
	return bridges
}

// BridgeSubgraph returns the graph made of the given bridges and their
// endpoints. Stops not touched by any bridge are left out.
func BridgeSubgraph(g *Graph, bridges []Edge) *Graph {
	out := newGraph(2 * len(bridges))
	for _, e := range bridges {
		for _, id := range []string{e.From, e.To} {
			if _, ok := out.stops[id]; ok {
				continue
			}
			if stop, ok := g.stops[id]; ok {
				out.addStop(stop)
			}
		}
		out.addEdge(e.From, e.To, e.Length)
	}
	out.sortOrder()
	return out
}
