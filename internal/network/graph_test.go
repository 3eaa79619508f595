package network

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"netcover.onebusaway.org/internal/models"
)

// stopsNamed creates stops with the given IDs spread along the equator.
func stopsNamed(ids ...string) []models.Stop {
	stops := make([]models.Stop, len(ids))
	for i, id := range ids {
		stops[i] = models.Stop{ID: id, Lat: 0, Lon: float64(i%10000) * 0.01}
	}
	return stops
}

// connect creates unit-length connections from "a-b" pairs.
func connect(pairs ...[2]string) []models.Connection {
	conns := make([]models.Connection, len(pairs))
	for i, p := range pairs {
		conns[i] = models.Connection{From: p[0], To: p[1], Length: 1}
	}
	return conns
}

func stopIDs(g *Graph) []string {
	var ids []string
	for _, s := range g.Stops() {
		ids = append(ids, s.ID)
	}
	return ids
}

func mustBuild(t *testing.T, stops []models.Stop, conns []models.Connection) *Graph {
	t.Helper()
	g, err := Build(stops, conns)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func TestBuild(t *testing.T) {
	t.Run("Empty input", func(t *testing.T) {
		_, err := Build(nil, nil)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("Unknown stop reference", func(t *testing.T) {
		g, err := Build(stopsNamed("a", "b"), connect([2]string{"a", "z"}))
		var refErr *MalformedReferenceError
		if !errors.As(err, &refErr) {
			t.Fatalf("expected MalformedReferenceError, got %v", err)
		}
		if refErr.StopID != "z" {
			t.Errorf("expected missing stop z, got %q", refErr.StopID)
		}
		if g != nil {
			t.Error("expected no graph on failure")
		}
	})

	t.Run("Self loop", func(t *testing.T) {
		_, err := Build(stopsNamed("a"), connect([2]string{"a", "a"}))
		if !errors.Is(err, ErrSelfLoop) {
			t.Fatalf("expected ErrSelfLoop, got %v", err)
		}
	})

	t.Run("Duplicate stop", func(t *testing.T) {
		_, err := Build(append(stopsNamed("a"), stopsNamed("a")...), nil)
		if !errors.Is(err, ErrDuplicateStop) {
			t.Fatalf("expected ErrDuplicateStop, got %v", err)
		}
	})

	t.Run("Empty stop ID", func(t *testing.T) {
		_, err := Build([]models.Stop{{ID: ""}}, nil)
		if !errors.Is(err, ErrEmptyStopID) {
			t.Fatalf("expected ErrEmptyStopID, got %v", err)
		}
	})

	t.Run("Invalid coordinate", func(t *testing.T) {
		_, err := Build([]models.Stop{{ID: "a", Lat: 100}}, nil)
		if !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
		}
	})

	t.Run("Duplicate and reversed connections collapse", func(t *testing.T) {
		conns := []models.Connection{
			{From: "a", To: "b", Length: 2},
			{From: "b", To: "a", Length: 5},
			{From: "a", To: "b", Length: 7},
		}
		g := mustBuild(t, stopsNamed("a", "b", "c"), conns)
		if g.NumEdges() != 1 {
			t.Fatalf("expected 1 edge, got %d", g.NumEdges())
		}
		want := []Edge{{From: "a", To: "b", Length: 2}}
		if got := g.Edges(); !reflect.DeepEqual(got, want) {
			t.Errorf("Edges() = %v, want %v", got, want)
		}
	})

	t.Run("Isolated stops are kept", func(t *testing.T) {
		g := mustBuild(t, stopsNamed("a", "b", "c"), connect([2]string{"a", "b"}))
		if g.NumStops() != 3 {
			t.Errorf("expected 3 stops, got %d", g.NumStops())
		}
		if got := g.Isolates(); !reflect.DeepEqual(got, []string{"c"}) {
			t.Errorf("Isolates() = %v, want [c]", got)
		}
		if g.Degree("c") != 0 || g.Degree("a") != 1 {
			t.Errorf("unexpected degrees a=%d c=%d", g.Degree("a"), g.Degree("c"))
		}
	})
}

func TestGraphAccessors(t *testing.T) {
	g := mustBuild(t, stopsNamed("c", "a", "b"), connect([2]string{"c", "a"}, [2]string{"b", "a"}))

	if got := stopIDs(g); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("stop IDs = %v", got)
	}
	if got := g.Neighbors("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Neighbors(a) = %v", got)
	}
	if !g.HasEdge("a", "c") || !g.HasEdge("c", "a") {
		t.Error("expected edge a-c in both directions")
	}
	if g.HasEdge("b", "c") {
		t.Error("unexpected edge b-c")
	}
	stop, ok := g.Stop("b")
	if !ok || stop.ID != "b" {
		t.Errorf("Stop(b) = %+v, %v", stop, ok)
	}
	if _, ok := g.Stop("zz"); ok {
		t.Error("expected unknown stop lookup to fail")
	}
	if got := len(g.Stops()); got != 3 {
		t.Errorf("expected 3 stops, got %d", got)
	}
}

func TestRemovalReturnsNewGraph(t *testing.T) {
	g := mustBuild(t, stopsNamed("a", "b", "c"), connect([2]string{"a", "b"}, [2]string{"b", "c"}))

	t.Run("WithoutEdges", func(t *testing.T) {
		h := g.WithoutEdges([]Edge{{From: "c", To: "b"}})
		if h.HasEdge("b", "c") {
			t.Error("edge b-c should be removed")
		}
		if !g.HasEdge("b", "c") {
			t.Error("original graph must not change")
		}
		if h.NumStops() != 3 || h.NumEdges() != 1 {
			t.Errorf("unexpected size stops=%d edges=%d", h.NumStops(), h.NumEdges())
		}
	})

	t.Run("WithoutStops", func(t *testing.T) {
		h := g.WithoutStops([]string{"b"})
		if h.NumStops() != 2 || h.NumEdges() != 0 {
			t.Errorf("unexpected size stops=%d edges=%d", h.NumStops(), h.NumEdges())
		}
		if g.NumStops() != 3 || g.NumEdges() != 2 {
			t.Error("original graph must not change")
		}
	})
}

func TestConnectedComponents(t *testing.T) {
	g := mustBuild(t,
		stopsNamed("a", "b", "c", "d", "e"),
		connect([2]string{"a", "b"}, [2]string{"d", "c"}),
	)

	want := [][]string{{"a", "b"}, {"c", "d"}, {"e"}}
	if got := g.ConnectedComponents(); !reflect.DeepEqual(got, want) {
		t.Errorf("ConnectedComponents() = %v, want %v", got, want)
	}
	if g.NumComponents() != 3 {
		t.Errorf("expected 3 components, got %d", g.NumComponents())
	}
}

func pathGraph(t *testing.T, n int) *Graph {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("s%03d", i)
	}
	var pairs [][2]string
	for i := 1; i < n; i++ {
		pairs = append(pairs, [2]string{ids[i-1], ids[i]})
	}
	return mustBuild(t, stopsNamed(ids...), connect(pairs...))
}

func cycleGraph(t *testing.T, n int) *Graph {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("s%03d", i)
	}
	var pairs [][2]string
	for i := 0; i < n; i++ {
		pairs = append(pairs, [2]string{ids[i], ids[(i+1)%n]})
	}
	return mustBuild(t, stopsNamed(ids...), connect(pairs...))
}
