package domain

import (
	"testing"
	"time"
)

func locatedPoint(id string, lat, lng float64, minute int) TrackingPoint {
	return TrackingPoint{
		ID:        id,
		LoadID:    "load-1",
		Status:    StatusInTransit,
		Location:  &Coordinates{Lat: lat, Lng: lng},
		CreatedAt: time.Date(2024, 1, 1, 10, minute, 0, 0, time.UTC),
	}
}

func statusOnlyPoint(id string, minute int) TrackingPoint {
	return TrackingPoint{
		ID:        id,
		LoadID:    "load-1",
		Status:    StatusAssigned,
		CreatedAt: time.Date(2024, 1, 1, 10, minute, 0, 0, time.UTC),
	}
}

func TestBuildRoute_NoPoints(t *testing.T) {
	route := BuildRoute(nil)

	if !route.Empty {
		t.Errorf("expected empty placeholder route")
	}
	if len(route.Line) != 0 || len(route.Markers) != 0 {
		t.Errorf("placeholder route must carry no geometry, got %d line / %d markers",
			len(route.Line), len(route.Markers))
	}
}

func TestBuildRoute_OnlyStatusPoints(t *testing.T) {
	route := BuildRoute([]TrackingPoint{
		statusOnlyPoint("a", 0),
		statusOnlyPoint("b", 5),
	})

	if !route.Empty {
		t.Errorf("points without fixes must yield the placeholder route")
	}
}

func TestBuildRoute_SinglePoint(t *testing.T) {
	route := BuildRoute([]TrackingPoint{locatedPoint("a", -26.2, 28.0, 0)})

	if route.Empty {
		t.Fatalf("expected a rendered route")
	}
	if len(route.Line) != 0 {
		t.Errorf("a single fix must not produce a line, got %d vertices", len(route.Line))
	}
	if len(route.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(route.Markers))
	}
	if !route.Markers[0].Current {
		t.Errorf("the only marker must be flagged current")
	}
}

func TestBuildRoute_MultiplePoints(t *testing.T) {
	route := BuildRoute([]TrackingPoint{
		locatedPoint("a", -26.2, 28.0, 0),
		statusOnlyPoint("b", 10), // skipped: no fix
		locatedPoint("c", -26.3, 28.1, 20),
		locatedPoint("d", -26.4, 28.2, 30),
	})

	if len(route.Line) != 3 {
		t.Fatalf("expected 3 line vertices, got %d", len(route.Line))
	}
	if route.Line[0].Lat != -26.2 || route.Line[2].Lat != -26.4 {
		t.Errorf("line must follow chronological order: %+v", route.Line)
	}
	if len(route.Markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(route.Markers))
	}
	for i, m := range route.Markers {
		wantCurrent := i == len(route.Markers)-1
		if m.Current != wantCurrent {
			t.Errorf("marker %d: current=%v, want %v", i, m.Current, wantCurrent)
		}
	}
}

func TestTrackingPoint_Before(t *testing.T) {
	earlier := statusOnlyPoint("b", 0)
	later := statusOnlyPoint("a", 1)

	if !earlier.Before(later) {
		t.Errorf("earlier created_at must sort first")
	}

	// Equal timestamps fall back to insert order via id.
	twinA := statusOnlyPoint("a", 0)
	twinB := statusOnlyPoint("b", 0)
	if !twinA.Before(twinB) || twinB.Before(twinA) {
		t.Errorf("equal timestamps must break ties by id")
	}
}
