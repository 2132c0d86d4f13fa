package trackclient

import (
	"io"
	"strings"
	"testing"
	"time"
)

func collectPoints(t *testing.T, s *Stream, want int) []Point {
	t.Helper()
	points := make([]Point, 0, want)
	deadline := time.After(2 * time.Second)
	for len(points) < want {
		select {
		case p, ok := <-s.Points:
			if !ok {
				return points
			}
			points = append(points, p)
		case <-deadline:
			t.Fatalf("timed out after %d of %d points", len(points), want)
		}
	}
	return points
}

func TestStream_ParsesPointEvents(t *testing.T) {
	wire := strings.Join([]string{
		"event: point",
		`data: {"id":"pt-1","status":"in_transit","createdAt":"2024-01-01T10:00:00Z"}`,
		"",
		": keepalive",
		"",
		"event: point",
		`data: {"id":"pt-2","status":"delivered","createdAt":"2024-01-01T11:00:00Z"}`,
		"",
	}, "\n") + "\n"

	s := newStream(io.NopCloser(strings.NewReader(wire)))
	points := collectPoints(t, s, 2)

	if points[0].ID != "pt-1" || points[1].ID != "pt-2" {
		t.Errorf("unexpected points: %+v", points)
	}
	if points[1].Status != "delivered" {
		t.Errorf("payload fields not decoded: %+v", points[1])
	}
}

func TestStream_IgnoresMalformedAndForeignEvents(t *testing.T) {
	wire := strings.Join([]string{
		"event: point",
		"data: {not json",
		"",
		"event: other",
		`data: {"id":"pt-9"}`,
		"",
		"event: point",
		`data: {"id":"pt-1","status":"assigned","createdAt":"2024-01-01T10:00:00Z"}`,
		"",
	}, "\n") + "\n"

	s := newStream(io.NopCloser(strings.NewReader(wire)))
	points := collectPoints(t, s, 1)

	if len(points) != 1 || points[0].ID != "pt-1" {
		t.Errorf("expected only the well-formed point event, got %+v", points)
	}

	// The channel closes once the body is exhausted.
	if _, ok := <-s.Points; ok {
		t.Errorf("expected closed channel at end of stream")
	}
	if err := s.Err(); err != nil {
		t.Errorf("clean end of stream must report nil, got %v", err)
	}
}
