package domain

import "time"

// RouteMarker is a single breadcrumb on the map.
type RouteMarker struct {
	Position  Coordinates `json:"position"`
	Status    LoadStatus  `json:"status"`
	Place     string      `json:"place,omitempty"`
	Timestamp string      `json:"timestamp"`
	Current   bool        `json:"current"`
}

// Route is the map-ready derivation of a load's tracking history: a polyline
// through every located point plus one marker per point, the newest flagged
// as current. Empty is the "no fixes yet" placeholder, not an error.
type Route struct {
	Line    []Coordinates `json:"line"`
	Markers []RouteMarker `json:"markers"`
	Empty   bool          `json:"empty"`
}

// BuildRoute derives a Route from points already sorted in timeline order.
// Points without a location fix are skipped; a line is only emitted once two
// or more fixes exist. Pure: no side effects, never fails.
func BuildRoute(points []TrackingPoint) Route {
	located := make([]TrackingPoint, 0, len(points))
	for _, p := range points {
		if p.Location != nil {
			located = append(located, p)
		}
	}

	if len(located) == 0 {
		return Route{Empty: true}
	}

	route := Route{
		Markers: make([]RouteMarker, 0, len(located)),
	}
	if len(located) >= 2 {
		route.Line = make([]Coordinates, 0, len(located))
		for _, p := range located {
			route.Line = append(route.Line, *p.Location)
		}
	}
	for i, p := range located {
		route.Markers = append(route.Markers, RouteMarker{
			Position:  *p.Location,
			Status:    p.Status,
			Place:     p.Place,
			Timestamp: p.CreatedAt.UTC().Format(time.RFC3339),
			Current:   i == len(located)-1,
		})
	}
	return route
}
