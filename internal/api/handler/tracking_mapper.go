package handler

import (
	"time"

	"github.com/fleetboard/tracking-service/internal/core/domain"
	"github.com/fleetboard/tracking-service/internal/core/ports"
)

// --- Request → Service input ---

func toReportInput(r telemetryReportRequest, ts time.Time) ports.TrackingReportInput {
	in := ports.TrackingReportInput{
		LoadID:    r.LoadID,
		Status:    r.Status,
		Place:     r.Location,
		Notes:     r.Notes,
		Timestamp: ts,
		Source:    "telemetry",
	}
	if r.Latitude != nil && r.Longitude != nil {
		in.Location = &ports.LocationInput{Lat: *r.Latitude, Lng: *r.Longitude}
	}
	return in
}

func toManualInput(r manualUpdateRequest, loadID, companyID string) ports.TrackingReportInput {
	in := ports.TrackingReportInput{
		LoadID:    loadID,
		CompanyID: companyID,
		Status:    r.Status,
		Place:     r.Location,
		Notes:     r.Notes,
		Source:    "operator",
	}
	if r.Latitude != nil && r.Longitude != nil {
		in.Location = &ports.LocationInput{Lat: *r.Latitude, Lng: *r.Longitude}
	}
	return in
}

// --- Domain → HTTP response ---

func toPointResponse(p domain.TrackingPoint) pointResponse {
	resp := pointResponse{
		ID:        p.ID,
		Status:    string(p.Status),
		Location:  p.Place,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UTC(),
	}
	if p.Location != nil {
		lat, lng := p.Location.Lat, p.Location.Lng
		resp.Latitude = &lat
		resp.Longitude = &lng
	}
	return resp
}

func toTrackingResponse(view *ports.TrackingView) trackingResponse {
	resp := trackingResponse{
		Load: loadResponse{
			ID:         view.Load.ID,
			LoadNumber: view.Load.LoadNumber,
			Status:     string(view.Load.Status),
		},
		Tracking: make([]pointResponse, 0, len(view.Points)),
	}
	for _, p := range view.Points {
		resp.Tracking = append(resp.Tracking, toPointResponse(p))
	}
	return resp
}

func toRouteResponse(route domain.Route, mapEnabled bool) routeResponse {
	resp := routeResponse{
		Line:       make([]coordinateResponse, 0, len(route.Line)),
		Markers:    make([]routeMarkerResponse, 0, len(route.Markers)),
		Empty:      route.Empty,
		MapEnabled: mapEnabled,
	}
	for _, c := range route.Line {
		resp.Line = append(resp.Line, coordinateResponse{Lat: c.Lat, Lng: c.Lng})
	}
	for _, m := range route.Markers {
		resp.Markers = append(resp.Markers, routeMarkerResponse{
			Position:  coordinateResponse{Lat: m.Position.Lat, Lng: m.Position.Lng},
			Status:    string(m.Status),
			Location:  m.Place,
			Timestamp: m.Timestamp,
			Current:   m.Current,
		})
	}
	return resp
}
