package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse is the 422 envelope; Issues enumerates every violation.
type validationResponse struct {
	Error  string   `json:"error"`
	Issues []string `json:"issues"`
}

// --- Request types ---

// telemetryReportRequest is the ingest wire format. A GPS fix is optional but
// all-or-nothing: latitude and longitude must be present together. Timestamp
// carries the device clock when the source has one; absent, the point is
// stamped at ingest.
type telemetryReportRequest struct {
	LoadID    string   `json:"loadId"    validate:"required,uuid"`
	Status    string   `json:"status"    validate:"required,oneof=pending assigned in_transit delivered cancelled"`
	Latitude  *float64 `json:"latitude"  validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Location  string   `json:"location"  validate:"omitempty,max=255"`
	Notes     string   `json:"notes"     validate:"omitempty,max=512"`
	Timestamp string   `json:"timestamp"`
}

// manualUpdateRequest is the dashboard wire format; the load id comes from
// the path and the timestamp is always the server clock.
type manualUpdateRequest struct {
	Status    string   `json:"status"    validate:"required,oneof=pending assigned in_transit delivered cancelled"`
	Latitude  *float64 `json:"latitude"  validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Location  string   `json:"location"  validate:"omitempty,max=255"`
	Notes     string   `json:"notes"     validate:"omitempty,max=512"`
}

// --- Response types ---
// Response shapes are owned by the transport layer so the wire contract is
// not coupled to internal domain changes.

type ingestResponse struct {
	Success bool   `json:"success"`
	PointID string `json:"pointId,omitempty"`
}

type loadResponse struct {
	ID         string `json:"id"`
	LoadNumber string `json:"loadNumber"`
	Status     string `json:"status"`
}

type pointResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type trackingResponse struct {
	Load     loadResponse    `json:"load"`
	Tracking []pointResponse `json:"tracking"`
}

type coordinateResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type routeMarkerResponse struct {
	Position  coordinateResponse `json:"position"`
	Status    string             `json:"status"`
	Location  string             `json:"location,omitempty"`
	Timestamp string             `json:"timestamp"`
	Current   bool               `json:"current"`
}

type routeResponse struct {
	Line       []coordinateResponse  `json:"line"`
	Markers    []routeMarkerResponse `json:"markers"`
	Empty      bool                  `json:"empty"`
	MapEnabled bool                  `json:"mapEnabled"`
}
