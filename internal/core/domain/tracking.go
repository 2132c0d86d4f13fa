package domain

import (
	"errors"
	"time"
)

// LoadStatus represents the lifecycle state of a load.
type LoadStatus string

const (
	StatusPending   LoadStatus = "pending"
	StatusAssigned  LoadStatus = "assigned"
	StatusInTransit LoadStatus = "in_transit"
	StatusDelivered LoadStatus = "delivered"
	StatusCancelled LoadStatus = "cancelled"
)

// KnownStatuses lists every accepted lifecycle state, in lifecycle order.
var KnownStatuses = []LoadStatus{
	StatusPending,
	StatusAssigned,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

// IsValid reports whether s is one of the known lifecycle states.
func (s LoadStatus) IsValid() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

var ErrLoadNotFound = errors.New("load not found")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidLoadID = errors.New("invalid load id")
var ErrSubscriptionClosed = errors.New("subscription closed")

// Coordinates represents a geographic fix.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// TrackingPoint is a single telemetry report in a load's append-only history.
// Points are created exactly once at ingest and never mutated or deleted.
// Location is nil when the report carried a status change without a GPS fix;
// when non-nil both coordinates are present.
type TrackingPoint struct {
	ID        string       `json:"id" bson:"_id,omitempty"`
	LoadID    string       `json:"load_id" bson:"load_id"`
	Status    LoadStatus   `json:"status" bson:"status"`
	Location  *Coordinates `json:"location,omitempty" bson:"location,omitempty"`
	Place     string       `json:"place,omitempty" bson:"place,omitempty"`
	Notes     string       `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
}

// Before reports whether p sorts ahead of q in a load's timeline:
// ascending CreatedAt, ties broken by insert order (point id).
func (p TrackingPoint) Before(q TrackingPoint) bool {
	if p.CreatedAt.Equal(q.CreatedAt) {
		return p.ID < q.ID
	}
	return p.CreatedAt.Before(q.CreatedAt)
}

// Load is the shipment record this subsystem reads but does not own.
// Status here is set by dispatch operations on the load itself; it is not
// derived from the tracking log and MAY lag the newest point's status.
type Load struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	LoadNumber string     `json:"load_number" bson:"load_number"`
	CompanyID  string     `json:"company_id" bson:"company_id"`
	Status     LoadStatus `json:"status" bson:"status"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
}

// Summary is the lightweight load view returned alongside tracking history.
func (l *Load) Summary() LoadSummary {
	return LoadSummary{ID: l.ID, LoadNumber: l.LoadNumber, Status: l.Status}
}

// LoadSummary identifies a load to tracking viewers.
type LoadSummary struct {
	ID         string     `json:"id"`
	LoadNumber string     `json:"load_number"`
	Status     LoadStatus `json:"status"`
}
