package ports

import (
	"context"
	"time"

	"github.com/fleetboard/tracking-service/internal/core/domain"
)

// LocationInput carries an optional GPS fix for a tracking report.
type LocationInput struct {
	Lat float64
	Lng float64
}

// TrackingReportInput is the DTO passed from the transport layer to the
// ingest service. Timestamp zero means "assign at ingest".
type TrackingReportInput struct {
	LoadID string
	// CompanyID, when non-empty, scopes the load lookup to that tenant
	// (operator submissions). Telemetry sources leave it empty.
	CompanyID string
	Status    string
	Location  *LocationInput // optional
	Place     string
	Notes     string
	Timestamp time.Time
	Source    string
}

// IngestService records telemetry reports as tracking points.
type IngestService interface {
	// Record validates the referenced load exists, appends exactly one point
	// and notifies live subscribers. Repeated identical submissions create
	// duplicate points; dedup is a consumer concern.
	Record(ctx context.Context, in TrackingReportInput) (domain.TrackingPoint, error)
}

// TrackingView is the full read-model for one load's tracking page.
type TrackingView struct {
	Load   domain.LoadSummary     `json:"load"`
	Points []domain.TrackingPoint `json:"tracking"`
}

// QueryService serves the tracking read path.
type QueryService interface {
	// GetTracking returns the load summary plus its ordered point history.
	// companyID non-empty scopes the lookup to that tenant.
	GetTracking(ctx context.Context, loadID string, companyID string) (*TrackingView, error)

	// AuthorizeView checks the load exists and is visible to the tenant
	// without fetching history; the live stream handler gates on it.
	AuthorizeView(ctx context.Context, loadID string, companyID string) error
}

// PointPublisher notifies live subscribers of a freshly appended point.
type PointPublisher interface {
	Publish(ctx context.Context, point domain.TrackingPoint) error
}
