package ports

import (
	"context"

	"github.com/fleetboard/tracking-service/internal/core/domain"
)

// TrackingRepository is the append-only point store for load telemetry.
type TrackingRepository interface {
	// Append durably writes one point and returns it with its assigned id.
	// The write is visible to subsequent ListOrdered calls and to live
	// subscribers fed by the publisher.
	Append(ctx context.Context, point domain.TrackingPoint) (domain.TrackingPoint, error)

	// ListOrdered returns every point for the load in ascending created_at
	// order, insert order breaking ties.
	ListOrdered(ctx context.Context, loadID string) ([]domain.TrackingPoint, error)
}

// LoadRepository resolves load records owned by the wider platform.
type LoadRepository interface {
	// FindByID retrieves a load. When companyID is non-empty the lookup is
	// additionally scoped to that tenant and returns domain.ErrLoadNotFound
	// on a cross-tenant id.
	FindByID(ctx context.Context, loadID string, companyID string) (*domain.Load, error)
}
