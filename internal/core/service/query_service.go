package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fleetboard/tracking-service/internal/core/ports"
)

// ViewCache is a short-TTL read-through cache for assembled tracking views.
// Tracking pages are viewed far more often than they change, so a miss on
// every request would hammer the store for no benefit.
type ViewCache interface {
	Get(ctx context.Context, loadID string) (*ports.TrackingView, bool)
	Set(ctx context.Context, loadID string, view *ports.TrackingView)
}

type queryService struct {
	loadRepo   ports.LoadRepository
	pointsRepo ports.TrackingRepository
	cache      ViewCache
	log        zerolog.Logger
}

// NewQueryService returns a QueryService implementation. cache may be nil to
// disable response caching (used by tests and the live resync path).
func NewQueryService(
	loadRepo ports.LoadRepository,
	pointsRepo ports.TrackingRepository,
	cache ViewCache,
	log zerolog.Logger,
) ports.QueryService {
	return &queryService{
		loadRepo:   loadRepo,
		pointsRepo: pointsRepo,
		cache:      cache,
		log:        log,
	}
}

// GetTracking assembles the load summary plus ordered point history.
//
// The summary status is read from the load record, not derived from the
// newest point; the two may briefly disagree while a telemetry status and a
// dispatcher status race. That window is accepted, not papered over here.
func (s *queryService) GetTracking(ctx context.Context, loadID string, companyID string) (*ports.TrackingView, error) {
	// Only unscoped (admin/dispatcher) views hit the cache: the cached view
	// is tenant-agnostic and must not leak across company boundaries.
	cacheable := companyID == ""
	if cacheable && s.cache != nil {
		if view, ok := s.cache.Get(ctx, loadID); ok {
			return view, nil
		}
	}

	load, err := s.loadRepo.FindByID(ctx, loadID, companyID)
	if err != nil {
		return nil, fmt.Errorf("get tracking: %w", err)
	}

	points, err := s.pointsRepo.ListOrdered(ctx, loadID)
	if err != nil {
		return nil, fmt.Errorf("get tracking: list points: %w", err)
	}

	view := &ports.TrackingView{
		Load:   load.Summary(),
		Points: points,
	}

	if cacheable && s.cache != nil {
		s.cache.Set(ctx, loadID, view)
	}

	return view, nil
}

// AuthorizeView resolves the load without touching the point log.
func (s *queryService) AuthorizeView(ctx context.Context, loadID string, companyID string) error {
	if _, err := s.loadRepo.FindByID(ctx, loadID, companyID); err != nil {
		return fmt.Errorf("authorize view: %w", err)
	}
	return nil
}
