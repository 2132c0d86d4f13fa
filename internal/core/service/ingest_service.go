package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetboard/tracking-service/internal/core/domain"
	"github.com/fleetboard/tracking-service/internal/core/ports"
)

type ingestService struct {
	loadRepo   ports.LoadRepository
	pointsRepo ports.TrackingRepository
	publisher  ports.PointPublisher
	now        func() time.Time
	log        zerolog.Logger
}

// NewIngestService returns an IngestService implementation.
func NewIngestService(
	loadRepo ports.LoadRepository,
	pointsRepo ports.TrackingRepository,
	publisher ports.PointPublisher,
	log zerolog.Logger,
) ports.IngestService {
	return &ingestService{
		loadRepo:   loadRepo,
		pointsRepo: pointsRepo,
		publisher:  publisher,
		now:        time.Now,
		log:        log,
	}
}

// Record appends a single tracking point for an existing load.
func (s *ingestService) Record(ctx context.Context, in ports.TrackingReportInput) (domain.TrackingPoint, error) {
	// 1. The load must exist before anything is written.
	if _, err := s.loadRepo.FindByID(ctx, in.LoadID, in.CompanyID); err != nil {
		return domain.TrackingPoint{}, fmt.Errorf("record point: %w", err)
	}

	// 2. Honor the source timestamp when provided, else stamp at ingest.
	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	point := domain.TrackingPoint{
		LoadID:    in.LoadID,
		Status:    domain.LoadStatus(in.Status),
		Place:     in.Place,
		Notes:     in.Notes,
		CreatedAt: ts.UTC(),
	}
	if in.Location != nil {
		point.Location = &domain.Coordinates{Lat: in.Location.Lat, Lng: in.Location.Lng}
	}

	// 3. Durable append; the id is assigned by the store.
	appended, err := s.pointsRepo.Append(ctx, point)
	if err != nil {
		return domain.TrackingPoint{}, fmt.Errorf("record point: append: %w", err)
	}

	// 4. Notify live viewers. Non-fatal: the point is durable and any viewer
	// that misses the push recovers it through resync.
	if err := s.publisher.Publish(ctx, appended); err != nil {
		s.log.Warn().Err(err).
			Str("load_id", in.LoadID).
			Str("point_id", appended.ID).
			Msg("live publish failed, point remains durable")
	}

	s.log.Info().
		Str("load_id", in.LoadID).
		Str("status", in.Status).
		Str("source", in.Source).
		Bool("has_fix", point.Location != nil).
		Msg("tracking point recorded")

	return appended, nil
}
