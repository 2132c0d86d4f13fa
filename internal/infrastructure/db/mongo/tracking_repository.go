package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetboard/tracking-service/internal/core/domain"
)

const collectionTrackingPoints = "tracking_points"

// trackingPointDoc is the persisted shape of a tracking point. Decoding goes
// through this struct so a malformed upstream document fails loudly at the
// store boundary instead of propagating missing fields.
type trackingPointDoc struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	LoadID    string              `bson:"load_id"`
	Status    string              `bson:"status"`
	Location  *domain.Coordinates `bson:"location,omitempty"`
	Place     string              `bson:"place,omitempty"`
	Notes     string              `bson:"notes,omitempty"`
	CreatedAt time.Time           `bson:"created_at"`
}

func (d trackingPointDoc) toDomain() (domain.TrackingPoint, error) {
	if d.LoadID == "" {
		return domain.TrackingPoint{}, fmt.Errorf("point %s: missing load_id", d.ID.Hex())
	}
	if d.CreatedAt.IsZero() {
		return domain.TrackingPoint{}, fmt.Errorf("point %s: missing created_at", d.ID.Hex())
	}
	return domain.TrackingPoint{
		ID:        d.ID.Hex(),
		LoadID:    d.LoadID,
		Status:    domain.LoadStatus(d.Status),
		Location:  d.Location,
		Place:     d.Place,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

// TrackingRepository implements ports.TrackingRepository on MongoDB.
// The collection is append-only: nothing here updates or deletes documents.
type TrackingRepository struct {
	col *mongo.Collection
}

// NewTrackingRepository creates a TrackingRepository.
func NewTrackingRepository(db *mongo.Database) *TrackingRepository {
	return &TrackingRepository{col: db.Collection(collectionTrackingPoints)}
}

// Append inserts one point and returns it with the store-assigned id.
func (r *TrackingRepository) Append(ctx context.Context, point domain.TrackingPoint) (domain.TrackingPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := trackingPointDoc{
		LoadID:    point.LoadID,
		Status:    string(point.Status),
		Location:  point.Location,
		Place:     point.Place,
		Notes:     point.Notes,
		CreatedAt: point.CreatedAt.UTC(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return domain.TrackingPoint{}, fmt.Errorf("append point: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.TrackingPoint{}, fmt.Errorf("append point: unexpected inserted id type %T", res.InsertedID)
	}
	point.ID = oid.Hex()
	return point, nil
}

// ListOrdered returns every point for the load, ascending created_at with _id
// as the insert-order tiebreak.
func (r *TrackingRepository) ListOrdered(ctx context.Context, loadID string) ([]domain.TrackingPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx,
		bson.M{"load_id": loadID},
		// _id as the secondary key keeps points sharing a created_at in
		// insertion order.
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer cur.Close(ctx)

	points := make([]domain.TrackingPoint, 0)
	for cur.Next(ctx) {
		var doc trackingPointDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list points: decode: %w", err)
		}
		point, err := doc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list points: %w", err)
		}
		points = append(points, point)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list points: cursor: %w", err)
	}
	return points, nil
}

// EnsureIndexes creates the indexes the read and write paths depend on.
func (r *TrackingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "load_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
