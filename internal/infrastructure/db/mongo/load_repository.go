package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetboard/tracking-service/internal/core/domain"
)

const collectionLoads = "loads"

// loadDoc mirrors the load record owned by the wider platform's CRUD; this
// service only ever reads it.
type loadDoc struct {
	ID         string    `bson:"_id"`
	LoadNumber string    `bson:"load_number"`
	CompanyID  string    `bson:"company_id"`
	Status     string    `bson:"status"`
	CreatedAt  time.Time `bson:"created_at"`
}

// LoadRepository implements ports.LoadRepository on MongoDB.
type LoadRepository struct {
	col *mongo.Collection
}

// NewLoadRepository creates a LoadRepository.
func NewLoadRepository(db *mongo.Database) *LoadRepository {
	return &LoadRepository{col: db.Collection(collectionLoads)}
}

// FindByID retrieves a load by id. When companyID is non-empty the query is
// additionally filtered by tenant; a cross-tenant id reads as not found so
// the response does not reveal the load's existence.
func (r *LoadRepository) FindByID(ctx context.Context, loadID string, companyID string) (*domain.Load, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": loadID}
	if companyID != "" {
		filter["company_id"] = companyID
	}

	var doc loadDoc
	err := r.col.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLoadNotFound
		}
		return nil, fmt.Errorf("find load: %w", err)
	}

	return &domain.Load{
		ID:         doc.ID,
		LoadNumber: doc.LoadNumber,
		CompanyID:  doc.CompanyID,
		Status:     domain.LoadStatus(doc.Status),
		CreatedAt:  doc.CreatedAt.UTC(),
	}, nil
}

// EnsureIndexes creates the indexes used by tenant-scoped lookups.
func (r *LoadRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_id", Value: 1}}},
		{Keys: bson.D{{Key: "load_number", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
