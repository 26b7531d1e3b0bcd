package retryRepo

import (
	"context"
	"time"

	"casamar/database"
	"casamar/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// StateRepository persists recovery state for pending booking transactions.
// Claim is the cross-worker coordination point: it removes and returns the
// record in one step, so of several workers racing to recover the same
// guest exactly one proceeds and the rest find nothing.
type StateRepository interface {
	Save(ctx context.Context, state models.RetryState) error
	Claim(ctx context.Context, guestID string) (*models.RetryState, error)
	Get(ctx context.Context, guestID string) (*models.RetryState, error)
	ListDue(ctx context.Context, now time.Time) ([]models.RetryState, error)
}

type mongoStateRepo struct {
	coll *mongo.Collection
}

// NewMongoStateRepo returns a StateRepository backed by MongoDB.
func NewMongoStateRepo() StateRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoStateRepo{coll: db.Collection("retry_states")}
}
