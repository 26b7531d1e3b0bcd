package retryRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casamar/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Save upserts the state record keyed by guest id.
func (r *mongoStateRepo) Save(ctx context.Context, state models.RetryState) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"guestId": state.GuestID}, state, opts)
	if err != nil {
		return fmt.Errorf("failed to save retry state: %w", err)
	}
	return nil
}

// Claim removes and returns the pending state for the guest. A nil state
// with nil error means another worker already claimed it.
func (r *mongoStateRepo) Claim(ctx context.Context, guestID string) (*models.RetryState, error) {
	var state models.RetryState
	err := r.coll.FindOneAndDelete(ctx, bson.M{"guestId": guestID}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim retry state: %w", err)
	}
	return &state, nil
}

// Get returns the state for a guest without claiming it.
func (r *mongoStateRepo) Get(ctx context.Context, guestID string) (*models.RetryState, error) {
	var state models.RetryState
	err := r.coll.FindOne(ctx, bson.M{"guestId": guestID}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// ListDue returns states whose next attempt time has passed. Used at
// startup and by the poll-loop backstop to reschedule lost queue tasks.
func (r *mongoStateRepo) ListDue(ctx context.Context, now time.Time) ([]models.RetryState, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"nextAttemptAt": bson.M{"$lte": now}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var states []models.RetryState
	if err := cursor.All(ctx, &states); err != nil {
		return nil, err
	}
	return states, nil
}
