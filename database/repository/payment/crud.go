package paymentRepo

import (
	"context"
	"errors"
	"time"

	"casamar/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Get returns the payment record under the given rail id.
func (r *mongoRecordRepo) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ReserveAmount atomically increments Used by amount, rejecting the update
// when it would exceed Total. The guard lives in the update filter so two
// concurrent reservations cannot both pass the balance check.
func (r *mongoRecordRepo) ReserveAmount(ctx context.Context, id string, amount float64) error {
	filter := bson.M{
		"id": id,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$used", amount}},
				"$total",
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"used": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing record from an exhausted one.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInsufficientFunds
	}
	return nil
}

// ReleaseAmount undoes a prior reservation of amount. Used never drops
// below zero even if a release races a concurrent reservation.
func (r *mongoRecordRepo) ReleaseAmount(ctx context.Context, id string, amount float64) error {
	filter := bson.M{
		"id":   id,
		"used": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"used": -amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetReservationCodes overwrites the stored reservation-code field.
func (r *mongoRecordRepo) SetReservationCodes(ctx context.Context, id string, codes string) error {
	update := bson.M{
		"$set": bson.M{
			"reservationCodes": codes,
			"updatedAt":        time.Now(),
		},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
