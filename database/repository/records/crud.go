package recordsRepo

import (
	"context"
	"time"

	"casamar/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// SaveBooking inserts a committed booking record and returns its ID.
func (r *mongoArchiveRepo) SaveBooking(ctx context.Context, record models.BookingRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	_, err := r.bookingColl.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetBookingByGuest fetches all archived bookings for a guest.
func (r *mongoArchiveRepo) GetBookingByGuest(ctx context.Context, guestID string) ([]models.BookingRecord, error) {
	cursor, err := r.bookingColl.Find(ctx, bson.M{"transaction.guestId": guestID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveEscalation inserts an escalation record and returns its ID.
func (r *mongoArchiveRepo) SaveEscalation(ctx context.Context, record models.EscalationRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	_, err := r.escalationColl.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}
