package recordsRepo

import (
	"context"

	"casamar/database"
	"casamar/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ArchiveRepository stores committed bookings and escalation records for
// audit and human follow-up.
type ArchiveRepository interface {
	SaveBooking(ctx context.Context, record models.BookingRecord) (string, error)
	GetBookingByGuest(ctx context.Context, guestID string) ([]models.BookingRecord, error)
	SaveEscalation(ctx context.Context, record models.EscalationRecord) (string, error)
}

type mongoArchiveRepo struct {
	bookingColl    *mongo.Collection
	escalationColl *mongo.Collection
}

// NewMongoArchiveRepo returns a new ArchiveRepository instance using MongoDB.
func NewMongoArchiveRepo() ArchiveRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoArchiveRepo{
		bookingColl:    db.Collection("bookings"),
		escalationColl: db.Collection("escalations"),
	}
}
