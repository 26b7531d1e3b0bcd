package paymentRepo

import (
	"context"
	"errors"

	"casamar/database"
	"casamar/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrRecordNotFound means the payment rail has no record under the id.
	ErrRecordNotFound = errors.New("payment record not found")
	// ErrInsufficientFunds means reserving the amount would push Used past Total.
	ErrInsufficientFunds = errors.New("insufficient funds on payment record")
)

// RecordRepository gives access to the externally-held payment records of
// one rail. ReserveAmount is the only mutation path for Used and must be
// atomic: concurrent reservations can never overdraw the record.
type RecordRepository interface {
	Get(ctx context.Context, id string) (*models.PaymentRecord, error)
	ReserveAmount(ctx context.Context, id string, amount float64) error
	ReleaseAmount(ctx context.Context, id string, amount float64) error
	SetReservationCodes(ctx context.Context, id string, codes string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoCardRepo returns the card-authorization rail repository.
func NewMongoCardRepo() RecordRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoRecordRepo{coll: db.Collection("card_authorizations")}
}

// NewMongoTransferRepo returns the bank-transfer rail repository.
func NewMongoTransferRepo() RecordRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoRecordRepo{coll: db.Collection("bank_transfers")}
}
