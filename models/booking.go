package models

import "time"

// RoomRequest is one line of a booking ask. ChildrenLow are the age band
// that weighs nothing toward occupancy; ChildrenHalf weigh 0.5 each.
type RoomRequest struct {
	RoomType     RoomType `json:"roomType" bson:"roomType"`
	Adults       int      `json:"adults" bson:"adults"`
	ChildrenLow  int      `json:"childrenLow" bson:"childrenLow"`
	ChildrenHalf int      `json:"childrenHalf" bson:"childrenHalf"`
}

// PaymentMethod selects which payment rail funds a transaction.
type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// BookingTransaction is the unit of work for one orchestrator run. It is
// either fully committed or fully discarded; partially-committed state is
// never a valid terminal outcome.
type BookingTransaction struct {
	TransactionID string        `json:"transactionId" bson:"transactionId"`
	GuestID       string        `json:"guestId" bson:"guestId"`
	FirstName     string        `json:"firstName" bson:"firstName"`
	LastName      string        `json:"lastName" bson:"lastName"`
	Email         string        `json:"email" bson:"email"`
	Phone         string        `json:"phone" bson:"phone"`
	CheckIn       string        `json:"checkIn" bson:"checkIn"`
	CheckOut      string        `json:"checkOut" bson:"checkOut"`
	Rooms         []RoomRequest `json:"rooms" bson:"rooms"`
	PaymentMethod PaymentMethod `json:"paymentMethod" bson:"paymentMethod"`
	PaymentID     string        `json:"paymentId" bson:"paymentId"`
	TotalAmount   float64       `json:"totalAmount" bson:"totalAmount"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// BookingResult is returned to the caller of the orchestrator.
type BookingResult struct {
	ReservationRef string   `json:"reservationRef"`
	RoomNumbers    []string `json:"roomNumbers"`
	Message        string   `json:"message"`
}

// BookingRecord is the archived form of a committed transaction.
type BookingRecord struct {
	ID             string             `json:"id" bson:"id"`
	ReservationRef string             `json:"reservationRef" bson:"reservationRef"`
	RoomNumbers    []string           `json:"roomNumbers" bson:"roomNumbers"`
	Transaction    BookingTransaction `json:"transaction" bson:"transaction"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}
