package models

import "time"

// PaymentRecord mirrors a record held by a payment rail. This subsystem
// only reads it, atomically increments Used, and appends reservation
// codes; the rail owns everything else.
type PaymentRecord struct {
	ID               string    `json:"id" bson:"id"`
	Total            float64   `json:"total" bson:"total"`
	Used             float64   `json:"used" bson:"used"`
	ReservationCodes string    `json:"reservationCodes" bson:"reservationCodes"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Remaining returns the unreserved balance on the record.
func (p PaymentRecord) Remaining() float64 {
	return p.Total - p.Used
}
