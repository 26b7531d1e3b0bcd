package pms

import "context"

// ReservationRequest is one atomic multi-room submission to the booking
// API. ReserveRooms and AdultCount are parallel "+"-delimited lists: all
// listed rooms are created together or none are.
type ReservationRequest struct {
	CheckIn       string
	CheckOut      string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	ReserveRooms  string
	AdultCount    string
	ChildrenCount string
}

// Client talks to the external property-management booking API.
type Client interface {
	// FetchRoomIndex returns the raw room-index to room-number mapping
	// for the date range.
	FetchRoomIndex(ctx context.Context, checkIn, checkOut string) (map[string]string, error)
	// SubmitReservation creates the reservation and returns the
	// reservation reference.
	SubmitReservation(ctx context.Context, req ReservationRequest) (string, error)
}
