package models

// ReserveRoomsCall is the structured tool call the conversational-AI layer
// sends when a guest asks to book rooms.
type ReserveRoomsCall struct {
	GuestID       string        `json:"guestId" binding:"required"`
	FirstName     string        `json:"firstName" binding:"required"`
	LastName      string        `json:"lastName" binding:"required"`
	Email         string        `json:"email" binding:"required"`
	Phone         string        `json:"phone"`
	CheckIn       string        `json:"checkIn" binding:"required"`
	CheckOut      string        `json:"checkOut" binding:"required"`
	Rooms         []RoomRequest `json:"rooms" binding:"required"`
	PaymentMethod PaymentMethod `json:"paymentMethod" binding:"required"`
	PaymentID     string        `json:"paymentId" binding:"required"`
	TotalAmount   float64       `json:"totalAmount" binding:"required"`
}

// ToolCallResponse is returned to the conversational-AI layer. Message is
// always safe to relay verbatim to the guest.
type ToolCallResponse struct {
	Success        bool     `json:"success"`
	Pending        bool     `json:"pending,omitempty"`
	Message        string   `json:"message"`
	ReservationRef string   `json:"reservationRef,omitempty"`
	RoomNumbers    []string `json:"roomNumbers,omitempty"`
}
