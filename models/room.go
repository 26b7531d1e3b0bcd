package models

// RoomType identifies one of the hotel's physical room categories.
type RoomType string

const (
	RoomJunior      RoomType = "Junior"
	RoomFamiliar    RoomType = "Familiar"
	RoomMatrimonial RoomType = "Matrimonial"
	RoomDouble      RoomType = "Double"
	RoomDayPass     RoomType = "DayPass"
)

// Valid reports whether rt is one of the known room types.
func (rt RoomType) Valid() bool {
	switch rt {
	case RoomJunior, RoomFamiliar, RoomMatrimonial, RoomDouble, RoomDayPass:
		return true
	}
	return false
}

// AvailabilitySnapshot is a point-in-time mapping from physical room number
// to its classified type, for one check-in/check-out pair. It is fetched
// fresh before selection and re-fetched before final submission.
type AvailabilitySnapshot struct {
	CheckIn  string
	CheckOut string
	Rooms    map[string]RoomType
}

// Has reports whether the given room number is present in the snapshot.
func (s AvailabilitySnapshot) Has(roomID string) bool {
	_, ok := s.Rooms[roomID]
	return ok
}
