package rooms

import (
	"context"
	"fmt"
	"strconv"

	"casamar/models"
	"casamar/services/pms"

	"go.uber.org/zap"
)

// AvailabilityError marks a retryable failure to obtain or satisfy live
// inventory. Missing is non-zero when a requested room type fell short.
type AvailabilityError struct {
	RoomType models.RoomType
	Missing  int
	Err      error
}

func (e *AvailabilityError) Error() string {
	if e.Missing > 0 {
		return fmt.Sprintf("not enough %s rooms available: %d missing", e.RoomType, e.Missing)
	}
	return fmt.Sprintf("availability lookup failed: %v", e.Err)
}

func (e *AvailabilityError) Unwrap() error { return e.Err }

// Room-number classification ranges. Matrimonial rooms are carved out of
// the Junior range by number.
var matrimonialRooms = map[int]bool{21: true, 22: true, 29: true}

func classifyRoom(number int) (models.RoomType, bool) {
	switch {
	case number >= 1 && number <= 10:
		return models.RoomFamiliar, true
	case number >= 11 && number <= 30:
		if matrimonialRooms[number] {
			return models.RoomMatrimonial, true
		}
		return models.RoomJunior, true
	case number >= 31 && number <= 40:
		return models.RoomDouble, true
	case number >= 50 && number <= 59:
		return models.RoomDayPass, true
	}
	return "", false
}

// Oracle fetches live inventory from the booking API and classifies it.
type Oracle struct {
	PMS    pms.Client
	Logger *zap.Logger
}

// FetchAvailability performs one read-only availability call and returns
// the classified snapshot for the date range.
func (o *Oracle) FetchAvailability(ctx context.Context, checkIn, checkOut string) (models.AvailabilitySnapshot, error) {
	index, err := o.PMS.FetchRoomIndex(ctx, checkIn, checkOut)
	if err != nil {
		return models.AvailabilitySnapshot{}, &AvailabilityError{Err: err}
	}

	snapshot := models.AvailabilitySnapshot{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Rooms:    make(map[string]models.RoomType, len(index)),
	}
	for _, roomID := range index {
		number, err := strconv.Atoi(roomID)
		if err != nil {
			o.Logger.Warn("skipping non-numeric room identifier", zap.String("room", roomID))
			continue
		}
		roomType, ok := classifyRoom(number)
		if !ok {
			o.Logger.Warn("skipping unclassifiable room number", zap.Int("room", number))
			continue
		}
		snapshot.Rooms[roomID] = roomType
	}
	return snapshot, nil
}
