package rooms

import (
	"math/rand"

	"casamar/models"
)

// SelectRoom picks one concrete room number of the requested type from the
// snapshot, skipping anything already in excluded. Selection is uniform
// random among the remaining candidates. The second return is false when
// no candidate remains.
//
// Callers selecting several rooms in one transaction must add each pick to
// excluded before the next call; that accumulation is what keeps a
// multi-room transaction from assigning the same physical room twice.
func SelectRoom(snapshot models.AvailabilitySnapshot, roomType models.RoomType, excluded map[string]bool) (string, bool) {
	var candidates []string
	for roomID, rt := range snapshot.Rooms {
		if rt != roomType {
			continue
		}
		if excluded[roomID] {
			continue
		}
		candidates = append(candidates, roomID)
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// CountAvailable returns how many rooms of the type remain selectable.
func CountAvailable(snapshot models.AvailabilitySnapshot, roomType models.RoomType, excluded map[string]bool) int {
	count := 0
	for roomID, rt := range snapshot.Rooms {
		if rt == roomType && !excluded[roomID] {
			count++
		}
	}
	return count
}
