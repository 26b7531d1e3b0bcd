package rooms

import (
	"fmt"
	"strings"

	"casamar/models"
)

// ViolationKind distinguishes the two ways an occupancy score can miss a
// room type's bounds.
type ViolationKind string

const (
	TooFew  ViolationKind = "tooFew"
	TooMany ViolationKind = "tooMany"
)

// Violation describes a capacity-bound failure with a guest-facing
// suggestion. It implements error.
type Violation struct {
	RoomType   models.RoomType
	Kind       ViolationKind
	Score      float64
	Suggestion string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("occupancy %.1f out of bounds for %s room (%s)", v.Score, v.RoomType, v.Kind)
}

type bounds struct {
	min, max float64
}

// Occupancy bounds per room type. This table is the single source of
// truth for occupancy rules; DayPass is unconstrained.
var capacityBounds = map[models.RoomType]bounds{
	models.RoomFamiliar:    {5, 8},
	models.RoomJunior:      {2, 8},
	models.RoomDouble:      {2, 4},
	models.RoomMatrimonial: {2, 2},
}

// Display order for suggestions.
var suggestionOrder = []models.RoomType{
	models.RoomMatrimonial,
	models.RoomDouble,
	models.RoomJunior,
	models.RoomFamiliar,
}

// OccupancyScore computes adults plus half weight for the heavier child
// age band. The lighter band counts nothing.
func OccupancyScore(adults, childrenLow, childrenHalf int) float64 {
	_ = childrenLow
	return float64(adults) + 0.5*float64(childrenHalf)
}

// ValidateCapacity checks a room request's occupancy score against the
// requested room type's bounds. It returns nil when the request fits, and
// is pure: no I/O, no external state.
func ValidateCapacity(roomType models.RoomType, adults, childrenLow, childrenHalf int) *Violation {
	b, constrained := capacityBounds[roomType]
	if !constrained {
		return nil
	}

	score := OccupancyScore(adults, childrenLow, childrenHalf)
	switch {
	case score < b.min:
		return &Violation{
			RoomType:   roomType,
			Kind:       TooFew,
			Score:      score,
			Suggestion: suggestFor(roomType, score, b),
		}
	case score > b.max:
		return &Violation{
			RoomType:   roomType,
			Kind:       TooMany,
			Score:      score,
			Suggestion: suggestFor(roomType, score, b),
		}
	}
	return nil
}

// suggestFor names the room types whose bounds contain the score, keeps
// the requested type as the last alternative, and states the bound the
// requested type would need.
func suggestFor(requested models.RoomType, score float64, b bounds) string {
	var fits []string
	for _, rt := range suggestionOrder {
		if rt == requested {
			continue
		}
		rb := capacityBounds[rt]
		if score >= rb.min && score <= rb.max {
			fits = append(fits, string(rt))
		}
	}

	var sb strings.Builder
	if len(fits) > 0 {
		names := strings.Join(fits, ", ") + " or " + string(requested)
		fmt.Fprintf(&sb, "For this group we suggest a %s room. ", names)
	} else if score > b.max {
		sb.WriteString("No single room fits this group; consider splitting it across rooms. ")
	}
	if score < b.min {
		fmt.Fprintf(&sb, "%s rooms take at least %.0f guests.", requested, b.min)
	} else {
		fmt.Fprintf(&sb, "%s rooms take at most %.0f guests.", requested, b.max)
	}
	return sb.String()
}
