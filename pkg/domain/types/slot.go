package types

import "fmt"

// Slot represents one of the two fixed half-day scheduling units of a
// business day.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
)

// Capacity constants fixed by product rule. Task duration does not weigh
// into occupancy; every assignment counts as one slot unit.
const (
	// MaxSlotOccupancy is the maximum number of active assignments one
	// employee/date/slot may hold.
	MaxSlotOccupancy = 4

	// SlotsPerDay is the number of slots in a business day.
	SlotsPerDay = 2

	// MaxDailyCapacity is the assignment-unit capacity of one employee for
	// one business day.
	MaxDailyCapacity = MaxSlotOccupancy * SlotsPerDay
)

// AllSlots returns all valid slots in day order
func AllSlots() []Slot {
	return []Slot{
		SlotMorning,
		SlotAfternoon,
	}
}

// IsValid checks if the slot is valid
func (s Slot) IsValid() bool {
	switch s {
	case SlotMorning,
		SlotAfternoon:
		return true
	default:
		return false
	}
}

// String returns the string representation of the slot
func (s Slot) String() string {
	return string(s)
}

// ParseSlot parses a string into a Slot
func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if !slot.IsValid() {
		return "", fmt.Errorf("invalid slot: %s", s)
	}
	return slot, nil
}
