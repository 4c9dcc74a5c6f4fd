package types

import "fmt"

// Granularity represents the zoom level of a calendar view
type Granularity string

const (
	GranularityDaily    Granularity = "daily"
	GranularityWeekly   Granularity = "weekly"
	GranularityBiweekly Granularity = "biweekly"
	GranularityMonthly  Granularity = "monthly"
)

// AllGranularities returns all valid granularities
func AllGranularities() []Granularity {
	return []Granularity{
		GranularityDaily,
		GranularityWeekly,
		GranularityBiweekly,
		GranularityMonthly,
	}
}

// IsValid checks if the granularity is valid
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDaily,
		GranularityWeekly,
		GranularityBiweekly,
		GranularityMonthly:
		return true
	default:
		return false
	}
}

// String returns the string representation of the granularity
func (g Granularity) String() string {
	return string(g)
}

// ParseGranularity parses a string into a Granularity
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(s)
	if !g.IsValid() {
		return "", fmt.Errorf("invalid granularity: %s", s)
	}
	return g, nil
}

// AvailabilityIntent distinguishes the two questions an availability query
// can ask. Callers must pick one; the engine does not guess.
type AvailabilityIntent string

const (
	// IntentPlaceNew asks "can a new task be placed in this slot"
	IntentPlaceNew AvailabilityIntent = "place_new"
	// IntentOccupied asks "does this slot hold any of the employee's own
	// active assignments"
	IntentOccupied AvailabilityIntent = "occupied"
)

// IsValid checks if the availability intent is valid
func (i AvailabilityIntent) IsValid() bool {
	switch i {
	case IntentPlaceNew, IntentOccupied:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent
func (i AvailabilityIntent) String() string {
	return string(i)
}

// ParseAvailabilityIntent parses a string into an AvailabilityIntent
func ParseAvailabilityIntent(s string) (AvailabilityIntent, error) {
	intent := AvailabilityIntent(s)
	if !intent.IsValid() {
		return "", fmt.Errorf("invalid availability intent: %s", s)
	}
	return intent, nil
}
