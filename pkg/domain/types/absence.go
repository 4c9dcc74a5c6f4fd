package types

import "fmt"

// AbsenceStatus represents the review status of an absence record
type AbsenceStatus string

const (
	AbsenceStatusPending  AbsenceStatus = "pending"
	AbsenceStatusApproved AbsenceStatus = "approved"
	AbsenceStatusRejected AbsenceStatus = "rejected"
)

// AllAbsenceStatuses returns all valid absence statuses
func AllAbsenceStatuses() []AbsenceStatus {
	return []AbsenceStatus{
		AbsenceStatusPending,
		AbsenceStatusApproved,
		AbsenceStatusRejected,
	}
}

// IsValid checks if the absence status is valid
func (s AbsenceStatus) IsValid() bool {
	switch s {
	case AbsenceStatusPending,
		AbsenceStatusApproved,
		AbsenceStatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the absence status
func (s AbsenceStatus) String() string {
	return string(s)
}

// ParseAbsenceStatus parses a string into an AbsenceStatus
func ParseAbsenceStatus(s string) (AbsenceStatus, error) {
	status := AbsenceStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid absence status: %s", s)
	}
	return status, nil
}

// AbsenceSpan represents which part of the day an absence record covers
type AbsenceSpan string

const (
	AbsenceSpanFullDay   AbsenceSpan = "full_day"
	AbsenceSpanMorning   AbsenceSpan = "morning"
	AbsenceSpanAfternoon AbsenceSpan = "afternoon"
)

// IsValid checks if the absence span is valid
func (s AbsenceSpan) IsValid() bool {
	switch s {
	case AbsenceSpanFullDay,
		AbsenceSpanMorning,
		AbsenceSpanAfternoon:
		return true
	default:
		return false
	}
}

// String returns the string representation of the absence span
func (s AbsenceSpan) String() string {
	return string(s)
}

// ParseAbsenceSpan parses a string into an AbsenceSpan
func ParseAbsenceSpan(s string) (AbsenceSpan, error) {
	span := AbsenceSpan(s)
	if !span.IsValid() {
		return "", fmt.Errorf("invalid absence span: %s", s)
	}
	return span, nil
}

// BlocksSlot reports whether the span covers the given slot. A full-day
// span blocks both slots; a half-day span blocks only its own slot.
func (s AbsenceSpan) BlocksSlot(slot Slot) bool {
	switch s {
	case AbsenceSpanFullDay:
		return true
	case AbsenceSpanMorning:
		return slot == SlotMorning
	case AbsenceSpanAfternoon:
		return slot == SlotAfternoon
	default:
		return false
	}
}

// SlotUnits returns how many slot units of one day the span consumes
func (s AbsenceSpan) SlotUnits() float64 {
	if s == AbsenceSpanFullDay {
		return 1.0
	}
	return 0.5
}

// AbsenceType represents a category of leave, defined in org configuration
type AbsenceType string

// Validate checks if the AbsenceType is valid
func (t AbsenceType) Validate() error {
	if t == "" {
		return fmt.Errorf("absence type cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return fmt.Errorf("absence type must be lowercase alphanumeric with hyphens: %s", t)
	}
	return nil
}

// String returns the string representation of the absence type
func (t AbsenceType) String() string {
	return string(t)
}
