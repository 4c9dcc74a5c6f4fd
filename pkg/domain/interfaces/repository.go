package interfaces

import "errors"

// Shared storage sentinels. Both backends wrap these so callers match one
// error regardless of the configured backend.
var (
	// ErrNotFound is returned when a requested record does not exist or has
	// been soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrSlotFull is returned by conditional inserts when the target
	// employee/date/slot already holds the maximum number of active
	// assignments.
	ErrSlotFull = errors.New("slot occupancy cap reached")
)

// Repository defines the interface for data persistence
type Repository interface {
	Assignment() AssignmentRepository
	Absence() AbsenceRepository
	Directory() DirectoryRepository

	Close() error
}
