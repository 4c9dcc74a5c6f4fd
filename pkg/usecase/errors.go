package usecase

import "errors"

// Sentinel errors for the engine. Every validation failure is reported as
// one of these wrapped with the offending employee/date/slot so callers
// can render a precise message; they are never downgraded to a generic
// failure. All are terminal: the engine performs no retries.
var (
	// Placement errors
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
	ErrAbsenceConflict  = errors.New("slot is blocked by an absence")
	ErrEmployeeInactive = errors.New("employee is deactivated")

	// Not found errors
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrAbsenceNotFound    = errors.New("absence record not found")

	// Access control errors
	ErrForbidden = errors.New("access denied")

	// Other errors
	ErrInvalidDate       = errors.New("not a valid business day")
	ErrAllowanceExceeded = errors.New("absence allowance exceeded")
	ErrAbsenceNotPending = errors.New("absence record is not pending")

	// ErrEngineUnavailable reports a store failure. Retry policy belongs to
	// the caller or the storage adapter, never to the engine.
	ErrEngineUnavailable = errors.New("scheduling store unavailable")
)

// Context keys for error values
const (
	EmployeeIDKey   = "employee_id"
	AssignmentIDKey = "assignment_id"
	AbsenceIDKey    = "absence_id"
	TaskIDKey       = "task_id"
	DateKey         = "date"
	SlotKey         = "slot"
	BatchIndexKey   = "index"
)

// Kind names used in caller-facing error payloads and validation results
const (
	KindCapacityExceeded  = "CapacityExceeded"
	KindAbsenceConflict   = "AbsenceConflict"
	KindEmployeeInactive  = "EmployeeInactive"
	KindNotFound          = "NotFound"
	KindForbidden         = "Forbidden"
	KindInvalidDate       = "InvalidDate"
	KindAllowanceExceeded = "AllowanceExceeded"
	KindEngineUnavailable = "EngineUnavailable"
	KindInvalidRequest    = "InvalidRequest"
)

// KindOf maps an engine error to its caller-facing kind name
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, ErrAbsenceConflict):
		return KindAbsenceConflict
	case errors.Is(err, ErrEmployeeInactive):
		return KindEmployeeInactive
	case errors.Is(err, ErrAssignmentNotFound),
		errors.Is(err, ErrEmployeeNotFound),
		errors.Is(err, ErrAbsenceNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidDate):
		return KindInvalidDate
	case errors.Is(err, ErrAllowanceExceeded):
		return KindAllowanceExceeded
	case errors.Is(err, ErrEngineUnavailable):
		return KindEngineUnavailable
	default:
		return KindInvalidRequest
	}
}
