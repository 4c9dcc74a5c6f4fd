package types

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// EmployeeID represents a unique identifier for an employee
type EmployeeID string

// Validate checks if the EmployeeID is valid
func (e EmployeeID) Validate() error {
	if e == "" {
		return goerr.New("employee ID cannot be empty")
	}
	if !idPattern.MatchString(string(e)) {
		return goerr.New("employee ID must be lowercase alphanumeric with hyphens", goerr.V("id", e))
	}
	return nil
}

// String returns the string representation of EmployeeID
func (e EmployeeID) String() string {
	return string(e)
}

// TeamID represents a unique identifier for a team
type TeamID string

// Validate checks if the TeamID is valid
func (t TeamID) Validate() error {
	if t == "" {
		return goerr.New("team ID cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return goerr.New("team ID must be lowercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TeamID
func (t TeamID) String() string {
	return string(t)
}

// TaskID represents a unique identifier for a design task. Tasks are owned
// by the task management collaborator; the engine only references them.
type TaskID string

// Validate checks if the TaskID is valid
func (t TaskID) Validate() error {
	if t == "" {
		return goerr.New("task ID cannot be empty")
	}
	return nil
}

// String returns the string representation of TaskID
func (t TaskID) String() string {
	return string(t)
}

// AssignmentID is a UUID-based identifier for an Assignment
type AssignmentID string

// NewAssignmentID generates a new UUID v4 AssignmentID
func NewAssignmentID() AssignmentID {
	return AssignmentID(uuid.New().String())
}

// String returns the string representation of AssignmentID
func (a AssignmentID) String() string {
	return string(a)
}

// AbsenceID is a UUID-based identifier for an AbsenceRecord
type AbsenceID string

// NewAbsenceID generates a new UUID v4 AbsenceID
func NewAbsenceID() AbsenceID {
	return AbsenceID(uuid.New().String())
}

// String returns the string representation of AbsenceID
func (a AbsenceID) String() string {
	return string(a)
}
