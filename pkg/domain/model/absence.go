package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// AbsenceRecord represents one employee being away for a full day or a
// half day. Only the status decides whether it blocks a slot; the approval
// workflow itself lives outside the engine.
type AbsenceRecord struct {
	ID         types.AbsenceID
	EmployeeID types.EmployeeID
	Date       types.Date
	Span       types.AbsenceSpan
	Status     types.AbsenceStatus
	Type       types.AbsenceType
	Reason     string `masq:"secret"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the AbsenceRecord is valid
func (r *AbsenceRecord) Validate() error {
	if err := r.EmployeeID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid employee ID")
	}
	if err := r.Date.Validate(); err != nil {
		return goerr.Wrap(err, "invalid absence date")
	}
	if !r.Span.IsValid() {
		return goerr.New("invalid absence span", goerr.V("span", r.Span))
	}
	if !r.Status.IsValid() {
		return goerr.New("invalid absence status", goerr.V("status", r.Status))
	}
	if err := r.Type.Validate(); err != nil {
		return goerr.Wrap(err, "invalid absence type")
	}
	return nil
}

// Blocks reports whether this record blocks the given slot when its status
// is in the blocking set.
func (r *AbsenceRecord) Blocks(slot types.Slot, blocking []types.AbsenceStatus) bool {
	for _, s := range blocking {
		if r.Status == s {
			return r.Span.BlocksSlot(slot)
		}
	}
	return false
}

// AbsenceAllocation is the per-employee/year leave balance for one absence
// type. Balance arithmetic belongs to absence management; the engine only
// reads it to refuse requests that would overdraw.
type AbsenceAllocation struct {
	EmployeeID types.EmployeeID
	Year       int
	Type       types.AbsenceType
	TotalDays  float64
	UsedDays   float64
}

// Remaining returns the unconsumed balance in days
func (a *AbsenceAllocation) Remaining() float64 {
	return a.TotalDays - a.UsedDays
}
