package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// Assignment represents one task occupying one slot unit for one employee
// on one date. Removal is a soft delete: Active flips to false and the row
// stays for audit history. Inactive assignments never count toward
// occupancy.
type Assignment struct {
	ID         types.AssignmentID
	EmployeeID types.EmployeeID
	TaskID     types.TaskID
	Date       types.Date
	Slot       types.Slot

	// SlotOrder is a dense 0..N-1 sequence among active assignments sharing
	// a slot. Display ordering only; it is not a time offset.
	SlotOrder int

	Notes  string
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the Assignment is valid
func (a *Assignment) Validate() error {
	if err := a.EmployeeID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid employee ID")
	}
	if err := a.TaskID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task ID")
	}
	if err := a.Date.Validate(); err != nil {
		return goerr.Wrap(err, "invalid assignment date")
	}
	if !a.Slot.IsValid() {
		return goerr.New("invalid slot", goerr.V("slot", a.Slot))
	}
	if a.SlotOrder < 0 || a.SlotOrder >= types.MaxSlotOccupancy {
		return goerr.New("slot order out of range", goerr.V("slot_order", a.SlotOrder))
	}
	return nil
}

// Placement is a request to create one assignment. Bulk placement commits
// a list of these as a single atomic unit.
type Placement struct {
	EmployeeID types.EmployeeID
	TaskID     types.TaskID
	Date       types.Date
	Slot       types.Slot
	Notes      string
}

// Validate checks if the Placement is well formed. Business rules
// (capacity, absence, weekends) are checked by the engine, not here.
func (p *Placement) Validate() error {
	if err := p.EmployeeID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid employee ID")
	}
	if err := p.TaskID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task ID")
	}
	if err := p.Date.Validate(); err != nil {
		return goerr.Wrap(err, "invalid placement date")
	}
	if !p.Slot.IsValid() {
		return goerr.New("invalid slot", goerr.V("slot", p.Slot))
	}
	return nil
}

// NewAssignment builds an active assignment from a placement. SlotOrder is
// assigned by the repository at insert time.
func NewAssignment(p *Placement, now time.Time) *Assignment {
	return &Assignment{
		ID:         types.NewAssignmentID(),
		EmployeeID: p.EmployeeID,
		TaskID:     p.TaskID,
		Date:       p.Date,
		Slot:       p.Slot,
		Notes:      p.Notes,
		Active:     true,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
}
