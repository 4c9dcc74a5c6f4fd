package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// Occupancy reads the current load of one slot: how many active
// assignments it holds and which tasks they belong to.
func (uc *UseCases) Occupancy(ctx context.Context, scope *RoleScope, employeeID types.EmployeeID, date types.Date, slot types.Slot) (*model.Occupancy, error) {
	if _, err := uc.getEmployee(ctx, scope, employeeID); err != nil {
		return nil, err
	}
	return uc.slotOccupancy(ctx, employeeID, date, slot, "")
}

// slotOccupancy counts active assignments in a slot, optionally
// excluding one assignment (used when moving it out of the way).
func (uc *UseCases) slotOccupancy(ctx context.Context, employeeID types.EmployeeID, date types.Date, slot types.Slot, exclude types.AssignmentID) (*model.Occupancy, error) {
	assignments, err := uc.repo.Assignment().ListSlot(ctx, employeeID, date, slot)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to read slot occupancy",
			goerr.V(EmployeeIDKey, employeeID),
			goerr.V(DateKey, date),
			goerr.V(SlotKey, slot),
			goerr.V("cause", err.Error()),
		)
	}

	occ := &model.Occupancy{}
	for _, a := range assignments {
		if exclude != "" && a.ID == exclude {
			continue
		}
		occ.Count++
		occ.TaskIDs = append(occ.TaskIDs, a.TaskID)
	}
	return occ, nil
}

// checkSlotAccepts verifies a slot can take one more assignment under
// the capacity cap and the absence index. Returns the engine error
// describing the first violation, or nil when the slot accepts.
func (uc *UseCases) checkSlotAccepts(ctx context.Context, employeeID types.EmployeeID, date types.Date, slot types.Slot, exclude types.AssignmentID, idx *absenceIndex) error {
	if blocked := idx.Blocking(employeeID, date, slot); blocked != nil {
		return goerr.Wrap(ErrAbsenceConflict, "slot is blocked by an absence",
			goerr.V(EmployeeIDKey, employeeID),
			goerr.V(DateKey, date),
			goerr.V(SlotKey, slot),
			goerr.V(AbsenceIDKey, blocked.ID),
			goerr.V("absence_status", blocked.Status),
		)
	}

	occ, err := uc.slotOccupancy(ctx, employeeID, date, slot, exclude)
	if err != nil {
		return err
	}
	if !occ.HasCapacity() {
		return goerr.Wrap(ErrCapacityExceeded, "slot is at capacity",
			goerr.V(EmployeeIDKey, employeeID),
			goerr.V(DateKey, date),
			goerr.V(SlotKey, slot),
			goerr.V("count", occ.Count),
			goerr.V("max", types.MaxSlotOccupancy),
		)
	}
	return nil
}
