package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// GetAvailabilityMatrix builds a per-date/per-slot boolean grid for one
// employee over [start, end]. Weekends are omitted entirely. The meaning
// of true depends on the intent:
//
//   - place_new: the slot can accept one more assignment (under the cap
//     and not blocked by an approved or pending absence)
//   - occupied: the slot holds at least one active assignment
func (uc *UseCases) GetAvailabilityMatrix(ctx context.Context, scope *RoleScope, employeeID types.EmployeeID, start, end types.Date, intent types.AvailabilityIntent) (*model.AvailabilityMatrix, error) {
	if err := start.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "invalid range start", goerr.V(DateKey, start))
	}
	if err := end.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "invalid range end", goerr.V(DateKey, end))
	}
	if end < start {
		return nil, goerr.Wrap(ErrInvalidDate, "range end precedes start",
			goerr.V("start", start),
			goerr.V("end", end),
		)
	}
	if !intent.IsValid() {
		return nil, goerr.New("invalid availability intent", goerr.V("intent", intent))
	}

	employee, err := uc.getEmployee(ctx, scope, employeeID)
	if err != nil {
		return nil, err
	}

	matrix := &model.AvailabilityMatrix{
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
		Intent:     intent,
		Days:       map[types.Date]map[types.Slot]bool{},
	}

	// A deactivated employee can never take new work; their existing
	// assignments still show as occupied.
	if intent == types.IntentPlaceNew && !employee.Active {
		return matrix, nil
	}

	idx, err := uc.buildAbsenceIndex(ctx, []types.EmployeeID{employeeID}, start, end, blockingForPlacement())
	if err != nil {
		return nil, err
	}

	assignments, err := uc.repo.Assignment().ListRange(ctx, []types.EmployeeID{employeeID}, start, end)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load assignments", goerr.V(EmployeeIDKey, employeeID), goerr.V("cause", err.Error()))
	}
	counts := map[types.Date]map[types.Slot]int{}
	for _, a := range assignments {
		if counts[a.Date] == nil {
			counts[a.Date] = map[types.Slot]int{}
		}
		counts[a.Date][a.Slot]++
	}

	for d := start; d <= end; d = d.AddDays(1) {
		if !d.IsBusinessDay() {
			continue
		}
		row := map[types.Slot]bool{}
		for _, slot := range types.AllSlots() {
			switch intent {
			case types.IntentPlaceNew:
				row[slot] = counts[d][slot] < types.MaxSlotOccupancy && !idx.IsBlocked(employeeID, d, slot)
			case types.IntentOccupied:
				row[slot] = counts[d][slot] > 0
			}
		}
		matrix.Days[d] = row
	}
	return matrix, nil
}
