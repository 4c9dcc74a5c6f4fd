package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// StoreIssue describes one consistency violation found in the store
type StoreIssue struct {
	EmployeeID types.EmployeeID
	Date       types.Date
	Slot       types.Slot
	Message    string
}

// StoreValidation is the result of a store consistency check
type StoreValidation struct {
	Issues []StoreIssue
}

func (v *StoreValidation) HasIssues() bool {
	return len(v.Issues) > 0
}

// ValidateStore scans all assignments and absences in [start, end] and
// reports invariant violations: slots over the occupancy cap, gaps or
// duplicates in SlotOrder sequences, and active assignments coexisting
// with approved absences. Read-only; fixing is a manual operation.
func (uc *UseCases) ValidateStore(ctx context.Context, start, end types.Date) (*StoreValidation, error) {
	employees, err := uc.repo.Directory().ListEmployees(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to list employees", goerr.V("cause", err.Error()))
	}
	if len(employees) == 0 {
		return &StoreValidation{}, nil
	}

	employeeIDs := make([]types.EmployeeID, len(employees))
	for i, e := range employees {
		employeeIDs[i] = e.ID
	}

	assignments, err := uc.repo.Assignment().ListRange(ctx, employeeIDs, start, end)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to list assignments", goerr.V("cause", err.Error()))
	}
	idx, err := uc.buildAbsenceIndex(ctx, employeeIDs, start, end, []types.AbsenceStatus{types.AbsenceStatusApproved})
	if err != nil {
		return nil, err
	}

	type slotKey struct {
		employeeID types.EmployeeID
		date       types.Date
		slot       types.Slot
	}
	bySlot := map[slotKey][]*model.Assignment{}
	for _, a := range assignments {
		key := slotKey{a.EmployeeID, a.Date, a.Slot}
		bySlot[key] = append(bySlot[key], a)
	}

	result := &StoreValidation{}
	for key, as := range bySlot {
		if len(as) > types.MaxSlotOccupancy {
			result.Issues = append(result.Issues, StoreIssue{
				EmployeeID: key.employeeID,
				Date:       key.date,
				Slot:       key.slot,
				Message:    fmt.Sprintf("slot holds %d assignments, cap is %d", len(as), types.MaxSlotOccupancy),
			})
		}

		// SlotOrder must be a dense 0..N-1 sequence
		seen := map[int]bool{}
		for _, a := range as {
			if a.SlotOrder < 0 || a.SlotOrder >= len(as) || seen[a.SlotOrder] {
				result.Issues = append(result.Issues, StoreIssue{
					EmployeeID: key.employeeID,
					Date:       key.date,
					Slot:       key.slot,
					Message:    fmt.Sprintf("slot order sequence is not dense: assignment %s has order %d among %d rows", a.ID, a.SlotOrder, len(as)),
				})
				break
			}
			seen[a.SlotOrder] = true
		}

		if blocked := idx.Blocking(key.employeeID, key.date, key.slot); blocked != nil {
			result.Issues = append(result.Issues, StoreIssue{
				EmployeeID: key.employeeID,
				Date:       key.date,
				Slot:       key.slot,
				Message:    fmt.Sprintf("%d assignments coexist with approved absence %s", len(as), blocked.ID),
			})
		}
	}
	return result, nil
}
