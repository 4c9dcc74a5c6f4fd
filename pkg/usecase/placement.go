package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/metrics"
)

// CreateAssignment places one task into one slot. Validation order:
// date, employee, scope, absence, capacity. The repository re-checks
// the cap atomically at insert time, so a concurrent writer cannot
// push the slot past MaxSlotOccupancy.
func (uc *UseCases) CreateAssignment(ctx context.Context, scope *RoleScope, p *model.Placement) (*model.Assignment, error) {
	a, err := uc.createAssignment(ctx, scope, p)
	if err != nil {
		metrics.PlacementsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.PlacementsTotal.WithLabelValues("placed").Inc()
	return a, nil
}

func (uc *UseCases) createAssignment(ctx context.Context, scope *RoleScope, p *model.Placement) (*model.Assignment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.Date.IsBusinessDay() {
		return nil, goerr.Wrap(ErrInvalidDate, "cannot place work on a weekend", goerr.V(DateKey, p.Date))
	}

	employee, err := uc.getEmployee(ctx, scope, p.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !employee.Active {
		return nil, goerr.Wrap(ErrEmployeeInactive, "cannot assign work to a deactivated employee", goerr.V(EmployeeIDKey, p.EmployeeID))
	}

	idx, err := uc.buildAbsenceIndex(ctx, []types.EmployeeID{p.EmployeeID}, p.Date, p.Date, blockingForPlacement())
	if err != nil {
		return nil, err
	}
	if err := uc.checkSlotAccepts(ctx, p.EmployeeID, p.Date, p.Slot, "", idx); err != nil {
		return nil, err
	}

	inserted, err := uc.repo.Assignment().Insert(ctx, model.NewAssignment(p, time.Now()))
	if err != nil {
		if errors.Is(err, interfaces.ErrSlotFull) {
			return nil, goerr.Wrap(ErrCapacityExceeded, "slot filled concurrently",
				goerr.V(EmployeeIDKey, p.EmployeeID),
				goerr.V(DateKey, p.Date),
				goerr.V(SlotKey, p.Slot),
			)
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to insert assignment", goerr.V("cause", err.Error()))
	}
	return inserted, nil
}

// MoveAssignment relocates an assignment to a new employee/date/slot.
// The destination is validated like a fresh placement except the moved
// assignment never counts against its own destination (moving within a
// slot is always allowed). On failure the assignment keeps its original
// position.
func (uc *UseCases) MoveAssignment(ctx context.Context, scope *RoleScope, id types.AssignmentID, employeeID types.EmployeeID, date types.Date, slot types.Slot) (*model.Assignment, error) {
	if !slot.IsValid() {
		return nil, goerr.New("invalid slot", goerr.V(SlotKey, slot))
	}
	if err := date.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "invalid destination date", goerr.V(DateKey, date))
	}
	if !date.IsBusinessDay() {
		return nil, goerr.Wrap(ErrInvalidDate, "cannot move work to a weekend", goerr.V(DateKey, date))
	}

	current, err := uc.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	// Both ends of the move must be inside the caller's scope.
	if _, err := uc.getEmployee(ctx, scope, current.EmployeeID); err != nil {
		return nil, err
	}
	dest, err := uc.getEmployee(ctx, scope, employeeID)
	if err != nil {
		return nil, err
	}
	if !dest.Active {
		return nil, goerr.Wrap(ErrEmployeeInactive, "cannot move work to a deactivated employee", goerr.V(EmployeeIDKey, employeeID))
	}

	idx, err := uc.buildAbsenceIndex(ctx, []types.EmployeeID{employeeID}, date, date, blockingForPlacement())
	if err != nil {
		return nil, err
	}
	if err := uc.checkSlotAccepts(ctx, employeeID, date, slot, id, idx); err != nil {
		return nil, err
	}

	moved, err := uc.repo.Assignment().Move(ctx, id, employeeID, date, slot)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(ErrAssignmentNotFound, "assignment removed concurrently", goerr.V(AssignmentIDKey, id))
		case errors.Is(err, interfaces.ErrSlotFull):
			return nil, goerr.Wrap(ErrCapacityExceeded, "destination slot filled concurrently",
				goerr.V(EmployeeIDKey, employeeID),
				goerr.V(DateKey, date),
				goerr.V(SlotKey, slot),
			)
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to move assignment", goerr.V(AssignmentIDKey, id), goerr.V("cause", err.Error()))
	}
	return moved, nil
}

// BulkCreateAssignments commits a list of placements as a single atomic
// unit: all succeed or none are stored. Placements targeting the same
// slot are counted cumulatively within the batch. The returned error
// carries the index of the first offending placement.
func (uc *UseCases) BulkCreateAssignments(ctx context.Context, scope *RoleScope, placements []*model.Placement) ([]*model.Assignment, error) {
	as, err := uc.bulkCreateAssignments(ctx, scope, placements)
	if err != nil {
		metrics.BulkBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.BulkBatchesTotal.WithLabelValues("committed").Inc()
	metrics.BulkBatchSize.Observe(float64(len(placements)))
	return as, nil
}

func (uc *UseCases) bulkCreateAssignments(ctx context.Context, scope *RoleScope, placements []*model.Placement) ([]*model.Assignment, error) {
	if len(placements) == 0 {
		return nil, goerr.New("empty placement batch")
	}

	employees := map[types.EmployeeID]*model.Employee{}
	var minDate, maxDate types.Date
	for i, p := range placements {
		if err := p.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid placement in batch", goerr.V(BatchIndexKey, i))
		}
		if !p.Date.IsBusinessDay() {
			return nil, goerr.Wrap(ErrInvalidDate, "cannot place work on a weekend",
				goerr.V(BatchIndexKey, i),
				goerr.V(DateKey, p.Date),
			)
		}
		if _, ok := employees[p.EmployeeID]; !ok {
			e, err := uc.getEmployee(ctx, scope, p.EmployeeID)
			if err != nil {
				return nil, goerr.Wrap(err, "placement rejected", goerr.V(BatchIndexKey, i))
			}
			employees[p.EmployeeID] = e
		}
		if !employees[p.EmployeeID].Active {
			return nil, goerr.Wrap(ErrEmployeeInactive, "cannot assign work to a deactivated employee",
				goerr.V(BatchIndexKey, i),
				goerr.V(EmployeeIDKey, p.EmployeeID),
			)
		}
		if minDate == "" || p.Date < minDate {
			minDate = p.Date
		}
		if maxDate == "" || p.Date > maxDate {
			maxDate = p.Date
		}
	}

	ids := make([]types.EmployeeID, 0, len(employees))
	for id := range employees {
		ids = append(ids, id)
	}
	idx, err := uc.buildAbsenceIndex(ctx, ids, minDate, maxDate, blockingForPlacement())
	if err != nil {
		return nil, err
	}

	// Pre-check with cumulative counts so the error points at the first
	// placement that overflows its slot. The repository repeats the count
	// atomically at commit time.
	type slotKey struct {
		employeeID types.EmployeeID
		date       types.Date
		slot       types.Slot
	}
	pending := map[slotKey]int{}
	for i, p := range placements {
		key := slotKey{p.EmployeeID, p.Date, p.Slot}
		if pending[key] == 0 {
			if blocked := idx.Blocking(p.EmployeeID, p.Date, p.Slot); blocked != nil {
				return nil, goerr.Wrap(ErrAbsenceConflict, "slot is blocked by an absence",
					goerr.V(BatchIndexKey, i),
					goerr.V(EmployeeIDKey, p.EmployeeID),
					goerr.V(DateKey, p.Date),
					goerr.V(SlotKey, p.Slot),
					goerr.V(AbsenceIDKey, blocked.ID),
				)
			}
		}
		occ, err := uc.slotOccupancy(ctx, p.EmployeeID, p.Date, p.Slot, "")
		if err != nil {
			return nil, err
		}
		if occ.Count+pending[key] >= types.MaxSlotOccupancy {
			return nil, goerr.Wrap(ErrCapacityExceeded, "batch overflows slot capacity",
				goerr.V(BatchIndexKey, i),
				goerr.V(EmployeeIDKey, p.EmployeeID),
				goerr.V(DateKey, p.Date),
				goerr.V(SlotKey, p.Slot),
			)
		}
		pending[key]++
	}

	now := time.Now()
	assignments := make([]*model.Assignment, len(placements))
	for i, p := range placements {
		assignments[i] = model.NewAssignment(p, now)
	}
	inserted, err := uc.repo.Assignment().InsertBatch(ctx, assignments)
	if err != nil {
		if errors.Is(err, interfaces.ErrSlotFull) {
			return nil, goerr.Wrap(ErrCapacityExceeded, "slot filled concurrently", goerr.V("cause", err.Error()))
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to commit batch", goerr.V("cause", err.Error()))
	}
	return inserted, nil
}

// RemoveAssignment soft-deletes an assignment. The row stays in the
// store for audit history but no longer counts toward occupancy.
func (uc *UseCases) RemoveAssignment(ctx context.Context, scope *RoleScope, id types.AssignmentID) error {
	current, err := uc.getAssignment(ctx, id)
	if err != nil {
		return err
	}
	if _, err := uc.getEmployee(ctx, scope, current.EmployeeID); err != nil {
		return err
	}

	if err := uc.repo.Assignment().Deactivate(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrAssignmentNotFound, "assignment removed concurrently", goerr.V(AssignmentIDKey, id))
		}
		return goerr.Wrap(ErrEngineUnavailable, "failed to remove assignment", goerr.V(AssignmentIDKey, id), goerr.V("cause", err.Error()))
	}
	return nil
}

// PlacementCheck is the result of a dry-run placement validation.
type PlacementCheck struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidatePlacement runs the placement checks without writing anything.
// Business rule violations come back as a reason kind; store failures
// are returned as errors.
func (uc *UseCases) ValidatePlacement(ctx context.Context, scope *RoleScope, employeeID types.EmployeeID, date types.Date, slot types.Slot) (*PlacementCheck, error) {
	check := func() error {
		if err := date.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidDate, "invalid date", goerr.V(DateKey, date))
		}
		if !date.IsBusinessDay() {
			return goerr.Wrap(ErrInvalidDate, "not a business day", goerr.V(DateKey, date))
		}
		employee, err := uc.getEmployee(ctx, scope, employeeID)
		if err != nil {
			return err
		}
		if !employee.Active {
			return goerr.Wrap(ErrEmployeeInactive, "employee is deactivated", goerr.V(EmployeeIDKey, employeeID))
		}
		idx, err := uc.buildAbsenceIndex(ctx, []types.EmployeeID{employeeID}, date, date, blockingForPlacement())
		if err != nil {
			return err
		}
		return uc.checkSlotAccepts(ctx, employeeID, date, slot, "", idx)
	}

	if err := check(); err != nil {
		if errors.Is(err, ErrEngineUnavailable) {
			return nil, err
		}
		return &PlacementCheck{OK: false, Reason: KindOf(err), Message: err.Error()}, nil
	}
	return &PlacementCheck{OK: true}, nil
}

func (uc *UseCases) getAssignment(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	a, err := uc.repo.Assignment().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAssignmentNotFound, "assignment not found", goerr.V(AssignmentIDKey, id))
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load assignment", goerr.V(AssignmentIDKey, id), goerr.V("cause", err.Error()))
	}
	return a, nil
}
