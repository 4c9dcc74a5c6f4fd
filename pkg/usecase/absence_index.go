package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// blockingForPlacement is the status set that blocks new placements:
// a pending request already reserves the slot so that approving it
// later cannot collide with work placed in the meantime.
func blockingForPlacement() []types.AbsenceStatus {
	return []types.AbsenceStatus{types.AbsenceStatusApproved, types.AbsenceStatusPending}
}

// blockingForDisplay is the status set rendered as blocks on calendar
// views. Pending requests are included so managers see the reservation
// before deciding on it; rejected requests never appear.
func blockingForDisplay() []types.AbsenceStatus {
	return []types.AbsenceStatus{types.AbsenceStatusApproved, types.AbsenceStatusPending}
}

// absenceIndex answers "is this slot blocked" for a pre-fetched window
// of absence records. The status set is fixed at build time; a record
// outside the set never blocks.
type absenceIndex struct {
	blocking map[types.AbsenceStatus]struct{}
	byDay    map[types.EmployeeID]map[types.Date][]*model.AbsenceRecord
}

// buildAbsenceIndex fetches absences for the given employees over
// [start, end] and indexes them by employee and date. A store failure
// aborts the caller's operation: availability is never assumed on
// missing data.
func (uc *UseCases) buildAbsenceIndex(ctx context.Context, employeeIDs []types.EmployeeID, start, end types.Date, blocking []types.AbsenceStatus) (*absenceIndex, error) {
	records, err := uc.repo.Absence().ListRange(ctx, employeeIDs, start, end)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load absences",
			goerr.V("start", start),
			goerr.V("end", end),
			goerr.V("cause", err.Error()),
		)
	}

	idx := &absenceIndex{
		blocking: map[types.AbsenceStatus]struct{}{},
		byDay:    map[types.EmployeeID]map[types.Date][]*model.AbsenceRecord{},
	}
	for _, s := range blocking {
		idx.blocking[s] = struct{}{}
	}
	for _, r := range records {
		days := idx.byDay[r.EmployeeID]
		if days == nil {
			days = map[types.Date][]*model.AbsenceRecord{}
			idx.byDay[r.EmployeeID] = days
		}
		days[r.Date] = append(days[r.Date], r)
	}
	return idx, nil
}

// Blocking returns the record blocking the slot, preferring approved
// over pending, or nil when the slot is free of absences.
func (idx *absenceIndex) Blocking(employeeID types.EmployeeID, date types.Date, slot types.Slot) *model.AbsenceRecord {
	var found *model.AbsenceRecord
	for _, r := range idx.byDay[employeeID][date] {
		if _, ok := idx.blocking[r.Status]; !ok {
			continue
		}
		if !r.Span.BlocksSlot(slot) {
			continue
		}
		if found == nil || (found.Status != types.AbsenceStatusApproved && r.Status == types.AbsenceStatusApproved) {
			found = r
		}
	}
	return found
}

func (idx *absenceIndex) IsBlocked(employeeID types.EmployeeID, date types.Date, slot types.Slot) bool {
	return idx.Blocking(employeeID, date, slot) != nil
}
