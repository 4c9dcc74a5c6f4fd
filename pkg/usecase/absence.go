package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/utils/logging"
)

// AbsenceRequest carries the input of RequestAbsence
type AbsenceRequest struct {
	EmployeeID types.EmployeeID
	Date       types.Date
	Span       types.AbsenceSpan
	Type       types.AbsenceType
	Reason     string `masq:"secret"`
}

// RequestAbsence files a pending absence. The request reserves its slots
// immediately for placement purposes but does not yet consume the
// allowance; the balance is debited at approval. Requests that would
// overdraw the annual allowance (counting days already approved or
// pending for the same type and year) are refused.
func (uc *UseCases) RequestAbsence(ctx context.Context, scope *RoleScope, req *AbsenceRequest) (*model.AbsenceRecord, error) {
	rec := &model.AbsenceRecord{
		ID:         types.NewAbsenceID(),
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Span:       req.Span,
		Status:     types.AbsenceStatusPending,
		Type:       req.Type,
		Reason:     req.Reason,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if !req.Date.IsBusinessDay() {
		return nil, goerr.Wrap(ErrInvalidDate, "cannot request absence on a weekend", goerr.V(DateKey, req.Date))
	}

	employee, err := uc.getEmployee(ctx, scope, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !employee.Active {
		return nil, goerr.Wrap(ErrEmployeeInactive, "cannot request absence for a deactivated employee", goerr.V(EmployeeIDKey, req.EmployeeID))
	}

	if policy := uc.org.Policy(req.Type); policy != nil && !policy.Unlimited() {
		if err := uc.checkAllowance(ctx, req, policy); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	created, err := uc.repo.Absence().Create(ctx, rec)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to create absence record", goerr.V("cause", err.Error()))
	}
	return created, nil
}

// checkAllowance verifies the request fits inside the annual allowance.
// Pending requests count against the balance so two overlapping requests
// cannot both pass while only one would fit.
func (uc *UseCases) checkAllowance(ctx context.Context, req *AbsenceRequest, policy *model.AbsencePolicy) error {
	year := req.Date.Year()
	total := policy.AnnualDays
	var used float64

	alloc, err := uc.repo.Absence().GetAllocation(ctx, req.EmployeeID, year, req.Type)
	switch {
	case err == nil:
		total = alloc.TotalDays
		used = alloc.UsedDays
	case !errors.Is(err, interfaces.ErrNotFound):
		return goerr.Wrap(ErrEngineUnavailable, "failed to load allocation", goerr.V(EmployeeIDKey, req.EmployeeID), goerr.V("cause", err.Error()))
	}

	// UsedDays tracks approved consumption; add the days still pending so
	// the projected balance covers requests under review.
	yearStart := types.DateOf(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))
	yearEnd := types.DateOf(time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC))
	records, err := uc.repo.Absence().ListByEmployeeRange(ctx, req.EmployeeID, yearStart, yearEnd)
	if err != nil {
		return goerr.Wrap(ErrEngineUnavailable, "failed to load absence history", goerr.V(EmployeeIDKey, req.EmployeeID), goerr.V("cause", err.Error()))
	}
	for _, r := range records {
		if r.Type == req.Type && r.Status == types.AbsenceStatusPending {
			used += r.Span.SlotUnits()
		}
	}

	if used+req.Span.SlotUnits() > total {
		return goerr.Wrap(ErrAllowanceExceeded, "absence allowance exceeded",
			goerr.V(EmployeeIDKey, req.EmployeeID),
			goerr.V("type", req.Type),
			goerr.V("year", year),
			goerr.V("total_days", total),
			goerr.V("used_days", used),
			goerr.V("requested_days", req.Span.SlotUnits()),
		)
	}
	return nil
}

// ApproveAbsence debits the allowance and transitions a pending record to
// approved. Approval fails with ErrAbsenceConflict when an active
// assignment occupies a slot the absence would block; the reviewer must
// move or remove the work first. Only managers covering the employee and
// admins may approve; an employee never approves their own request
// unless they hold one of those roles over themselves.
func (uc *UseCases) ApproveAbsence(ctx context.Context, scope *RoleScope, id types.AbsenceID) (*model.AbsenceRecord, error) {
	rec, err := uc.reviewableAbsence(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	for _, slot := range types.AllSlots() {
		if !rec.Span.BlocksSlot(slot) {
			continue
		}
		occ, err := uc.slotOccupancy(ctx, rec.EmployeeID, rec.Date, slot, "")
		if err != nil {
			return nil, err
		}
		if occ.Count > 0 {
			return nil, goerr.Wrap(ErrAbsenceConflict, "assignments occupy the absence window",
				goerr.V(AbsenceIDKey, id),
				goerr.V(EmployeeIDKey, rec.EmployeeID),
				goerr.V(DateKey, rec.Date),
				goerr.V(SlotKey, slot),
				goerr.V("count", occ.Count),
			)
		}
	}

	// Debit before flipping the status: a failed allocation write leaves
	// the record pending and the approval retryable, never an approved
	// record whose days were never consumed.
	policy := uc.org.Policy(rec.Type)
	debited := policy != nil && !policy.Unlimited()
	if debited {
		if err := uc.debitAllocation(ctx, rec, policy); err != nil {
			return nil, err
		}
	}

	updated, err := uc.repo.Absence().UpdateStatus(ctx, id, types.AbsenceStatusApproved)
	if err != nil {
		if debited {
			uc.creditAllocation(ctx, rec)
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAbsenceNotFound, "absence removed concurrently", goerr.V(AbsenceIDKey, id))
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to approve absence", goerr.V(AbsenceIDKey, id), goerr.V("cause", err.Error()))
	}
	return updated, nil
}

// RejectAbsence transitions a pending record to rejected. Rejected
// records never block a slot and consume no allowance.
func (uc *UseCases) RejectAbsence(ctx context.Context, scope *RoleScope, id types.AbsenceID) (*model.AbsenceRecord, error) {
	if _, err := uc.reviewableAbsence(ctx, scope, id); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Absence().UpdateStatus(ctx, id, types.AbsenceStatusRejected)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAbsenceNotFound, "absence removed concurrently", goerr.V(AbsenceIDKey, id))
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to reject absence", goerr.V(AbsenceIDKey, id), goerr.V("cause", err.Error()))
	}
	return updated, nil
}

// ListAbsences returns one employee's absence records over [start, end],
// all statuses included. Absence reasons are redacted for callers who
// may not read them.
func (uc *UseCases) ListAbsences(ctx context.Context, scope *RoleScope, employeeID types.EmployeeID, start, end types.Date) ([]*model.AbsenceRecord, error) {
	if err := start.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "invalid range start", goerr.V(DateKey, start))
	}
	if err := end.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "invalid range end", goerr.V(DateKey, end))
	}
	if _, err := uc.getEmployee(ctx, scope, employeeID); err != nil {
		return nil, err
	}

	records, err := uc.repo.Absence().ListByEmployeeRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to list absences", goerr.V(EmployeeIDKey, employeeID), goerr.V("cause", err.Error()))
	}
	if !scope.SeesNotes(employeeID) {
		for _, r := range records {
			r.Reason = ""
		}
	}
	return records, nil
}

// reviewableAbsence loads a pending record and verifies the caller may
// review it.
func (uc *UseCases) reviewableAbsence(ctx context.Context, scope *RoleScope, id types.AbsenceID) (*model.AbsenceRecord, error) {
	rec, err := uc.repo.Absence().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAbsenceNotFound, "absence not found", goerr.V(AbsenceIDKey, id))
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load absence", goerr.V(AbsenceIDKey, id), goerr.V("cause", err.Error()))
	}

	if scope.Role() == types.RoleTeamMember {
		return nil, goerr.Wrap(ErrForbidden, "only managers and admins review absences", goerr.V(AbsenceIDKey, id))
	}
	if _, err := uc.getEmployee(ctx, scope, rec.EmployeeID); err != nil {
		return nil, err
	}
	if rec.Status != types.AbsenceStatusPending {
		return nil, goerr.Wrap(ErrAbsenceNotPending, "absence already reviewed",
			goerr.V(AbsenceIDKey, id),
			goerr.V("status", rec.Status),
		)
	}
	return rec, nil
}

// debitAllocation consumes the approved days from the year's balance,
// creating the allocation row from policy defaults when absent.
func (uc *UseCases) debitAllocation(ctx context.Context, rec *model.AbsenceRecord, policy *model.AbsencePolicy) error {
	year := rec.Date.Year()
	alloc, err := uc.repo.Absence().GetAllocation(ctx, rec.EmployeeID, year, rec.Type)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrEngineUnavailable, "failed to load allocation", goerr.V(EmployeeIDKey, rec.EmployeeID), goerr.V("cause", err.Error()))
		}
		alloc = &model.AbsenceAllocation{
			EmployeeID: rec.EmployeeID,
			Year:       year,
			Type:       rec.Type,
			TotalDays:  policy.AnnualDays,
		}
	}
	alloc.UsedDays += rec.Span.SlotUnits()
	if err := uc.repo.Absence().PutAllocation(ctx, alloc); err != nil {
		return goerr.Wrap(ErrEngineUnavailable, "failed to update allocation", goerr.V(EmployeeIDKey, rec.EmployeeID), goerr.V("cause", err.Error()))
	}
	return nil
}

// creditAllocation returns days debited for an approval whose status write
// failed. Best effort: when the credit itself fails, the remaining
// imbalance is logged for operator reconciliation.
func (uc *UseCases) creditAllocation(ctx context.Context, rec *model.AbsenceRecord) {
	logger := logging.From(ctx)
	alloc, err := uc.repo.Absence().GetAllocation(ctx, rec.EmployeeID, rec.Date.Year(), rec.Type)
	if err != nil {
		logger.Error("failed to load allocation while reverting aborted approval",
			slog.Any("error", err),
			slog.String("absence_id", string(rec.ID)),
			slog.String("employee_id", string(rec.EmployeeID)),
		)
		return
	}
	alloc.UsedDays -= rec.Span.SlotUnits()
	if alloc.UsedDays < 0 {
		alloc.UsedDays = 0
	}
	if err := uc.repo.Absence().PutAllocation(ctx, alloc); err != nil {
		logger.Error("failed to revert allocation after aborted approval",
			slog.Any("error", err),
			slog.String("absence_id", string(rec.ID)),
			slog.String("employee_id", string(rec.EmployeeID)),
		)
	}
}
