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
	"github.com/slotline-io/slotline/pkg/utils/bizday"
	"golang.org/x/sync/errgroup"
)

// GetCalendarView builds the calendar for the caller's scope:
// resolve the date range from the anchor and granularity, fetch
// assignments and absences for the scoped employees, assemble the
// per-day slot cells, then redact fields the caller may not see.
// The view is rebuilt from the store on every call.
func (uc *UseCases) GetCalendarView(ctx context.Context, scope *RoleScope, anchor types.Date, granularity types.Granularity) (*model.CalendarView, error) {
	started := time.Now()
	defer func() {
		metrics.CalendarBuildSeconds.WithLabelValues(granularity.String()).Observe(time.Since(started).Seconds())
	}()

	if !granularity.IsValid() {
		return nil, goerr.New("unknown granularity", goerr.V("granularity", granularity))
	}
	start, end, err := bizday.RangeFor(anchor, granularity)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "cannot resolve view range", goerr.V(DateKey, anchor))
	}

	view := &model.CalendarView{
		Granularity: granularity,
		StartDate:   start,
		EndDate:     end,
	}

	employees, err := uc.visibleEmployees(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return view, nil
	}

	employeeIDs := make([]types.EmployeeID, len(employees))
	for i, e := range employees {
		employeeIDs[i] = e.ID
	}

	var (
		assignments []*model.Assignment
		idx         *absenceIndex
		teamNames   map[types.TeamID]string
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		as, err := uc.repo.Assignment().ListRange(egCtx, employeeIDs, start, end)
		if err != nil {
			return goerr.Wrap(ErrEngineUnavailable, "failed to load assignments", goerr.V("cause", err.Error()))
		}
		assignments = as
		return nil
	})
	eg.Go(func() error {
		built, err := uc.buildAbsenceIndex(egCtx, employeeIDs, start, end, blockingForDisplay())
		if err != nil {
			return err
		}
		idx = built
		return nil
	})
	eg.Go(func() error {
		names, err := uc.teamNames(egCtx, employees)
		if err != nil {
			return err
		}
		teamNames = names
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Index assignments by employee/date/slot. ListRange returns rows in
	// SlotOrder within each slot, so appending preserves display order.
	type cellKey struct {
		employeeID types.EmployeeID
		date       types.Date
		slot       types.Slot
	}
	byCell := map[cellKey][]*model.Assignment{}
	for _, a := range assignments {
		key := cellKey{a.EmployeeID, a.Date, a.Slot}
		byCell[key] = append(byCell[key], a)
	}

	days := bizday.Iterate(start, end)
	for _, e := range employees {
		row := &model.EmployeeCalendar{
			Employee: e,
			TeamName: teamNames[e.TeamID],
		}
		for _, d := range days {
			day := &model.CalendarDay{
				Date:  d,
				Slots: map[types.Slot]*model.SlotCell{},
			}
			for _, slot := range types.AllSlots() {
				cell := &model.SlotCell{}
				for _, a := range byCell[cellKey{e.ID, d, slot}] {
					cell.Assignments = append(cell.Assignments, &model.AssignmentEntry{
						AssignmentID: a.ID,
						TaskID:       a.TaskID,
						SlotOrder:    a.SlotOrder,
						Notes:        a.Notes,
					})
				}
				if blocked := idx.Blocking(e.ID, d, slot); blocked != nil {
					cell.Absence = &model.AbsenceBlock{
						AbsenceID: blocked.ID,
						Status:    blocked.Status,
						Type:      blocked.Type,
						Reason:    blocked.Reason,
					}
				}
				cell.Remaining = types.MaxSlotOccupancy - len(cell.Assignments)
				day.Slots[slot] = cell
			}
			row.Days = append(row.Days, day)
		}
		view.Employees = append(view.Employees, row)
	}

	redactCalendarView(scope, view)
	return view, nil
}

// teamNames resolves team display names for the employees in the view.
// A dangling team reference renders as an empty name rather than
// failing the whole view.
func (uc *UseCases) teamNames(ctx context.Context, employees []*model.Employee) (map[types.TeamID]string, error) {
	names := map[types.TeamID]string{}
	for _, e := range employees {
		if _, ok := names[e.TeamID]; ok {
			continue
		}
		team, err := uc.repo.Directory().GetTeam(ctx, e.TeamID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				names[e.TeamID] = ""
				continue
			}
			return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load team", goerr.V("team_id", e.TeamID), goerr.V("cause", err.Error()))
		}
		names[e.TeamID] = team.Name
	}
	return names, nil
}

// redactCalendarView strips fields the caller may not see. Runs last so
// no redacted data can leak into intermediate structures.
func redactCalendarView(scope *RoleScope, view *model.CalendarView) {
	for _, row := range view.Employees {
		if scope.SeesNotes(row.Employee.ID) {
			continue
		}
		for _, day := range row.Days {
			for _, cell := range day.Slots {
				for _, entry := range cell.Assignments {
					entry.Notes = ""
				}
				if cell.Absence != nil {
					cell.Absence.Reason = ""
				}
			}
		}
	}
}
