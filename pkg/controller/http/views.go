package http

import (
	"time"

	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// Response DTOs. Domain models stay tag-free for the Firestore backend,
// so the wire shape is defined here.

type assignmentBody struct {
	ID         types.AssignmentID `json:"id"`
	EmployeeID types.EmployeeID   `json:"employee_id"`
	TaskID     types.TaskID       `json:"task_id"`
	Date       types.Date         `json:"date"`
	Slot       types.Slot         `json:"slot"`
	SlotOrder  int                `json:"slot_order"`
	Notes      string             `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func toAssignmentBody(a *model.Assignment) assignmentBody {
	return assignmentBody{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		TaskID:     a.TaskID,
		Date:       a.Date,
		Slot:       a.Slot,
		SlotOrder:  a.SlotOrder,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

type absenceBody struct {
	ID         types.AbsenceID     `json:"id"`
	EmployeeID types.EmployeeID    `json:"employee_id"`
	Date       types.Date          `json:"date"`
	Span       types.AbsenceSpan   `json:"span"`
	Status     types.AbsenceStatus `json:"status"`
	Type       types.AbsenceType   `json:"type"`
	Reason     string              `json:"reason,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func toAbsenceBody(r *model.AbsenceRecord) absenceBody {
	return absenceBody{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Date:       r.Date,
		Span:       r.Span,
		Status:     r.Status,
		Type:       r.Type,
		Reason:     r.Reason,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type assignmentEntryBody struct {
	AssignmentID types.AssignmentID `json:"assignment_id"`
	TaskID       types.TaskID       `json:"task_id"`
	SlotOrder    int                `json:"slot_order"`
	Notes        string             `json:"notes,omitempty"`
}

type absenceBlockBody struct {
	AbsenceID types.AbsenceID     `json:"absence_id"`
	Status    types.AbsenceStatus `json:"status"`
	Type      types.AbsenceType   `json:"type"`
	Reason    string              `json:"reason,omitempty"`
}

type slotCellBody struct {
	Assignments []assignmentEntryBody `json:"assignments"`
	Absence     *absenceBlockBody     `json:"absence,omitempty"`
	Remaining   int                   `json:"remaining"`
}

type calendarDayBody struct {
	Date  types.Date                  `json:"date"`
	Slots map[types.Slot]slotCellBody `json:"slots"`
}

type employeeCalendarBody struct {
	EmployeeID types.EmployeeID  `json:"employee_id"`
	Name       string            `json:"name"`
	Role       types.Role        `json:"role"`
	TeamID     types.TeamID      `json:"team_id"`
	TeamName   string            `json:"team_name,omitempty"`
	Days       []calendarDayBody `json:"days"`
}

type calendarViewBody struct {
	Granularity types.Granularity      `json:"granularity"`
	StartDate   types.Date             `json:"start_date"`
	EndDate     types.Date             `json:"end_date"`
	Employees   []employeeCalendarBody `json:"employees"`
}

func toCalendarViewBody(view *model.CalendarView) calendarViewBody {
	body := calendarViewBody{
		Granularity: view.Granularity,
		StartDate:   view.StartDate,
		EndDate:     view.EndDate,
		Employees:   []employeeCalendarBody{},
	}
	for _, row := range view.Employees {
		rowBody := employeeCalendarBody{
			EmployeeID: row.Employee.ID,
			Name:       row.Employee.Name,
			Role:       row.Employee.Role,
			TeamID:     row.Employee.TeamID,
			TeamName:   row.TeamName,
		}
		for _, day := range row.Days {
			dayBody := calendarDayBody{
				Date:  day.Date,
				Slots: map[types.Slot]slotCellBody{},
			}
			for slot, cell := range day.Slots {
				cellBody := slotCellBody{
					Assignments: []assignmentEntryBody{},
					Remaining:   cell.Remaining,
				}
				for _, entry := range cell.Assignments {
					cellBody.Assignments = append(cellBody.Assignments, assignmentEntryBody{
						AssignmentID: entry.AssignmentID,
						TaskID:       entry.TaskID,
						SlotOrder:    entry.SlotOrder,
						Notes:        entry.Notes,
					})
				}
				if cell.Absence != nil {
					cellBody.Absence = &absenceBlockBody{
						AbsenceID: cell.Absence.AbsenceID,
						Status:    cell.Absence.Status,
						Type:      cell.Absence.Type,
						Reason:    cell.Absence.Reason,
					}
				}
				dayBody.Slots[slot] = cellBody
			}
			rowBody.Days = append(rowBody.Days, dayBody)
		}
		body.Employees = append(body.Employees, rowBody)
	}
	return body
}

type availabilityBody struct {
	EmployeeID types.EmployeeID                   `json:"employee_id"`
	StartDate  types.Date                         `json:"start_date"`
	EndDate    types.Date                         `json:"end_date"`
	Intent     types.AvailabilityIntent           `json:"intent"`
	Days       map[types.Date]map[types.Slot]bool `json:"days"`
}

type capacityBody struct {
	StartDate   types.Date                              `json:"start_date"`
	EndDate     types.Date                              `json:"end_date"`
	Workloads   map[types.EmployeeID]map[types.Date]int `json:"workloads"`
	Utilization map[types.Date]float64                  `json:"utilization"`
}

type occupancyBody struct {
	Count   int            `json:"count"`
	TaskIDs []types.TaskID `json:"task_ids"`
}
