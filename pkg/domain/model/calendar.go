package model

import "github.com/slotline-io/slotline/pkg/domain/types"

// CalendarView is the request-scoped aggregate returned to callers. It is
// never persisted; it is rebuilt from the store on every query.
type CalendarView struct {
	Granularity types.Granularity
	StartDate   types.Date
	EndDate     types.Date
	Employees   []*EmployeeCalendar
}

// EmployeeCalendar holds one employee's row of the view
type EmployeeCalendar struct {
	Employee *Employee
	TeamName string
	Days     []*CalendarDay
}

// CalendarDay holds both slots of one business day
type CalendarDay struct {
	Date  types.Date
	Slots map[types.Slot]*SlotCell
}

// SlotCell is one employee/date/slot cell of the view
type SlotCell struct {
	Assignments []*AssignmentEntry
	Absence     *AbsenceBlock
	// Remaining is how many more assignments the slot can accept
	Remaining int
}

// AssignmentEntry is the view projection of one assignment
type AssignmentEntry struct {
	AssignmentID types.AssignmentID
	TaskID       types.TaskID
	SlotOrder    int
	Notes        string
}

// AbsenceBlock is the view projection of a blocking absence
type AbsenceBlock struct {
	AbsenceID types.AbsenceID
	Status    types.AbsenceStatus
	Type      types.AbsenceType
	Reason    string
}

// AvailabilityMatrix is a per-date/per-slot boolean grid for one employee.
// The meaning of true depends on the intent the caller asked for.
type AvailabilityMatrix struct {
	EmployeeID types.EmployeeID
	StartDate  types.Date
	EndDate    types.Date
	Intent     types.AvailabilityIntent
	Days       map[types.Date]map[types.Slot]bool
}

// CapacityReport aggregates active-assignment counts over a date range
type CapacityReport struct {
	StartDate types.Date
	EndDate   types.Date

	// Workloads maps employee -> date -> active assignment count
	Workloads map[types.EmployeeID]map[types.Date]int

	// Utilization maps date -> percentage (0..100) of max capacity used
	// across the scoped employees
	Utilization map[types.Date]float64
}

// Occupancy is the current load of one employee/date/slot
type Occupancy struct {
	Count   int
	TaskIDs []types.TaskID
}

// HasCapacity reports whether one more assignment fits under the cap
func (o *Occupancy) HasCapacity() bool {
	return o.Count < types.MaxSlotOccupancy
}
