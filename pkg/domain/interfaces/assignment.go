package interfaces

import (
	"context"

	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// AssignmentRepository persists task assignments. All list methods return
// only active assignments; soft-deleted rows are filtered here so every
// caller sees the same rule. Writes enforce the occupancy cap atomically:
// the check-count-then-insert sequence must not race past the cap under
// concurrent writers (memory backend: single mutex; Firestore backend:
// RunTransaction).
type AssignmentRepository interface {
	// Get returns an active assignment by ID. ErrNotFound for missing or
	// soft-deleted IDs.
	Get(ctx context.Context, id types.AssignmentID) (*model.Assignment, error)

	// ListSlot returns the active assignments of one employee/date/slot,
	// ordered by SlotOrder.
	ListSlot(ctx context.Context, employeeID types.EmployeeID, date types.Date, slot types.Slot) ([]*model.Assignment, error)

	// ListRange returns the active assignments of the given employees with
	// dates in [start, end].
	ListRange(ctx context.Context, employeeIDs []types.EmployeeID, start, end types.Date) ([]*model.Assignment, error)

	// Insert appends the assignment if the target slot holds fewer than
	// MaxSlotOccupancy active assignments, assigning SlotOrder = current
	// count. ErrSlotFull otherwise.
	Insert(ctx context.Context, a *model.Assignment) (*model.Assignment, error)

	// InsertBatch inserts all assignments or none. Placements targeting the
	// same slot within the batch are counted cumulatively. On failure the
	// returned error carries the index of the offending item.
	InsertBatch(ctx context.Context, as []*model.Assignment) ([]*model.Assignment, error)

	// Move atomically relocates an active assignment to a new
	// employee/date/slot, excluding the assignment itself from the
	// destination count and re-densifying SlotOrder in both slots. On any
	// failure the assignment keeps its original position.
	Move(ctx context.Context, id types.AssignmentID, employeeID types.EmployeeID, date types.Date, slot types.Slot) (*model.Assignment, error)

	// Deactivate soft-deletes an active assignment and re-densifies the
	// SlotOrder sequence of its slot. ErrNotFound for missing or already
	// deactivated IDs.
	Deactivate(ctx context.Context, id types.AssignmentID) error
}
