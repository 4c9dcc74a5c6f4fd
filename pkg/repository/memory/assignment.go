package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

type slotKey struct {
	employeeID types.EmployeeID
	date       types.Date
	slot       types.Slot
}

type assignmentRepository struct {
	mu          sync.RWMutex
	assignments map[types.AssignmentID]*model.Assignment
}

func newAssignmentRepository() *assignmentRepository {
	return &assignmentRepository{
		assignments: make(map[types.AssignmentID]*model.Assignment),
	}
}

// copyAssignment creates a deep copy of an assignment
func copyAssignment(a *model.Assignment) *model.Assignment {
	copied := *a
	return &copied
}

// activeInSlot returns active assignments of one slot ordered by
// SlotOrder. Caller must hold the lock.
func (r *assignmentRepository) activeInSlot(key slotKey) []*model.Assignment {
	var result []*model.Assignment
	for _, a := range r.assignments {
		if a.Active && a.EmployeeID == key.employeeID && a.Date == key.date && a.Slot == key.slot {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SlotOrder < result[j].SlotOrder
	})
	return result
}

// renumberSlot re-densifies SlotOrder to 0..N-1. Caller must hold the lock.
func (r *assignmentRepository) renumberSlot(key slotKey, now time.Time) {
	for i, a := range r.activeInSlot(key) {
		if a.SlotOrder != i {
			a.SlotOrder = i
			a.UpdatedAt = now
		}
	}
}

func (r *assignmentRepository) Get(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.assignments[id]
	if !exists || !a.Active {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
	}

	return copyAssignment(a), nil
}

func (r *assignmentRepository) ListSlot(ctx context.Context, employeeID types.EmployeeID, date types.Date, slot types.Slot) ([]*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := r.activeInSlot(slotKey{employeeID, date, slot})
	result := make([]*model.Assignment, 0, len(active))
	for _, a := range active {
		result = append(result, copyAssignment(a))
	}
	return result, nil
}

func (r *assignmentRepository) ListRange(ctx context.Context, employeeIDs []types.EmployeeID, start, end types.Date) ([]*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[types.EmployeeID]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = struct{}{}
	}

	result := []*model.Assignment{}
	for _, a := range r.assignments {
		if !a.Active {
			continue
		}
		if _, ok := wanted[a.EmployeeID]; !ok {
			continue
		}
		if a.Date < start || a.Date > end {
			continue
		}
		result = append(result, copyAssignment(a))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		if result[i].Slot != result[j].Slot {
			return result[i].Slot < result[j].Slot
		}
		return result[i].SlotOrder < result[j].SlotOrder
	})

	return result, nil
}

func (r *assignmentRepository) Insert(ctx context.Context, a *model.Assignment) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey{a.EmployeeID, a.Date, a.Slot}
	count := len(r.activeInSlot(key))
	if count >= types.MaxSlotOccupancy {
		return nil, goerr.Wrap(interfaces.ErrSlotFull, "slot is full",
			goerr.V("employee_id", a.EmployeeID),
			goerr.V("date", a.Date),
			goerr.V("slot", a.Slot),
			goerr.V("count", count))
	}

	now := time.Now().UTC()
	created := copyAssignment(a)
	if created.ID == "" {
		created.ID = types.NewAssignmentID()
	}
	created.SlotOrder = count
	created.Active = true
	created.CreatedAt = now
	created.UpdatedAt = now

	r.assignments[created.ID] = created
	return copyAssignment(created), nil
}

func (r *assignmentRepository) InsertBatch(ctx context.Context, as []*model.Assignment) ([]*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate the whole batch before touching the store. In-batch
	// placements to the same slot count cumulatively.
	pending := make(map[slotKey]int)
	for i, a := range as {
		key := slotKey{a.EmployeeID, a.Date, a.Slot}
		count := len(r.activeInSlot(key)) + pending[key]
		if count >= types.MaxSlotOccupancy {
			return nil, goerr.Wrap(interfaces.ErrSlotFull, "slot is full",
				goerr.V("index", i),
				goerr.V("employee_id", a.EmployeeID),
				goerr.V("date", a.Date),
				goerr.V("slot", a.Slot),
				goerr.V("count", count))
		}
		pending[key]++
	}

	now := time.Now().UTC()
	orders := make(map[slotKey]int)
	created := make([]*model.Assignment, 0, len(as))
	for _, a := range as {
		key := slotKey{a.EmployeeID, a.Date, a.Slot}
		if _, ok := orders[key]; !ok {
			orders[key] = len(r.activeInSlot(key))
		}

		c := copyAssignment(a)
		if c.ID == "" {
			c.ID = types.NewAssignmentID()
		}
		c.SlotOrder = orders[key]
		c.Active = true
		c.CreatedAt = now
		c.UpdatedAt = now
		orders[key]++

		r.assignments[c.ID] = c
		created = append(created, copyAssignment(c))
	}

	return created, nil
}

func (r *assignmentRepository) Move(ctx context.Context, id types.AssignmentID, employeeID types.EmployeeID, date types.Date, slot types.Slot) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assignments[id]
	if !exists || !a.Active {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
	}

	source := slotKey{a.EmployeeID, a.Date, a.Slot}
	dest := slotKey{employeeID, date, slot}

	// Count the destination without the assignment being moved
	destCount := 0
	for _, other := range r.activeInSlot(dest) {
		if other.ID != id {
			destCount++
		}
	}
	if destCount >= types.MaxSlotOccupancy {
		return nil, goerr.Wrap(interfaces.ErrSlotFull, "destination slot is full",
			goerr.V("id", id),
			goerr.V("employee_id", employeeID),
			goerr.V("date", date),
			goerr.V("slot", slot),
			goerr.V("count", destCount))
	}

	now := time.Now().UTC()
	a.EmployeeID = employeeID
	a.Date = date
	a.Slot = slot
	a.SlotOrder = destCount
	a.UpdatedAt = now

	if source != dest {
		r.renumberSlot(source, now)
	}
	r.renumberSlot(dest, now)

	return copyAssignment(a), nil
}

func (r *assignmentRepository) Deactivate(ctx context.Context, id types.AssignmentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assignments[id]
	if !exists || !a.Active {
		return goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
	}

	now := time.Now().UTC()
	a.Active = false
	a.UpdatedAt = now
	r.renumberSlot(slotKey{a.EmployeeID, a.Date, a.Slot}, now)

	return nil
}
