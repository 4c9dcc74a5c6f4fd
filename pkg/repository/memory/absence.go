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

type allocationKey struct {
	employeeID types.EmployeeID
	year       int
	typ        types.AbsenceType
}

type absenceRepository struct {
	mu          sync.RWMutex
	records     map[types.AbsenceID]*model.AbsenceRecord
	allocations map[allocationKey]*model.AbsenceAllocation
}

func newAbsenceRepository() *absenceRepository {
	return &absenceRepository{
		records:     make(map[types.AbsenceID]*model.AbsenceRecord),
		allocations: make(map[allocationKey]*model.AbsenceAllocation),
	}
}

// copyRecord creates a deep copy of an absence record
func copyRecord(rec *model.AbsenceRecord) *model.AbsenceRecord {
	copied := *rec
	return &copied
}

func (r *absenceRepository) Create(ctx context.Context, rec *model.AbsenceRecord) (*model.AbsenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyRecord(rec)
	if created.ID == "" {
		created.ID = types.NewAbsenceID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.records[created.ID] = created
	return copyRecord(created), nil
}

func (r *absenceRepository) Get(ctx context.Context, id types.AbsenceID) (*model.AbsenceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "absence record not found", goerr.V("id", id))
	}

	return copyRecord(rec), nil
}

func (r *absenceRepository) UpdateStatus(ctx context.Context, id types.AbsenceID, status types.AbsenceStatus) (*model.AbsenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "absence record not found", goerr.V("id", id))
	}

	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()

	return copyRecord(rec), nil
}

func (r *absenceRepository) ListByEmployeeRange(ctx context.Context, employeeID types.EmployeeID, start, end types.Date) ([]*model.AbsenceRecord, error) {
	return r.ListRange(ctx, []types.EmployeeID{employeeID}, start, end)
}

func (r *absenceRepository) ListRange(ctx context.Context, employeeIDs []types.EmployeeID, start, end types.Date) ([]*model.AbsenceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[types.EmployeeID]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = struct{}{}
	}

	result := []*model.AbsenceRecord{}
	for _, rec := range r.records {
		if _, ok := wanted[rec.EmployeeID]; !ok {
			continue
		}
		if rec.Date < start || rec.Date > end {
			continue
		}
		result = append(result, copyRecord(rec))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})

	return result, nil
}

func (r *absenceRepository) GetAllocation(ctx context.Context, employeeID types.EmployeeID, year int, typ types.AbsenceType) (*model.AbsenceAllocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alloc, exists := r.allocations[allocationKey{employeeID, year, typ}]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "absence allocation not found",
			goerr.V("employee_id", employeeID),
			goerr.V("year", year),
			goerr.V("type", typ))
	}

	copied := *alloc
	return &copied, nil
}

func (r *absenceRepository) PutAllocation(ctx context.Context, alloc *model.AbsenceAllocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *alloc
	r.allocations[allocationKey{alloc.EmployeeID, alloc.Year, alloc.Type}] = &copied
	return nil
}
