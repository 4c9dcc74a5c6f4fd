package interfaces

import (
	"context"

	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// AbsenceRepository persists absence records and per-year allocations.
type AbsenceRepository interface {
	Create(ctx context.Context, rec *model.AbsenceRecord) (*model.AbsenceRecord, error)

	Get(ctx context.Context, id types.AbsenceID) (*model.AbsenceRecord, error)

	// UpdateStatus transitions a record's review status
	UpdateStatus(ctx context.Context, id types.AbsenceID, status types.AbsenceStatus) (*model.AbsenceRecord, error)

	// ListByEmployeeRange returns all records of one employee with dates in
	// [start, end], regardless of status.
	ListByEmployeeRange(ctx context.Context, employeeID types.EmployeeID, start, end types.Date) ([]*model.AbsenceRecord, error)

	// ListRange returns all records of the given employees with dates in
	// [start, end].
	ListRange(ctx context.Context, employeeIDs []types.EmployeeID, start, end types.Date) ([]*model.AbsenceRecord, error)

	// GetAllocation returns the leave balance for one employee/year/type.
	// ErrNotFound when no allocation exists.
	GetAllocation(ctx context.Context, employeeID types.EmployeeID, year int, typ types.AbsenceType) (*model.AbsenceAllocation, error)

	PutAllocation(ctx context.Context, alloc *model.AbsenceAllocation) error
}
