package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

type directoryRepository struct {
	mu        sync.RWMutex
	employees map[types.EmployeeID]*model.Employee
	teams     map[types.TeamID]*model.Team
	managed   map[types.EmployeeID][]types.TeamID
}

func newDirectoryRepository() *directoryRepository {
	return &directoryRepository{
		employees: make(map[types.EmployeeID]*model.Employee),
		teams:     make(map[types.TeamID]*model.Team),
		managed:   make(map[types.EmployeeID][]types.TeamID),
	}
}

func copyEmployee(e *model.Employee) *model.Employee {
	copied := *e
	return &copied
}

func (r *directoryRepository) GetEmployee(ctx context.Context, id types.EmployeeID) (*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.employees[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", id))
	}

	return copyEmployee(e), nil
}

func (r *directoryRepository) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		result = append(result, copyEmployee(e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *directoryRepository) ListTeamMembers(ctx context.Context, teamID types.TeamID) ([]*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Employee{}
	for _, e := range r.employees {
		if e.TeamID == teamID {
			result = append(result, copyEmployee(e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *directoryRepository) GetTeam(ctx context.Context, id types.TeamID) (*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.teams[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "team not found", goerr.V("id", id))
	}

	copied := *t
	return &copied, nil
}

func (r *directoryRepository) ListTeams(ctx context.Context) ([]*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Team, 0, len(r.teams))
	for _, t := range r.teams {
		copied := *t
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *directoryRepository) GetManagedTeams(ctx context.Context, userID types.EmployeeID) ([]types.TeamID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := r.managed[userID]
	result := make([]types.TeamID, len(teams))
	copy(result, teams)
	return result, nil
}

func (r *directoryRepository) PutEmployee(ctx context.Context, e *model.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.employees[e.ID] = copyEmployee(e)
	return nil
}

func (r *directoryRepository) PutTeam(ctx context.Context, t *model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *t
	r.teams[t.ID] = &copied
	return nil
}

func (r *directoryRepository) SetManagedTeams(ctx context.Context, userID types.EmployeeID, teamIDs []types.TeamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	teams := make([]types.TeamID, len(teamIDs))
	copy(teams, teamIDs)
	r.managed[userID] = teams
	return nil
}
