package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// RoleScope is the visibility boundary of one caller. Every read
// operation filters through it and every write operation checks it
// before touching the store.
//
//   - TeamMember: sees and modifies only their own schedule.
//   - Manager: sees and modifies employees of the teams they manage.
//     A manager with no managed teams sees nothing.
//   - Admin: unrestricted.
type RoleScope struct {
	userID types.EmployeeID
	role   types.Role
	teams  map[types.TeamID]struct{}
}

func (s *RoleScope) UserID() types.EmployeeID { return s.userID }
func (s *RoleScope) Role() types.Role         { return s.role }

// ManagedTeams returns the manager's team IDs in sorted order. Empty for
// other roles.
func (s *RoleScope) ManagedTeams() []types.TeamID {
	ids := make([]types.TeamID, 0, len(s.teams))
	for id := range s.teams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Covers reports whether the employee falls inside this scope.
func (s *RoleScope) Covers(e *model.Employee) bool {
	switch s.role {
	case types.RoleAdmin:
		return true
	case types.RoleManager:
		_, ok := s.teams[e.TeamID]
		return ok
	default:
		return e.ID == s.userID
	}
}

// Self reports whether the employee is the caller.
func (s *RoleScope) Self(id types.EmployeeID) bool {
	return s.userID == id
}

// SeesNotes reports whether the scope may read task notes and absence
// reasons of the given employee. Callers always see their own; managers
// and admins see those of employees they cover.
func (s *RoleScope) SeesNotes(id types.EmployeeID) bool {
	if s.Self(id) {
		return true
	}
	return s.role == types.RoleManager || s.role == types.RoleAdmin
}

// ResolveScope loads the calling employee and builds their visibility
// scope. Inactive callers are rejected.
func (uc *UseCases) ResolveScope(ctx context.Context, userID types.EmployeeID) (*RoleScope, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrEmployeeNotFound, "invalid caller ID", goerr.V(EmployeeIDKey, userID))
	}

	caller, err := uc.repo.Directory().GetEmployee(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrEmployeeNotFound, "caller not found", goerr.V(EmployeeIDKey, userID))
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load caller", goerr.V(EmployeeIDKey, userID), goerr.V("cause", err.Error()))
	}
	if !caller.Active {
		return nil, goerr.Wrap(ErrForbidden, "caller is deactivated", goerr.V(EmployeeIDKey, userID))
	}

	scope := &RoleScope{
		userID: caller.ID,
		role:   caller.Role.Normalize(),
		teams:  map[types.TeamID]struct{}{},
	}
	if scope.role == types.RoleManager {
		teamIDs, err := uc.repo.Directory().GetManagedTeams(ctx, caller.ID)
		if err != nil {
			return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load managed teams", goerr.V(EmployeeIDKey, userID), goerr.V("cause", err.Error()))
		}
		for _, id := range teamIDs {
			scope.teams[id] = struct{}{}
		}
	}
	return scope, nil
}

// visibleEmployees lists the active employees covered by the scope,
// sorted by team then ID for stable view output.
func (uc *UseCases) visibleEmployees(ctx context.Context, scope *RoleScope) ([]*model.Employee, error) {
	var employees []*model.Employee

	switch scope.role {
	case types.RoleAdmin:
		all, err := uc.repo.Directory().ListEmployees(ctx)
		if err != nil {
			return nil, goerr.Wrap(ErrEngineUnavailable, "failed to list employees", goerr.V("cause", err.Error()))
		}
		employees = all

	case types.RoleManager:
		for _, teamID := range scope.ManagedTeams() {
			members, err := uc.repo.Directory().ListTeamMembers(ctx, teamID)
			if err != nil {
				return nil, goerr.Wrap(ErrEngineUnavailable, "failed to list team members", goerr.V("team_id", teamID), goerr.V("cause", err.Error()))
			}
			employees = append(employees, members...)
		}

	default:
		self, err := uc.repo.Directory().GetEmployee(ctx, scope.userID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrEmployeeNotFound, "caller not found", goerr.V(EmployeeIDKey, scope.userID))
			}
			return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load caller", goerr.V(EmployeeIDKey, scope.userID), goerr.V("cause", err.Error()))
		}
		employees = []*model.Employee{self}
	}

	active := make([]*model.Employee, 0, len(employees))
	for _, e := range employees {
		if e.Active {
			active = append(active, e)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].TeamID != active[j].TeamID {
			return active[i].TeamID < active[j].TeamID
		}
		return active[i].ID < active[j].ID
	})
	return active, nil
}

// getEmployee loads an employee and verifies the scope covers them.
func (uc *UseCases) getEmployee(ctx context.Context, scope *RoleScope, id types.EmployeeID) (*model.Employee, error) {
	e, err := uc.repo.Directory().GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrEmployeeNotFound, "employee not found", goerr.V(EmployeeIDKey, id))
		}
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load employee", goerr.V(EmployeeIDKey, id), goerr.V("cause", err.Error()))
	}
	if !scope.Covers(e) {
		return nil, goerr.Wrap(ErrForbidden, "employee is outside the caller's scope", goerr.V(EmployeeIDKey, id))
	}
	return e, nil
}
