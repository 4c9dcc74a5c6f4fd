package interfaces

import (
	"context"

	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// DirectoryRepository exposes the employee/team directory. The engine
// treats it as read-only; the Put methods exist for seeding and for the
// directory's own maintenance surface.
type DirectoryRepository interface {
	GetEmployee(ctx context.Context, id types.EmployeeID) (*model.Employee, error)

	// ListEmployees returns every employee, active and inactive
	ListEmployees(ctx context.Context) ([]*model.Employee, error)

	// ListTeamMembers returns the employees belonging to one team
	ListTeamMembers(ctx context.Context, teamID types.TeamID) ([]*model.Employee, error)

	GetTeam(ctx context.Context, id types.TeamID) (*model.Team, error)

	ListTeams(ctx context.Context) ([]*model.Team, error)

	// GetManagedTeams returns the team IDs managed by the given user. An
	// empty result for a manager means they see nothing, not everything.
	GetManagedTeams(ctx context.Context, userID types.EmployeeID) ([]types.TeamID, error)

	PutEmployee(ctx context.Context, e *model.Employee) error
	PutTeam(ctx context.Context, t *model.Team) error
	SetManagedTeams(ctx context.Context, userID types.EmployeeID, teamIDs []types.TeamID) error
}
