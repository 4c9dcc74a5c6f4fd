package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/repository/memory"
	"github.com/slotline-io/slotline/pkg/usecase"
)

// setup builds an engine over a fresh in-memory store with a small
// directory: ada (admin), mira (manager of platform), nomad (manager
// with no teams), alice and bob on platform, carol on mobile, ivan
// deactivated on platform.
func setup(t *testing.T) (*usecase.UseCases, interfaces.Repository) {
	t.Helper()
	repo := memory.New()
	ctx := context.Background()

	teams := []*model.Team{
		{ID: "platform", Name: "Platform"},
		{ID: "mobile", Name: "Mobile"},
	}
	for _, team := range teams {
		gt.NoError(t, repo.Directory().PutTeam(ctx, team)).Required()
	}

	employees := []*model.Employee{
		{ID: "ada", Name: "Ada", Email: "ada@example.com", Role: types.RoleAdmin, TeamID: "platform", Active: true},
		{ID: "mira", Name: "Mira", Email: "mira@example.com", Role: types.RoleManager, TeamID: "platform", Active: true},
		{ID: "nomad", Name: "Nomad", Email: "nomad@example.com", Role: types.RoleManager, TeamID: "mobile", Active: true},
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: types.RoleTeamMember, TeamID: "platform", Active: true},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: types.RoleTeamMember, TeamID: "platform", Active: true},
		{ID: "carol", Name: "Carol", Email: "carol@example.com", Role: types.RoleTeamMember, TeamID: "mobile", Active: true},
		{ID: "ivan", Name: "Ivan", Email: "ivan@example.com", Role: types.RoleTeamMember, TeamID: "platform", Active: false},
	}
	for _, e := range employees {
		gt.NoError(t, repo.Directory().PutEmployee(ctx, e)).Required()
	}
	gt.NoError(t, repo.Directory().SetManagedTeams(ctx, "mira", []types.TeamID{"platform"})).Required()

	uc := usecase.New(repo, usecase.WithOrgConfig(testOrgConfig()))
	return uc, repo
}

func testOrgConfig() *model.OrgConfig {
	return &model.OrgConfig{
		Policies: []model.AbsencePolicy{
			{Type: "vacation", Name: "Vacation", AnnualDays: 3},
			{Type: "sick", Name: "Sick leave", AnnualDays: 0},
		},
	}
}

func scopeOf(t *testing.T, uc *usecase.UseCases, userID types.EmployeeID) *usecase.RoleScope {
	t.Helper()
	scope, err := uc.ResolveScope(context.Background(), userID)
	gt.NoError(t, err).Required()
	return scope
}

func place(employeeID types.EmployeeID, taskID types.TaskID, date types.Date, slot types.Slot) *model.Placement {
	return &model.Placement{
		EmployeeID: employeeID,
		TaskID:     taskID,
		Date:       date,
		Slot:       slot,
	}
}
