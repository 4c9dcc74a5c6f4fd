package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type directoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDirectoryRepository(client *firestore.Client) *directoryRepository {
	return &directoryRepository{client: client}
}

func (r *directoryRepository) employeesCollection() string {
	return prefixed(r.collectionPrefix, "employees")
}

func (r *directoryRepository) teamsCollection() string {
	return prefixed(r.collectionPrefix, "teams")
}

func (r *directoryRepository) managedTeamsCollection() string {
	return prefixed(r.collectionPrefix, "managed_teams")
}

// managedTeamsDoc is the persisted shape of a manager's team set
type managedTeamsDoc struct {
	TeamIDs []string
}

func (r *directoryRepository) GetEmployee(ctx context.Context, id types.EmployeeID) (*model.Employee, error) {
	docSnap, err := r.client.Collection(r.employeesCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get employee", goerr.V("id", id))
	}

	var e model.Employee
	if err := docSnap.DataTo(&e); err != nil {
		return nil, goerr.Wrap(err, "failed to decode employee", goerr.V("id", id))
	}

	return &e, nil
}

func (r *directoryRepository) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	iter := r.client.Collection(r.employeesCollection()).Documents(ctx)
	defer iter.Stop()

	result := []*model.Employee{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate employees")
		}

		var e model.Employee
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode employee", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *directoryRepository) ListTeamMembers(ctx context.Context, teamID types.TeamID) ([]*model.Employee, error) {
	iter := r.client.Collection(r.employeesCollection()).
		Where("TeamID", "==", string(teamID)).
		Documents(ctx)
	defer iter.Stop()

	result := []*model.Employee{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate team members", goerr.V("team_id", teamID))
		}

		var e model.Employee
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode employee", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *directoryRepository) GetTeam(ctx context.Context, id types.TeamID) (*model.Team, error) {
	docSnap, err := r.client.Collection(r.teamsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "team not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get team", goerr.V("id", id))
	}

	var t model.Team
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode team", goerr.V("id", id))
	}

	return &t, nil
}

func (r *directoryRepository) ListTeams(ctx context.Context) ([]*model.Team, error) {
	iter := r.client.Collection(r.teamsCollection()).Documents(ctx)
	defer iter.Stop()

	result := []*model.Team{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate teams")
		}

		var t model.Team
		if err := docSnap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode team", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *directoryRepository) GetManagedTeams(ctx context.Context, userID types.EmployeeID) ([]types.TeamID, error) {
	docSnap, err := r.client.Collection(r.managedTeamsCollection()).Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []types.TeamID{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get managed teams", goerr.V("user_id", userID))
	}

	var doc managedTeamsDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode managed teams", goerr.V("user_id", userID))
	}

	result := make([]types.TeamID, 0, len(doc.TeamIDs))
	for _, id := range doc.TeamIDs {
		result = append(result, types.TeamID(id))
	}
	return result, nil
}

func (r *directoryRepository) PutEmployee(ctx context.Context, e *model.Employee) error {
	_, err := r.client.Collection(r.employeesCollection()).Doc(string(e.ID)).Set(ctx, e)
	if err != nil {
		return goerr.Wrap(err, "failed to put employee", goerr.V("id", e.ID))
	}
	return nil
}

func (r *directoryRepository) PutTeam(ctx context.Context, t *model.Team) error {
	_, err := r.client.Collection(r.teamsCollection()).Doc(string(t.ID)).Set(ctx, t)
	if err != nil {
		return goerr.Wrap(err, "failed to put team", goerr.V("id", t.ID))
	}
	return nil
}

func (r *directoryRepository) SetManagedTeams(ctx context.Context, userID types.EmployeeID, teamIDs []types.TeamID) error {
	ids := make([]string, 0, len(teamIDs))
	for _, id := range teamIDs {
		ids = append(ids, string(id))
	}

	_, err := r.client.Collection(r.managedTeamsCollection()).Doc(string(userID)).Set(ctx, &managedTeamsDoc{TeamIDs: ids})
	if err != nil {
		return goerr.Wrap(err, "failed to set managed teams", goerr.V("user_id", userID))
	}
	return nil
}
