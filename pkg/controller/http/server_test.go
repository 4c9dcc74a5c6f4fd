package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/slotline-io/slotline/pkg/controller/http"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/repository/memory"
	"github.com/slotline-io/slotline/pkg/usecase"
)

const testMonday = "2025-09-22"

// setupServer builds the API over a fresh in-memory store with a small
// directory: ada (admin), mira (manager of platform), alice and bob on
// platform, carol on mobile.
func setupServer(t *testing.T) http.Handler {
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
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: types.RoleTeamMember, TeamID: "platform", Active: true},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: types.RoleTeamMember, TeamID: "platform", Active: true},
		{ID: "carol", Name: "Carol", Email: "carol@example.com", Role: types.RoleTeamMember, TeamID: "mobile", Active: true},
	}
	for _, e := range employees {
		gt.NoError(t, repo.Directory().PutEmployee(ctx, e)).Required()
	}
	gt.NoError(t, repo.Directory().SetManagedTeams(ctx, "mira", []types.TeamID{"platform"})).Required()

	uc := usecase.New(repo, usecase.WithOrgConfig(&model.OrgConfig{
		Policies: []model.AbsencePolicy{
			{Type: "vacation", Name: "Vacation", AnnualDays: 3},
		},
	}))
	return httpctrl.New(uc)
}

// executeRequest sends a request through the handler as the given user
func executeRequest(t *testing.T, handler http.Handler, method, target, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(httpctrl.UserHeader, user)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type errorResponse struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseError(t *testing.T, rec *httptest.ResponseRecorder) *errorResponse {
	t.Helper()
	var resp errorResponse
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	return &resp
}

func placementBody(employeeID, taskID, date, slot string) map[string]any {
	return map[string]any{
		"employee_id": employeeID,
		"task_id":     taskID,
		"date":        date,
		"slot":        slot,
	}
}

func TestServer_Health(t *testing.T) {
	handler := setupServer(t)

	rec := executeRequest(t, handler, http.MethodGet, "/health", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestServer_Metrics(t *testing.T) {
	handler := setupServer(t)

	rec := executeRequest(t, handler, http.MethodGet, "/metrics", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestServer_Identity(t *testing.T) {
	handler := setupServer(t)

	t.Run("missing user header", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/calendar?anchor="+testMonday+"&granularity=weekly", "", nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/calendar?anchor="+testMonday+"&granularity=weekly", "stranger", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)

		resp := parseError(t, rec)
		gt.Value(t, resp.Error.Kind).Equal(usecase.KindNotFound)
	})
}

func TestServer_Assignments(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
			placementBody("alice", "task-a", testMonday, "morning"))
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var created struct {
			ID         string `json:"id"`
			EmployeeID string `json:"employee_id"`
			TaskID     string `json:"task_id"`
			Date       string `json:"date"`
			Slot       string `json:"slot"`
			SlotOrder  int    `json:"slot_order"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()
		gt.Value(t, created.EmployeeID).Equal("alice")
		gt.Value(t, created.Slot).Equal("morning")
		gt.Number(t, created.SlotOrder).Equal(0)
		gt.Value(t, created.ID).NotEqual("")
	})

	t.Run("capacity conflict surfaces as 409", func(t *testing.T) {
		handler := setupServer(t)

		for i := 0; i < types.MaxSlotOccupancy; i++ {
			rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
				placementBody("alice", "task-"+string(rune('a'+i)), testMonday, "morning"))
			gt.Value(t, rec.Code).Equal(http.StatusCreated)
		}

		rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
			placementBody("alice", "task-e", testMonday, "morning"))
		gt.Value(t, rec.Code).Equal(http.StatusConflict)

		resp := parseError(t, rec)
		gt.Value(t, resp.Error.Kind).Equal(usecase.KindCapacityExceeded)
	})

	t.Run("member cannot place for a peer", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "alice",
			placementBody("bob", "task-a", testMonday, "morning"))
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)

		resp := parseError(t, rec)
		gt.Value(t, resp.Error.Kind).Equal(usecase.KindForbidden)
	})

	t.Run("weekend placement is a 400", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
			placementBody("alice", "task-a", "2025-09-27", "morning"))
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

		resp := parseError(t, rec)
		gt.Value(t, resp.Error.Kind).Equal(usecase.KindInvalidDate)
	})

	t.Run("move and remove", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
			placementBody("alice", "task-a", testMonday, "morning"))
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var created struct {
			ID string `json:"id"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()

		rec = executeRequest(t, handler, http.MethodPost, "/api/assignments/"+created.ID+"/move", "ada",
			map[string]any{"employee_id": "alice", "date": testMonday, "slot": "afternoon"})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var moved struct {
			Slot string `json:"slot"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved)).Required()
		gt.Value(t, moved.Slot).Equal("afternoon")

		rec = executeRequest(t, handler, http.MethodDelete, "/api/assignments/"+created.ID, "ada", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)

		rec = executeRequest(t, handler, http.MethodDelete, "/api/assignments/"+created.ID, "ada", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("bulk rollback on conflict", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/assignments/bulk", "ada", map[string]any{
			"placements": []map[string]any{
				placementBody("alice", "task-a", testMonday, "morning"),
				placementBody("bob", "task-b", "2025-09-28", "morning"), // Sunday
			},
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

		// nothing committed
		rec = executeRequest(t, handler, http.MethodGet,
			"/api/occupancy?employee_id=alice&date="+testMonday+"&slot=morning", "ada", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var occ struct {
			Count int `json:"count"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &occ)).Required()
		gt.Number(t, occ.Count).Equal(0)
	})

	t.Run("validate placement dry run", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodGet,
			"/api/assignments/validate?employee_id=alice&date="+testMonday+"&slot=morning", "ada", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var check struct {
			OK     bool   `json:"ok"`
			Reason string `json:"reason"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check)).Required()
		gt.Bool(t, check.OK).True()
	})
}

func TestServer_Calendar(t *testing.T) {
	handler := setupServer(t)

	rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
		placementBody("alice", "task-a", testMonday, "morning"))
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	t.Run("manager view covers the managed team", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet,
			"/api/calendar?anchor="+testMonday+"&granularity=weekly", "mira", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var view struct {
			Granularity string `json:"granularity"`
			StartDate   string `json:"start_date"`
			EndDate     string `json:"end_date"`
			Employees   []struct {
				EmployeeID string `json:"employee_id"`
				TeamID     string `json:"team_id"`
				Days       []struct {
					Date  string `json:"date"`
					Slots map[string]struct {
						Assignments []struct {
							TaskID string `json:"task_id"`
						} `json:"assignments"`
						Remaining int `json:"remaining"`
					} `json:"slots"`
				} `json:"days"`
			} `json:"employees"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view)).Required()

		gt.Value(t, view.StartDate).Equal(testMonday)
		gt.Value(t, view.EndDate).Equal("2025-09-26")
		// platform actives: ada, alice, bob, mira
		gt.Array(t, view.Employees).Length(4)
		for _, row := range view.Employees {
			gt.Value(t, row.TeamID).Equal("platform")
			gt.Array(t, row.Days).Length(5)
		}
	})

	t.Run("invalid granularity is a 400", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet,
			"/api/calendar?anchor="+testMonday+"&granularity=hourly", "ada", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestServer_Capacity(t *testing.T) {
	handler := setupServer(t)

	rec := executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
		placementBody("alice", "task-a", testMonday, "morning"))
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = executeRequest(t, handler, http.MethodGet,
		"/api/capacity?start="+testMonday+"&end="+testMonday, "ada", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var report struct {
		Workloads   map[string]map[string]int `json:"workloads"`
		Utilization map[string]float64        `json:"utilization"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report)).Required()
	gt.Number(t, report.Workloads["alice"][testMonday]).Equal(1)
	// 1 assignment / (5 employees x 8 daily capacity)
	gt.Number(t, report.Utilization[testMonday]).Equal(2.5)
}

func TestServer_Availability(t *testing.T) {
	handler := setupServer(t)

	rec := executeRequest(t, handler, http.MethodGet,
		"/api/availability/alice?start="+testMonday+"&end="+testMonday+"&intent=place_new", "mira", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var matrix struct {
		EmployeeID string                     `json:"employee_id"`
		Days       map[string]map[string]bool `json:"days"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matrix)).Required()
	gt.Value(t, matrix.EmployeeID).Equal("alice")
	gt.Bool(t, matrix.Days[testMonday]["morning"]).True()
	gt.Bool(t, matrix.Days[testMonday]["afternoon"]).True()
}

func TestServer_Absences(t *testing.T) {
	t.Run("request, approve, conflict on blocked slot", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/absences", "alice", map[string]any{
			"employee_id": "alice",
			"date":        testMonday,
			"span":        "full_day",
			"type":        "vacation",
			"reason":      "family trip",
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var created struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()
		gt.Value(t, created.Status).Equal("pending")

		// the pending request already blocks placement
		rec = executeRequest(t, handler, http.MethodPost, "/api/assignments", "ada",
			placementBody("alice", "task-a", testMonday, "morning"))
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
		gt.Value(t, parseError(t, rec).Error.Kind).Equal(usecase.KindAbsenceConflict)

		rec = executeRequest(t, handler, http.MethodPost, "/api/absences/"+created.ID+"/approve", "mira", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var approved struct {
			Status string `json:"status"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &approved)).Required()
		gt.Value(t, approved.Status).Equal("approved")
	})

	t.Run("member cannot approve", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/absences", "alice", map[string]any{
			"employee_id": "alice",
			"date":        testMonday,
			"span":        "morning",
			"type":        "vacation",
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var created struct {
			ID string `json:"id"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()

		rec = executeRequest(t, handler, http.MethodPost, "/api/absences/"+created.ID+"/approve", "bob", nil)
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("allowance exhaustion is a 409", func(t *testing.T) {
		handler := setupServer(t)

		for _, d := range []string{"2025-09-22", "2025-09-23", "2025-09-24"} {
			rec := executeRequest(t, handler, http.MethodPost, "/api/absences", "alice", map[string]any{
				"employee_id": "alice",
				"date":        d,
				"span":        "full_day",
				"type":        "vacation",
			})
			gt.Value(t, rec.Code).Equal(http.StatusCreated)
		}

		rec := executeRequest(t, handler, http.MethodPost, "/api/absences", "alice", map[string]any{
			"employee_id": "alice",
			"date":        "2025-09-25",
			"span":        "full_day",
			"type":        "vacation",
		})
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
		gt.Value(t, parseError(t, rec).Error.Kind).Equal(usecase.KindAllowanceExceeded)
	})

	t.Run("reason redacted for other members", func(t *testing.T) {
		handler := setupServer(t)

		rec := executeRequest(t, handler, http.MethodPost, "/api/absences", "alice", map[string]any{
			"employee_id": "alice",
			"date":        testMonday,
			"span":        "full_day",
			"type":        "vacation",
			"reason":      "family trip",
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		// alice reads her own record with the reason intact
		rec = executeRequest(t, handler, http.MethodGet,
			"/api/absences/alice?start="+testMonday+"&end="+testMonday, "alice", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var listed struct {
			Absences []struct {
				Reason string `json:"reason"`
			} `json:"absences"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed)).Required()
		gt.Array(t, listed.Absences).Length(1)
		gt.Value(t, listed.Absences[0].Reason).Equal("family trip")

		// peers cannot read the record at all
		rec = executeRequest(t, handler, http.MethodGet,
			"/api/absences/alice?start="+testMonday+"&end="+testMonday, "bob", nil)
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})
}
