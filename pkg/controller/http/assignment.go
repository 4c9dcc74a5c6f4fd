package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/usecase"
)

type placementRequest struct {
	EmployeeID types.EmployeeID `json:"employee_id"`
	TaskID     types.TaskID     `json:"task_id"`
	Date       types.Date       `json:"date"`
	Slot       types.Slot       `json:"slot"`
	Notes      string           `json:"notes"`
}

func (p *placementRequest) toPlacement() *model.Placement {
	return &model.Placement{
		EmployeeID: p.EmployeeID,
		TaskID:     p.TaskID,
		Date:       p.Date,
		Slot:       p.Slot,
		Notes:      p.Notes,
	}
}

// POST /api/assignments
func createAssignmentHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req placementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid request body"))
			return
		}

		created, err := uc.CreateAssignment(r.Context(), scopeFrom(r.Context()), req.toPlacement())
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusCreated, toAssignmentBody(created))
	}
}

// POST /api/assignments/bulk
func bulkCreateHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Placements []placementRequest `json:"placements"`
	}
	type response struct {
		Assignments []assignmentBody `json:"assignments"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid request body"))
			return
		}

		placements := make([]*model.Placement, len(req.Placements))
		for i := range req.Placements {
			placements[i] = req.Placements[i].toPlacement()
		}

		created, err := uc.BulkCreateAssignments(r.Context(), scopeFrom(r.Context()), placements)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}

		resp := response{Assignments: make([]assignmentBody, len(created))}
		for i, a := range created {
			resp.Assignments[i] = toAssignmentBody(a)
		}
		respondJSON(w, r, http.StatusCreated, resp)
	}
}

// POST /api/assignments/{assignmentID}/move
func moveAssignmentHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		EmployeeID types.EmployeeID `json:"employee_id"`
		Date       types.Date       `json:"date"`
		Slot       types.Slot       `json:"slot"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid request body"))
			return
		}

		moved, err := uc.MoveAssignment(r.Context(), scopeFrom(r.Context()), id, req.EmployeeID, req.Date, req.Slot)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, toAssignmentBody(moved))
	}
}

// DELETE /api/assignments/{assignmentID}
func removeAssignmentHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

		if err := uc.RemoveAssignment(r.Context(), scopeFrom(r.Context()), id); err != nil {
			respondEngineError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/assignments/validate?employee_id=...&date=...&slot=morning
func validatePlacementHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := types.EmployeeID(r.URL.Query().Get("employee_id"))
		date := types.Date(r.URL.Query().Get("date"))
		slot, err := types.ParseSlot(r.URL.Query().Get("slot"))
		if err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid slot"))
			return
		}

		check, err := uc.ValidatePlacement(r.Context(), scopeFrom(r.Context()), employeeID, date, slot)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, check)
	}
}
