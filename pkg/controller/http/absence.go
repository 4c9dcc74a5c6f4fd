package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/usecase"
)

// POST /api/absences
func requestAbsenceHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		EmployeeID types.EmployeeID  `json:"employee_id"`
		Date       types.Date        `json:"date"`
		Span       types.AbsenceSpan `json:"span"`
		Type       types.AbsenceType `json:"type"`
		Reason     string            `json:"reason"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid request body"))
			return
		}

		created, err := uc.RequestAbsence(r.Context(), scopeFrom(r.Context()), &usecase.AbsenceRequest{
			EmployeeID: req.EmployeeID,
			Date:       req.Date,
			Span:       req.Span,
			Type:       req.Type,
			Reason:     req.Reason,
		})
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusCreated, toAbsenceBody(created))
	}
}

// GET /api/absences/{employeeID}?start=...&end=...
func listAbsencesHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Absences []absenceBody `json:"absences"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := types.EmployeeID(chi.URLParam(r, "employeeID"))
		start, end, ok := parseRange(w, r)
		if !ok {
			return
		}

		records, err := uc.ListAbsences(r.Context(), scopeFrom(r.Context()), employeeID, start, end)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}

		resp := response{Absences: make([]absenceBody, len(records))}
		for i, rec := range records {
			resp.Absences[i] = toAbsenceBody(rec)
		}
		respondJSON(w, r, http.StatusOK, resp)
	}
}

// POST /api/absences/{absenceID}/approve
func approveAbsenceHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.AbsenceID(chi.URLParam(r, "absenceID"))

		updated, err := uc.ApproveAbsence(r.Context(), scopeFrom(r.Context()), id)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, toAbsenceBody(updated))
	}
}

// POST /api/absences/{absenceID}/reject
func rejectAbsenceHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.AbsenceID(chi.URLParam(r, "absenceID"))

		updated, err := uc.RejectAbsence(r.Context(), scopeFrom(r.Context()), id)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, toAbsenceBody(updated))
	}
}
