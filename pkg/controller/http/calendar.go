package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/usecase"
)

// GET /api/calendar?anchor=2026-03-02&granularity=weekly
func calendarHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		anchor, err := types.ParseDate(r.URL.Query().Get("anchor"))
		if err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidDate, goerr.Wrap(err, "invalid anchor"))
			return
		}
		granularity, err := types.ParseGranularity(r.URL.Query().Get("granularity"))
		if err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid granularity"))
			return
		}

		view, err := uc.GetCalendarView(r.Context(), scopeFrom(r.Context()), anchor, granularity)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, toCalendarViewBody(view))
	}
}

// GET /api/capacity?start=2026-03-02&end=2026-03-06
func capacityHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := parseRange(w, r)
		if !ok {
			return
		}

		report, err := uc.GetCapacityReport(r.Context(), scopeFrom(r.Context()), start, end)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, capacityBody{
			StartDate:   report.StartDate,
			EndDate:     report.EndDate,
			Workloads:   report.Workloads,
			Utilization: report.Utilization,
		})
	}
}

// GET /api/availability/{employeeID}?start=...&end=...&intent=place_new
func availabilityHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := types.EmployeeID(chi.URLParam(r, "employeeID"))
		start, end, ok := parseRange(w, r)
		if !ok {
			return
		}
		intent, err := types.ParseAvailabilityIntent(r.URL.Query().Get("intent"))
		if err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid intent"))
			return
		}

		matrix, err := uc.GetAvailabilityMatrix(r.Context(), scopeFrom(r.Context()), employeeID, start, end, intent)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, availabilityBody{
			EmployeeID: matrix.EmployeeID,
			StartDate:  matrix.StartDate,
			EndDate:    matrix.EndDate,
			Intent:     matrix.Intent,
			Days:       matrix.Days,
		})
	}
}

// GET /api/occupancy?employee_id=...&date=...&slot=morning
func occupancyHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := types.EmployeeID(r.URL.Query().Get("employee_id"))
		date, err := types.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidDate, goerr.Wrap(err, "invalid date"))
			return
		}
		slot, err := types.ParseSlot(r.URL.Query().Get("slot"))
		if err != nil {
			respondError(w, r, http.StatusBadRequest, usecase.KindInvalidRequest, goerr.Wrap(err, "invalid slot"))
			return
		}

		occ, err := uc.Occupancy(r.Context(), scopeFrom(r.Context()), employeeID, date, slot)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, occupancyBody{
			Count:   occ.Count,
			TaskIDs: occ.TaskIDs,
		})
	}
}

func parseRange(w http.ResponseWriter, r *http.Request) (types.Date, types.Date, bool) {
	start, err := types.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, usecase.KindInvalidDate, goerr.Wrap(err, "invalid start"))
		return "", "", false
	}
	end, err := types.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, usecase.KindInvalidDate, goerr.Wrap(err, "invalid end"))
		return "", "", false
	}
	return start, end, true
}
