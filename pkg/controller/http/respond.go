package http

import (
	"encoding/json"
	"net/http"

	"github.com/slotline-io/slotline/pkg/usecase"
	"github.com/slotline-io/slotline/pkg/utils/errutil"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func respondError(w http.ResponseWriter, r *http.Request, status int, kind string, err error) {
	errutil.Handle(r.Context(), err, "request failed") //nolint:errcheck // logged, then rendered
	respondJSON(w, r, status, errorResponse{Error: errorBody{
		Kind:    kind,
		Message: err.Error(),
	}})
}

// respondEngineError maps an engine error to an HTTP status by its kind.
// Business rule violations are conflicts, not server errors.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	kind := usecase.KindOf(err)
	status := http.StatusBadRequest
	switch kind {
	case usecase.KindCapacityExceeded,
		usecase.KindAbsenceConflict,
		usecase.KindAllowanceExceeded,
		usecase.KindEmployeeInactive:
		status = http.StatusConflict
	case usecase.KindNotFound:
		status = http.StatusNotFound
	case usecase.KindForbidden:
		status = http.StatusForbidden
	case usecase.KindEngineUnavailable:
		status = http.StatusServiceUnavailable
	}
	respondError(w, r, status, kind, err)
}
