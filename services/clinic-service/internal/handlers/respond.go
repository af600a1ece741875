package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps the domain error kinds onto stable HTTP statuses so
// callers can branch without parsing messages. Anything unrecognized is
// a store failure.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "invalid_input"})
	case errors.Is(err, model.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "invalid_status"})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: "not_found"})
	case errors.Is(err, model.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Kind: "conflict"})
	default:
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: model.ErrUnavailable.Error(), Kind: "store_unavailable"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "invalid_input"})
}

// decodeStrict decodes a JSON request body rejecting unknown keys, so a
// misspelled field fails loudly instead of being dropped.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %v", err)
	}
	return nil
}
