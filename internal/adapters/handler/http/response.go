package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

const maxBodyBytes = 1 << 16

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads at most maxBodyBytes of r's body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps service errors to a status and a fixed message.
// Internal error text never reaches the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrStudentNotFound):
		writeError(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, domain.ErrAlreadyVoted):
		writeError(w, http.StatusBadRequest, "Student has already voted")
	case errors.Is(err, domain.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, "Invalid book cover")
	case errors.Is(err, domain.ErrInvalidVote):
		writeError(w, http.StatusBadRequest, "Invalid vote")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
