package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

// GetStudent godoc
// @Summary      Looks up an eligible student
// @Description  Returns the roster entry for the student id. Students who already voted are rejected.
// @Tags         students
// @Produce      json
// @Param        id   path      string  true  "Student id"
// @Success      200  {object}  domain.Voter
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/student/{id} [get]
func (h *VoteHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	voter, err := h.service.LookupStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voter)
}

type confirmRequest struct {
	Name string `json:"name"`
}

type confirmResponse struct {
	Confirmed bool `json:"confirmed"`
}

func (h *VoteHandler) ConfirmStudent(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.service.ConfirmStudent(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmResponse{Confirmed: ok})
}

type voteRequest struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Grade       string `json:"grade"`
	Room        string `json:"room"`
	BookCover   string `json:"bookCover"`
	Timestamp   string `json:"timestamp"`
}

type voteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CastVote godoc
// @Summary      Records a vote
// @Description  Records the student's single vote. The response does not wait for the mirror.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Success      200  {object}  voteResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/vote [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := ports.VoteInput{
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		Grade:       req.Grade,
		Room:        req.Room,
		Option:      req.BookCover,
		Timestamp:   req.Timestamp,
	}

	if _, err := h.service.Vote(r.Context(), input); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Success: true, Message: "Vote recorded successfully"})
}

type optionsResponse struct {
	Options []string `json:"options"`
}

func (h *VoteHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{Options: h.service.Options()})
}
