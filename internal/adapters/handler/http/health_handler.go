package http

import (
	"net/http"

	"github.com/vncsmyrnk/covervote/internal/resilience"
)

type ledgerStats interface {
	Len() int
}

type mirrorStatus interface {
	Backend() string
	BreakerState() resilience.State
}

type HealthHandler struct {
	voters int
	ledger ledgerStats
	mirror mirrorStatus
}

func NewHealthHandler(voters int, ledger ledgerStats, mirror mirrorStatus) *HealthHandler {
	return &HealthHandler{voters: voters, ledger: ledger, mirror: mirror}
}

type healthResponse struct {
	Status        string `json:"status"`
	Voters        int    `json:"voters"`
	Votes         int    `json:"votes"`
	Mirror        string `json:"mirror"`
	MirrorBreaker string `json:"mirrorBreaker"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Voters:        h.voters,
		Votes:         h.ledger.Len(),
		Mirror:        h.mirror.Backend(),
		MirrorBreaker: h.mirror.BreakerState().String(),
	})
}
