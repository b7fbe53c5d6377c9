package http

import (
	"net/http"

	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

type ResultsHandler struct {
	service ports.ResultsService
}

func NewResultsHandler(service ports.ResultsService) *ResultsHandler {
	return &ResultsHandler{service: service}
}

// Results godoc
// @Summary      Current tally
// @Description  Totals per option together with every recorded vote in commit order.
// @Tags         results
// @Produce      json
// @Success      200  {object}  ports.Results
// @Failure      401  {object}  errorResponse
// @Router       /api/results [get]
func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Results(r.Context()))
}
