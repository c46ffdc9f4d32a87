package api

import (
	"net/http"

	"github.com/okian/enroll/pkg/logger"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	rep           responder
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, l logger.Logger) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, rep: newResponder(l)}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.rep.fail(w, r, ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
