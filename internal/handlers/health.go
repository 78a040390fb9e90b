package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/vire-folio/internal/common"
)

const pingTimeout = 2 * time.Second

// HealthHandler reports liveness plus whether the storage backend answers.
type HealthHandler struct {
	logger  *common.Logger
	backend string
	ping    func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. ping may be nil, in which case
// only liveness is reported.
func NewHealthHandler(logger *common.Logger, backend string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{logger: logger, backend: backend, ping: ping}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	body := map[string]string{"status": "ok"}
	if h.backend != "" {
		body["storage"] = h.backend
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			if h.logger != nil {
				h.logger.Warn().Err(err).Str("storage", h.backend).Msg("health ping failed")
			}
			body["status"] = "degraded"
			WriteJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}

	WriteJSON(w, http.StatusOK, body)
}
