package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const healthPingTimeout = 2 * time.Second

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          database.Database
	startupTime time.Time
}

func newHealthHandler(db database.Database, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
	}
}

// healthCheck reports whether the service and its database are up
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h healthHandler) healthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		resp := HealthResponse{
			Status:   "healthy",
			Database: "connected",
			Uptime:   time.Since(h.startupTime).Round(time.Second).String(),
		}
		status := http.StatusOK
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("database ping failed")
			resp.Status = "unhealthy"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
		h.responder.WriteJSONStatus(w, status, resp)
	}
}
