// internal/api/dashboard/handlers.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/api/apiutil"
	"github.com/codr1/CabinDesk/internal/dashboard"
)

const (
	dashboardQueryTimeout = 5 * time.Second
	windowQueryKey        = "last"
)

var (
	service       *dashboard.Service
	defaultWindow = 7
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *dashboard.Service, windowDays int) {
	if svc == nil {
		log.Warn().Msg("InitHandlers called with nil dashboard service; dashboard handlers will be unavailable")
	}
	service = svc
	if windowDays > 0 {
		defaultWindow = windowDays
	}
}

func RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/dashboard", HandleDashboard)
}

// HandleDashboard serves GET /api/v1/dashboard?last=7|30|90.
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Dashboard service not initialized")
		_ = apiutil.WriteJSON(w, http.StatusInternalServerError, apiutil.ErrorResponse{Message: "Internal Server Error"})
		return
	}

	numDays, err := dashboard.ParseWindow(r.URL.Query().Get(windowQueryKey), defaultWindow)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardQueryTimeout)
	defer cancel()

	result, err := service.Build(ctx, numDays)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write dashboard response")
	}
}
