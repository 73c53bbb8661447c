// internal/api/cabins/handlers.go
package cabins

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/api/apiutil"
	"github.com/codr1/CabinDesk/internal/bookings"
)

const cabinQueryTimeout = 5 * time.Second

var service *bookings.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *bookings.Service) {
	if svc == nil {
		log.Warn().Msg("InitHandlers called with nil booking service; cabin handlers will be unavailable")
	}
	service = svc
}

func RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/cabins", HandleListCabins)
}

type cabinsResponse struct {
	Cabins []cabinResponse `json:"cabins"`
	Count  int             `json:"count"`
}

type cabinResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	MaxCapacity  int    `json:"maxCapacity"`
	RegularPrice int64  `json:"regularPrice"`
	Discount     int64  `json:"discount"`
	NightlyPrice int64  `json:"nightlyPrice"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
}

// HandleListCabins serves GET /api/v1/cabins.
func HandleListCabins(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Booking service not initialized")
		_ = apiutil.WriteJSON(w, http.StatusInternalServerError, apiutil.ErrorResponse{Message: "Internal Server Error"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cabinQueryTimeout)
	defer cancel()

	cabins, err := service.Cabins(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	resp := cabinsResponse{Cabins: make([]cabinResponse, 0, len(cabins)), Count: len(cabins)}
	for _, c := range cabins {
		resp.Cabins = append(resp.Cabins, cabinResponse{
			ID:           c.ID,
			Name:         c.Name,
			MaxCapacity:  c.MaxCapacity,
			RegularPrice: c.RegularPrice,
			Discount:     c.Discount,
			NightlyPrice: c.NightlyPrice(),
			Description:  c.Description,
			Image:        c.Image,
		})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write cabins response")
	}
}
