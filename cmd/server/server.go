// cmd/server/server.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/api"
	"github.com/codr1/CabinDesk/internal/api/apiutil"
	bookingsapi "github.com/codr1/CabinDesk/internal/api/bookings"
	cabinsapi "github.com/codr1/CabinDesk/internal/api/cabins"
	dashboardapi "github.com/codr1/CabinDesk/internal/api/dashboard"
	"github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/config"
	"github.com/codr1/CabinDesk/internal/dashboard"
	"github.com/codr1/CabinDesk/internal/db"
	"github.com/codr1/CabinDesk/internal/email"
	"github.com/codr1/CabinDesk/internal/lifecycle"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/notify"
	"github.com/codr1/CabinDesk/internal/querycache"
	"github.com/codr1/CabinDesk/internal/ratelimit"
	"github.com/codr1/CabinDesk/internal/scheduler"
)

type application struct {
	cache      *querycache.Cache
	notifier   *email.GuestNotifier
	statusSync *scheduler.StatusSync
	limiter    *ratelimit.Limiter

	closeOnce sync.Once
}

// newApp builds the services and hands them to the HTTP handlers.
func newApp(ctx context.Context, cfg *config.Config, database *db.DB) (*application, error) {
	cacheLogger := log.Logger.With().Str("component", "querycache").Logger()
	cache := querycache.New(querycache.Options{
		TTL:          cfg.Bookings.CacheTTL,
		FetchTimeout: cfg.Bookings.FetchTimeout,
		Logger:       &cacheLogger,
	})
	location := cfg.Location()
	pricing := models.NewPricing(cfg.Bookings.BreakfastPrice)

	sinks := []notify.Sink{notify.LogSink{}}
	var notifier *email.GuestNotifier
	if cfg.Email.Enabled {
		client, err := email.NewSESClient(ctx, cfg.Email)
		if err != nil {
			cache.Close()
			return nil, fmt.Errorf("create SES client: %w", err)
		}
		emailLogger := log.Logger.With().Str("component", "email").Logger()
		notifier = email.NewGuestNotifier(client, cfg.App.Name, &emailLogger)
		sinks = append(sinks, notifier)
	}
	sink := notify.Multi(sinks...)

	bookingService := bookings.NewService(database.Queries, cache, bookings.Options{
		PageSize: cfg.Bookings.PageSize,
		Pricing:  pricing,
		Location: location,
		Sink:     sink,
	})
	controller := lifecycle.NewController(database.Queries, cache, pricing, sink)
	dashboardService := dashboard.NewService(bookingService, location)

	bookingsapi.InitHandlers(bookingService, controller)
	cabinsapi.InitHandlers(bookingService)
	dashboardapi.InitHandlers(dashboardService, cfg.Bookings.DefaultWindowDays)

	return &application{
		cache:    cache,
		notifier: notifier,
		limiter:  ratelimit.New(ratelimit.DefaultConfig()),
		statusSync: scheduler.NewStatusSync(database.Queries, cache, scheduler.StatusSyncOptions{
			Apply:    cfg.StatusSync.Apply,
			Location: location,
			Sink:     sink,
		}),
	}, nil
}

// close waits for background cache fetches and pending guest emails.
func (a *application) close() {
	a.closeOnce.Do(func() {
		a.limiter.Close()
		a.cache.Close()
		if a.notifier != nil {
			a.notifier.Wait()
		}
	})
}

func newServer(cfg *config.Config, limiter *ratelimit.Limiter) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithStaffAuth,
		api.WithAuth(api.AuthConfig{
			Secret:     cfg.App.SecretKey,
			Limiter:    limiter,
			TrustProxy: cfg.App.TrustProxy,
		}),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	// Register routes
	registerRoutes(router)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	bookingsapi.RegisterRoutes(mux)
	dashboardapi.RegisterRoutes(mux)
	cabinsapi.RegisterRoutes(mux)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_ = apiutil.WriteJSON(w, http.StatusNotFound, apiutil.ErrorResponse{Message: "Not Found"})
	})
}
