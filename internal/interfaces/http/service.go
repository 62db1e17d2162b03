package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	interfaces "github.com/bushboy/bookingswap-sub023/internal/interfaces"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

type ServiceOpts struct {
	Port          int
	SettlementSvc SettlementService
	SweeperSvc    SweeperService
	// Subscriptions is nil unless the webhook notifier is enabled.
	Subscriptions ports.SubscriptionManager
	JWTSecret     string
	NoAuth        bool
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if o.SettlementSvc == nil {
		return fmt.Errorf("missing settlement service")
	}
	if o.SweeperSvc == nil {
		return fmt.Errorf("missing sweeper service")
	}
	if !o.NoAuth && len(o.JWTSecret) <= 0 {
		return fmt.Errorf("missing jwt secret")
	}
	return nil
}

type service struct {
	server *http.Server
}

// NewService returns the HTTP interface of the daemon.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %w", err)
	}
	return &service{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *service) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http interface stopped unexpectedly")
		}
	}()
	log.Infof("http interface listening on %s", s.server.Addr)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
	}
	log.Debug("http interface stopped")
}

// NewRouter returns the handler of all the HTTP routes.
func NewRouter(opts ServiceOpts) http.Handler {
	h := &handler{
		settlementSvc: opts.SettlementSvc,
		sweeperSvc:    opts.SweeperSvc,
		subscriptions: opts.Subscriptions,
	}
	auth := authenticator{[]byte(opts.JWTSecret), opts.NoAuth}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(api chi.Router) {
		api.Get("/sweeper/status", h.sweeperStatus)

		api.Group(func(protected chi.Router) {
			protected.Use(auth.middleware)

			protected.Post("/swaps", h.listSwap)
			protected.Get("/swaps/{id}", h.getSwap)
			protected.Post("/swaps/{id}/proposals", h.submitProposal)
			protected.Post("/swaps/{id}/cancel", h.cancel)
			protected.Post("/swaps/{id}/reject-expired", h.rejectExpired)
			protected.Post("/proposals/{id}/accept", h.accept)
			protected.Post("/proposals/{id}/reject", h.reject)
			protected.Post("/proposals/{id}/withdraw", h.withdraw)

			protected.Get("/webhooks", h.listSubscriptions)
			protected.Post("/webhooks", h.subscribe)
			protected.Delete("/webhooks/{id}", h.unsubscribe)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"request":  chimw.GetReqID(r.Context()),
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debugf("%s %s", r.Method, r.URL.Path)
	})
}
