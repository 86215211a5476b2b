package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/secretsanta/internal/middleware"
	"github.com/questx-lab/secretsanta/migration"
	"github.com/questx-lab/secretsanta/pkg/prometheus"
	"github.com/questx-lab/secretsanta/pkg/router"
	"github.com/questx-lab/secretsanta/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

type HealthRequest struct{}

type HealthResponse struct {
	Status string `json:"status"`
}

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	s.loadRepos()
	s.loadPartyLocker()
	s.loadMailCaller()
	s.loadDomains()
	s.loadRouter()

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.startMetricServer(ctx)

	s.server = &http.Server{
		Addr:              s.configs.ApiServer.Address(),
		Handler:           s.router.Handler(s.configs.ApiServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("Cannot shutdown server: %v", err)
		}
	}()

	s.logger.Infof("Starting server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logger.Infof("Server stopped")
	return nil
}

func (s *srv) startMetricServer(ctx context.Context) {
	metricServer := &http.Server{
		Addr:              s.configs.MetricServer.Address(),
		Handler:           prometheus.NewHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		metricServer.Close()
	}()

	s.logger.Infof("Starting metric server on %s", metricServer.Addr)
	if err := metricServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Errorf("Metric server stopped: %v", err)
	}
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	router.GET(s.router, "/", func(context.Context, *HealthRequest) (*HealthResponse, error) {
		return &HealthResponse{Status: "ok"}, nil
	})

	// Party API
	{
		router.POST(s.router, "/api/party", s.partyDomain.Create)
		router.GET(s.router, "/api/party/{party_id}", s.partyDomain.Get)
		router.PATCH(s.router, "/api/party/{party_id}", s.partyDomain.Update)
		router.DELETE(s.router, "/api/party/{party_id}", s.partyDomain.Delete)
		router.POST(s.router, "/api/party/{party_id}/lock", s.partyDomain.Lock)
		router.POST(s.router, "/api/party/{party_id}/resend-all", s.partyDomain.ResendAllEmails)
		router.POST(s.router, "/api/party/{party_id}/resend-passcode", s.partyDomain.ResendPasscode)
	}

	// Participant API
	{
		router.GET(s.router, "/api/party/{party_id}/participants", s.participantDomain.GetList)
		router.POST(s.router, "/api/party/{party_id}/participants", s.participantDomain.Join)
		router.POST(s.router, "/api/party/{party_id}/participants/admin", s.participantDomain.GetAdminList)
		router.POST(s.router, "/api/party/{party_id}/participants/resend-mine", s.participantDomain.ResendMyMatch)
		router.PATCH(s.router, "/api/party/{party_id}/participants/{participant_id}", s.participantDomain.Update)
		router.DELETE(s.router, "/api/party/{party_id}/participants/{participant_id}", s.participantDomain.Remove)
	}
}
