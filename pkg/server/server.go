package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	//nolint:gosec // only exposed if pprofAddr config is set
	_ "net/http/pprof"

	r "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ethpandaops/orb/pkg/api"
	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observability"
	"github.com/ethpandaops/orb/pkg/orb"
	"github.com/ethpandaops/orb/pkg/publish"
	"github.com/ethpandaops/orb/pkg/redis"
	"github.com/ethpandaops/orb/pkg/scheduler"
)

// Server represents the main application server
type Server struct {
	log    logrus.FieldLogger
	config *Config

	registry  *orb.Registry
	api       api.Service
	scheduler *scheduler.Service
	redis     *r.Client

	pprofServer  *http.Server
	healthServer *http.Server
}

// NewServer creates a new server instance
func NewServer(_ context.Context, log logrus.FieldLogger, config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	registry, err := buildRegistry(log, config)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   config,
		log:      log,
		registry: registry,
		api:      api.NewService(&config.API, registry, log),
	}

	var opts []scheduler.Option

	if config.Redis != nil {
		client, err := redis.New(config.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}

		s.redis = client

		publisher, err := publish.NewRedis(client, config.Redis, log)
		if err != nil {
			return nil, err
		}

		elector := scheduler.NewLeaderElector(
			log,
			client,
			config.Redis.PrefixKey("scheduler", "leader"),
			config.Scheduler.LeaseTTL,
			config.Scheduler.RenewInterval,
		)

		opts = append(opts, scheduler.WithPublisher(publisher), scheduler.WithElector(elector))
	}

	if config.Scheduler.Enabled {
		s.scheduler, err = scheduler.NewService(log, &config.Scheduler, registry, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
	}

	return s, nil
}

// buildRegistry creates one orb per configured observer, sharing a single
// Meeus oracle
func buildRegistry(log logrus.FieldLogger, config *Config) (*orb.Registry, error) {
	meeus := config.Ephemeris.Build(log)

	orbs := make([]*orb.Orb, 0, len(config.Observers))

	for i := range config.Observers {
		obs, err := config.Observers[i].Build()
		if err != nil {
			return nil, err
		}

		o, err := orb.New(obs, ephemeris.WithMetrics(meeus, obs.Name()), config.Cache, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create orb %s: %w", obs.Name(), err)
		}

		orbs = append(orbs, o)
	}

	return orb.NewRegistry(orbs...)
}

// Registry returns the orbs served by the server
func (s *Server) Registry() *orb.Registry {
	return s.registry
}

// Start starts the server and all its components
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	s.log.WithFields(logrus.Fields{
		"observers":     s.registry.Names(),
		"has_redis":     s.redis != nil,
		"has_api":       s.config.API.Enabled,
		"has_scheduler": s.scheduler != nil,
	}).Debug("Server component states")

	g.Go(func() error {
		defer func() {
			if recovered := recover(); recovered != nil {
				s.log.WithField("panic", recovered).Error("Panic in metrics server goroutine")
			}
		}()
		observability.StartMetricsServer(ctx, s.config.MetricsAddr)
		<-ctx.Done()

		return nil
	})

	if s.config.PProfAddr != nil {
		s.pprofServer = &http.Server{
			Addr:              *s.config.PProfAddr,
			ReadHeaderTimeout: 120 * time.Second,
		}

		g.Go(func() error {
			s.log.WithField("addr", *s.config.PProfAddr).Info("Starting pprof server")

			if err := s.pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})
	}

	if s.config.HealthCheckAddr != nil {
		s.healthServer = &http.Server{
			Addr:              *s.config.HealthCheckAddr,
			ReadHeaderTimeout: 120 * time.Second,
			Handler:           s.healthHandler(),
		}

		g.Go(func() error {
			s.log.WithField("addr", *s.config.HealthCheckAddr).Info("Starting healthcheck server")

			if err := s.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})
	}

	if err := s.api.Start(ctx); err != nil {
		return fmt.Errorf("failed to start api: %w", err)
	}

	if s.scheduler != nil {
		if err := s.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// Wait for shutdown signal
	g.Go(func() error {
		<-ctx.Done()

		// Use a fresh context for cleanup since the current one is canceled
		return s.stop(context.Background())
	})

	return g.Wait()
}

func (s *Server) healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if s.registry.Len() == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	})
}

func (s *Server) stop(ctx context.Context) error {
	cleanupCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.log.Info("Starting graceful shutdown...")

	if s.scheduler != nil {
		if err := s.scheduler.Stop(); err != nil {
			s.log.WithError(err).Error("failed to stop scheduler")
		}
	}

	if err := s.api.Stop(); err != nil {
		s.log.WithError(err).Error("failed to stop API server")
	}

	if s.redis != nil {
		s.log.Info("Closing Redis connection...")

		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Error("failed to close redis")
		}
	}

	if s.pprofServer != nil {
		if err := s.pprofServer.Shutdown(cleanupCtx); err != nil {
			s.log.WithError(err).Error("failed to shutdown pprof server")
		}
	}

	if s.healthServer != nil {
		if err := s.healthServer.Shutdown(cleanupCtx); err != nil {
			s.log.WithError(err).Error("failed to shutdown health server")
		}
	}

	if err := observability.StopMetricsServer(cleanupCtx); err != nil {
		s.log.WithError(err).Error("failed to stop metrics server")
	}

	s.log.Info("Server stopped gracefully")

	return nil
}
