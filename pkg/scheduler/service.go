package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/orb/pkg/observability"
	"github.com/ethpandaops/orb/pkg/orb"
	"github.com/ethpandaops/orb/pkg/publish"
)

var (
	// ErrRegistryRequired is returned by NewService without a registry
	ErrRegistryRequired = errors.New("orb registry is required")
	// ErrWarmupFailed is returned when one or more lookups of a warm-up failed
	ErrWarmupFailed = errors.New("cache warm-up failed")
)

// Option configures a Service
type Option func(*Service)

// WithPublisher announces the warmed events through p
func WithPublisher(p publish.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithElector only lets the elected replica publish
func WithElector(e LeaderElector) Option {
	return func(s *Service) {
		s.elector = e
	}
}

// WithClock replaces the clock warm-ups start from
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service runs cache warm-ups on a cron schedule
type Service struct {
	log      logrus.FieldLogger
	cfg      *Config
	registry *orb.Registry

	publisher publish.Publisher
	elector   LeaderElector
	now       func() time.Time

	cron *cron.Cron

	done chan struct{}
	wg   sync.WaitGroup
}

// NewService creates a new scheduler service
func NewService(log logrus.FieldLogger, cfg *Config, registry *orb.Registry, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if registry == nil {
		return nil, ErrRegistryRequired
	}

	s := &Service{
		log:      log.WithField("service", "scheduler"),
		cfg:      cfg,
		registry: registry,
		now:      time.Now,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start warms every cache once and then on the configured schedule
func (s *Service) Start(ctx context.Context) error {
	if s.elector != nil {
		if err := s.elector.Start(ctx); err != nil {
			return fmt.Errorf("failed to start leader election: %w", err)
		}
	}

	if _, err := s.cron.AddFunc(s.cfg.Warmup, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule warm-up: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tick(ctx)
	}()

	s.cron.Start()

	s.log.WithFields(logrus.Fields{
		"schedule":  s.cfg.Warmup,
		"observers": s.registry.Len(),
	}).Info("Scheduler service started")

	return nil
}

// Stop waits for a running warm-up and stops the schedule
func (s *Service) Stop() error {
	close(s.done)

	<-s.cron.Stop().Done()

	s.wg.Wait()

	if s.elector != nil {
		if err := s.elector.Stop(); err != nil {
			s.log.WithError(err).Warn("Failed to stop leader elector")
		}
	}

	s.log.Info("Scheduler service stopped successfully")

	return nil
}

func (s *Service) tick(ctx context.Context) {
	select {
	case <-s.done:
		return
	default:
	}

	if _, err := s.Warm(ctx); err != nil {
		s.log.WithError(err).Warn("Warm-up finished with errors")
	}
}

// Warm runs the configured cached lookups for every observer starting at now
// and returns the resolved events. Announcements are published when a
// publisher is set and this replica leads, or no elector is configured.
func (s *Service) Warm(ctx context.Context) ([]publish.Announcement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	events, err := s.cfg.events()
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()

	var (
		announcements []publish.Announcement
		failures      int
	)

	for _, o := range s.registry.All() {
		name := o.Observer().Name()
		log := s.log.WithField("observer", name)
		failed := false

		for _, event := range events {
			for _, offset := range s.offsetsFor(event) {
				next, err := o.Lookup(ctx, event, orb.Request{
					Cached:       true,
					DegreeOffset: offset,
					UseCenter:    s.cfg.UseCenter,
					At:           at,
				})
				if err != nil {
					if !errors.Is(err, orb.ErrNoEventFound) {
						failed = true
						failures++
					}

					log.WithError(err).WithField("event", event.String()).Debug("Warm-up lookup failed")

					continue
				}

				announcements = append(announcements, publish.Announcement{
					Observer:   name,
					Body:       o.Observer().Body().String(),
					Event:      eventName(event, offset),
					Time:       next,
					ComputedAt: at,
				})
			}
		}

		if failed {
			observability.RecordWarmup(name, "error")
		} else {
			observability.RecordWarmup(name, "success")
		}
	}

	s.log.WithFields(logrus.Fields{
		"events":   len(announcements),
		"failures": failures,
	}).Debug("Warmed event caches")

	if err := s.publish(ctx, announcements); err != nil {
		return announcements, err
	}

	if failures > 0 {
		return announcements, fmt.Errorf("%w: %d lookups", ErrWarmupFailed, failures)
	}

	return announcements, nil
}

func (s *Service) publish(ctx context.Context, announcements []publish.Announcement) error {
	if s.publisher == nil || len(announcements) == 0 {
		return nil
	}

	if s.elector != nil && !s.elector.IsLeader() {
		return nil
	}

	if err := s.publisher.Publish(ctx, announcements); err != nil {
		observability.RecordError("scheduler", "publish")
		return err
	}

	return nil
}

func (s *Service) offsetsFor(event orb.Event) []float64 {
	if event.Kind().HasHorizon() {
		return s.cfg.offsets()
	}

	return []float64{0}
}

// eventName tags rise and set with their degree offset when it is not the
// horizon, e.g. rise@-6
func eventName(event orb.Event, offset float64) string {
	if offset == 0 {
		return event.String()
	}

	return event.String() + "@" + strconv.FormatFloat(offset, 'f', -1, 64)
}
