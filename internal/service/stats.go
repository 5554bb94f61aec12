package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/config"
	"mail-beacon-go/internal/metrics"
	"mail-beacon-go/internal/model"
)

// StatsSource provides the counts the refresher publishes as gauges.
type StatsSource interface {
	CountMessages() (total int64, opened int64, err error)
	CountActiveAds() (int64, error)
}

// StatsRefresher periodically recomputes the entity gauges. The
// tracking engine itself is request-driven; this job only keeps the
// dashboard numbers warm.
type StatsRefresher struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.StatsConfig
	source    StatsSource
	metrics   *metrics.Metrics
	isRunning bool
	mu        sync.RWMutex

	lastSnapshot model.StatsResponse
}

// NewStatsRefresher creates a gauge refresh job
func NewStatsRefresher(cfg *config.StatsConfig, source StatsSource, m *metrics.Metrics) *StatsRefresher {
	return &StatsRefresher{
		cron:    cron.New(cron.WithSeconds()),
		config:  cfg,
		source:  source,
		metrics: m,
	}
}

// Start starts the refresh job
func (s *StatsRefresher) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("stats refresher is already running")
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.config.IntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.refresh)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Stats refresher started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop stops the refresh job
func (s *StatsRefresher) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		logrus.Info("Stats refresher stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Stats refresher stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the refresh job is running
func (s *StatsRefresher) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunOnce refreshes the gauges immediately (for manual triggering)
func (s *StatsRefresher) RunOnce() error {
	s.refresh()
	return nil
}

// Snapshot returns the most recently computed counts.
func (s *StatsRefresher) Snapshot() model.StatsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSnapshot
}

func (s *StatsRefresher) refresh() {
	total, opened, err := s.source.CountMessages()
	if err != nil {
		logrus.Errorf("Failed to count tracked messages: %v", err)
		return
	}
	activeAds, err := s.source.CountActiveAds()
	if err != nil {
		logrus.Errorf("Failed to count active ads: %v", err)
		return
	}

	if s.metrics != nil {
		s.metrics.TrackedMessages.Set(float64(total))
		s.metrics.OpenedMessages.Set(float64(opened))
		s.metrics.ActiveAds.Set(float64(activeAds))
	}

	s.mu.Lock()
	s.lastSnapshot = model.StatsResponse{
		TrackedMessages: total,
		OpenedMessages:  opened,
		ActiveAds:       activeAds,
		RefreshedAt:     time.Now().UTC(),
	}
	s.mu.Unlock()

	logrus.Debugf("Stats refreshed: %d messages, %d opened, %d active ads", total, opened, activeAds)
}
