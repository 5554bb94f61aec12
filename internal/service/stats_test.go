package service

import (
	"testing"

	"mail-beacon-go/internal/config"
)

// dummySource implements StatsSource with fixed counts
type dummySource struct{}

func (d *dummySource) CountMessages() (int64, int64, error) { return 3, 2, nil }
func (d *dummySource) CountActiveAds() (int64, error)       { return 1, nil }

func TestStatsRefresherRestart(t *testing.T) {
	cfg := &config.StatsConfig{IntervalMinutes: 60}
	refresher := NewStatsRefresher(cfg, &dummySource{}, nil)

	if err := refresher.Start(); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if !refresher.IsRunning() {
		t.Fatalf("refresher should be running after Start")
	}
	if err := refresher.Start(); err == nil {
		t.Fatalf("second start should fail while running")
	}
	if err := refresher.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if refresher.IsRunning() {
		t.Fatalf("refresher should not be running after Stop")
	}
}

func TestStatsRefresherRunOnce(t *testing.T) {
	cfg := &config.StatsConfig{IntervalMinutes: 60}
	refresher := NewStatsRefresher(cfg, &dummySource{}, nil)

	if err := refresher.RunOnce(); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	snap := refresher.Snapshot()
	if snap.TrackedMessages != 3 || snap.OpenedMessages != 2 || snap.ActiveAds != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.RefreshedAt.IsZero() {
		t.Fatalf("snapshot should carry a refresh timestamp")
	}
}
