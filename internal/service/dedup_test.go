package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mail-beacon-go/internal/model"
)

const (
	testWindow = 5 * time.Minute
	testGrace  = 24 * time.Hour
)

func newTestRecorder(store *fakeMessageStore, clock Clock) *OpenRecorder {
	return NewOpenRecorder(store, clock, testWindow, testGrace, nil)
}

func TestRecordSessionLockWindow(t *testing.T) {
	store := newFakeMessageStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := newFakeClock(base)
	store.add(model.TrackedMessage{ID: "m1", Sender: "alice@x.com", CreatedAt: base.Add(-48 * time.Hour)})

	recorder := newTestRecorder(store, clock)
	req := OpenRequest{MessageID: "m1", IP: "1.2.3.4", UserAgent: "Mozilla/5.0"}

	outcome, err := recorder.Record(req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
	assert.Equal(t, 1, store.get("m1").OpenCount)

	// Same IP two minutes later: same viewing session.
	clock.Advance(2 * time.Minute)
	outcome, err = recorder.Record(req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Equal(t, 1, store.get("m1").OpenCount)

	// Past the window the same IP counts again.
	clock.Advance(400 * time.Second)
	outcome, err = recorder.Record(req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
	assert.Equal(t, 2, store.get("m1").OpenCount)
}

func TestRecordDifferentIPWithinWindow(t *testing.T) {
	store := newFakeMessageStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := newFakeClock(base)
	store.add(model.TrackedMessage{ID: "m1", Sender: "alice@x.com", CreatedAt: base.Add(-time.Hour)})

	recorder := newTestRecorder(store, clock)

	outcome, err := recorder.Record(OpenRequest{MessageID: "m1", IP: "1.2.3.4", UserAgent: "Mozilla/5.0"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)

	clock.Advance(time.Minute)
	outcome, err = recorder.Record(OpenRequest{MessageID: "m1", IP: "5.6.7.8", UserAgent: "Mozilla/5.0"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
	assert.Equal(t, 2, store.get("m1").OpenCount)
}

func TestRecordBotFilter(t *testing.T) {
	store := newFakeMessageStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.add(model.TrackedMessage{ID: "m1", Sender: "alice@x.com", CreatedAt: base})

	recorder := newTestRecorder(store, newFakeClock(base))

	agents := []string{
		"Mozilla/5.0 (compatible; Googlebot/2.1)",
		"SomeCrawler/1.0",
		"spider",
		"Mozilla/5.0 (Windows NT 5.1; rv:11.0) Gecko Firefox/11.0 (via ggpht.com GoogleImageProxy)",
		"curl/8.0.1",
	}
	for _, ua := range agents {
		outcome, err := recorder.Record(OpenRequest{MessageID: "m1", IP: "1.2.3.4", UserAgent: ua})
		require.NoError(t, err)
		assert.Equal(t, OutcomeBot, outcome, "agent %q", ua)
	}
	assert.Equal(t, 0, store.get("m1").OpenCount)
	assert.False(t, store.get("m1").Opened)
}

func TestRecordSenderSuppression(t *testing.T) {
	store := newFakeMessageStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := newFakeClock(base.Add(time.Hour))
	store.add(model.TrackedMessage{
		ID: "m1", Sender: "alice@x.com", SenderToken: "token-1", CreatedAt: base,
	})

	recorder := newTestRecorder(store, clock)

	// Matching token within the grace period: self-view.
	outcome, err := recorder.Record(OpenRequest{
		MessageID: "m1", IP: "1.2.3.4", UserAgent: "Mozilla/5.0", SenderToken: "token-1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSenderView, outcome)
	assert.Equal(t, 0, store.get("m1").OpenCount)

	// Wrong token is just a recipient.
	outcome, err = recorder.Record(OpenRequest{
		MessageID: "m1", IP: "1.2.3.4", UserAgent: "Mozilla/5.0", SenderToken: "other",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)

	// The marker expires with the grace period.
	clock.Advance(testGrace)
	outcome, err = recorder.Record(OpenRequest{
		MessageID: "m1", IP: "9.9.9.9", UserAgent: "Mozilla/5.0", SenderToken: "token-1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
}

func TestRecordUnknownMessage(t *testing.T) {
	recorder := newTestRecorder(newFakeMessageStore(), newFakeClock(time.Now()))

	outcome, err := recorder.Record(OpenRequest{MessageID: "nope", IP: "1.2.3.4", UserAgent: "Mozilla/5.0"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownMessage, outcome)
}

func TestRecordStoreFailure(t *testing.T) {
	store := newFakeMessageStore()
	store.failAll = true

	recorder := newTestRecorder(store, newFakeClock(time.Now()))

	outcome, err := recorder.Record(OpenRequest{MessageID: "m1", IP: "1.2.3.4", UserAgent: "Mozilla/5.0"})
	assert.Error(t, err)
	assert.Equal(t, OutcomeStoreError, outcome)
}

func TestRecordCountMatchesEvents(t *testing.T) {
	store := newFakeMessageStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := newFakeClock(base)
	store.add(model.TrackedMessage{ID: "m1", Sender: "alice@x.com", CreatedAt: base.Add(-time.Hour)})

	recorder := newTestRecorder(store, clock)

	ips := []string{"1.1.1.1", "2.2.2.2", "1.1.1.1", "3.3.3.3"}
	for _, ip := range ips {
		recorder.Record(OpenRequest{MessageID: "m1", IP: ip, UserAgent: "Mozilla/5.0"})
		clock.Advance(10 * time.Minute)
	}

	msg := store.get("m1")
	assert.Equal(t, store.eventCount("m1"), msg.OpenCount)
	assert.True(t, msg.Opened)
}

func TestRecordConcurrentSameSession(t *testing.T) {
	store := newFakeMessageStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.add(model.TrackedMessage{ID: "m1", Sender: "alice@x.com", CreatedAt: base.Add(-time.Hour)})

	recorder := newTestRecorder(store, newFakeClock(base))

	// Near-simultaneous fetches from the same IP: the per-message
	// lock must let exactly one through.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recorder.Record(OpenRequest{MessageID: "m1", IP: "1.2.3.4", UserAgent: "Mozilla/5.0"})
		}()
	}
	wg.Wait()

	msg := store.get("m1")
	assert.Equal(t, 1, msg.OpenCount)
	assert.Equal(t, store.eventCount("m1"), msg.OpenCount)
}
