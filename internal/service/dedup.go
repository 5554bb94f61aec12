package service

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/metrics"
	"mail-beacon-go/internal/model"
)

// Clock abstracts time reads so the session-lock window is
// deterministically testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// Non-human user agent signatures, matched case-insensitively as
// substrings: generic crawler tokens plus the image proxies mail
// providers fetch through.
var botSignatures = []string{
	"bot",
	"crawler",
	"spider",
	"slurp",
	"curl",
	"wget",
	"python-requests",
	"googleimageproxy",
	"ggpht.com",
	"yahoocachesystem",
	"bingpreview",
	"facebookexternalhit",
}

// Outcome classifies one pixel fetch.
type Outcome int

const (
	// OutcomeAccepted means the fetch was counted as a genuine open.
	OutcomeAccepted Outcome = iota
	// OutcomeUnknownMessage means no tracked message matched the id.
	OutcomeUnknownMessage
	// OutcomeBot means the user agent matched a non-human signature.
	OutcomeBot
	// OutcomeSenderView means the fetch came from the sender's own session.
	OutcomeSenderView
	// OutcomeDuplicate means the session lock suppressed a repeat load.
	OutcomeDuplicate
	// OutcomeStoreError means storage failed and the event was dropped.
	OutcomeStoreError
)

// String returns a log-friendly name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeUnknownMessage:
		return "unknown_message"
	case OutcomeBot:
		return "bot"
	case OutcomeSenderView:
		return "sender_view"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeStoreError:
		return "store_error"
	}
	return "unknown"
}

// OpenRequest is one pixel fetch as seen by the deduplicator.
// SenderToken carries the trusted session marker issued at
// registration, when the fetching client presented one.
type OpenRequest struct {
	MessageID   string
	IP          string
	UserAgent   string
	SenderToken string
}

const lockStripes = 64

// OpenRecorder decides whether a pixel fetch counts as a new open.
// Rejection never mutates state and is final for that fetch; the
// pixel response is identical either way.
type OpenRecorder struct {
	store   MessageStore
	clock   Clock
	window  time.Duration
	grace   time.Duration
	metrics *metrics.Metrics

	// Striped by message id so the load-compare-append sequence is
	// serialized per message.
	locks [lockStripes]sync.Mutex
}

// NewOpenRecorder creates the open-event deduplicator. window is the
// duplicate-session suppression window, grace is how long after
// registration the sender token keeps suppressing self-views.
func NewOpenRecorder(store MessageStore, clock Clock, window, grace time.Duration, m *metrics.Metrics) *OpenRecorder {
	if clock == nil {
		clock = SystemClock()
	}
	return &OpenRecorder{
		store:   store,
		clock:   clock,
		window:  window,
		grace:   grace,
		metrics: m,
	}
}

// Record runs the full filter chain for one fetch and, when the
// fetch survives, appends the event and advances the message's open
// state.
func (r *OpenRecorder) Record(req OpenRequest) (Outcome, error) {
	if isBotAgent(req.UserAgent) {
		r.count(OutcomeBot)
		return OutcomeBot, nil
	}

	lock := &r.locks[stripeFor(req.MessageID)]
	lock.Lock()
	defer lock.Unlock()

	msg, err := r.store.FindByID(req.MessageID)
	if err != nil {
		r.count(OutcomeStoreError)
		return OutcomeStoreError, fmt.Errorf("failed to load message: %w", err)
	}
	if msg == nil {
		r.count(OutcomeUnknownMessage)
		return OutcomeUnknownMessage, nil
	}

	now := r.clock.Now()

	if r.isSenderView(msg, req.SenderToken, now) {
		// The sender's own client auto-loads remote images when
		// re-reading the sent copy; counting that would be a false
		// positive.
		r.count(OutcomeSenderView)
		return OutcomeSenderView, nil
	}

	last, err := r.store.LastOpenEvent(msg.ID)
	if err != nil {
		r.count(OutcomeStoreError)
		return OutcomeStoreError, fmt.Errorf("failed to load last open event: %w", err)
	}
	if last != nil && last.IP == req.IP && now.Sub(last.OccurredAt) < r.window {
		// Same viewing session re-fetching the image.
		r.count(OutcomeDuplicate)
		return OutcomeDuplicate, nil
	}

	evt := &model.OpenEvent{
		IP:         req.IP,
		UserAgent:  req.UserAgent,
		OccurredAt: now,
	}
	if err := r.store.RecordOpen(msg.ID, evt); err != nil {
		r.count(OutcomeStoreError)
		return OutcomeStoreError, fmt.Errorf("failed to persist open event: %w", err)
	}

	r.count(OutcomeAccepted)
	logrus.Debugf("Recorded open for message %s from %s", msg.ID, req.IP)
	return OutcomeAccepted, nil
}

// isSenderView reports whether the fetch presented the short-lived
// trusted marker issued to the sender at registration.
func (r *OpenRecorder) isSenderView(msg *model.TrackedMessage, token string, now time.Time) bool {
	if token == "" || msg.SenderToken == "" || token != msg.SenderToken {
		return false
	}
	return now.Sub(msg.CreatedAt) < r.grace
}

func (r *OpenRecorder) count(o Outcome) {
	if r.metrics == nil {
		return
	}
	switch o {
	case OutcomeAccepted:
		r.metrics.OpensAccepted.Inc()
	case OutcomeUnknownMessage:
		r.metrics.OpensUnknown.Inc()
	case OutcomeBot:
		r.metrics.OpensRejectedBot.Inc()
	case OutcomeSenderView:
		r.metrics.OpensRejectedSelf.Inc()
	case OutcomeDuplicate:
		r.metrics.OpensRejectedDup.Inc()
	case OutcomeStoreError:
		r.metrics.OpensStoreErrors.Inc()
	}
}

func isBotAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}

func stripeFor(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32() % lockStripes
}
