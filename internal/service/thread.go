package service

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/model"
)

// MessageStore is the storage surface the correlation engine needs.
// Implemented by repository.Messages; tests use in-memory fakes.
type MessageStore interface {
	Create(msg *model.TrackedMessage) error
	FindByID(id string) (*model.TrackedMessage, error)
	FindFamily(rootID string) ([]model.TrackedMessage, error)
	FindBySubjectSuffix(canonical string) ([]model.TrackedMessage, error)
	LastOpenEvent(id string) (*model.OpenEvent, error)
	RecordOpen(id string, evt *model.OpenEvent) error
}

// Threads groups individually tracked messages into conversations
// and reduces a conversation into a read-status summary.
type Threads struct {
	store MessageStore
}

// NewThreads creates the thread correlation service
func NewThreads(store MessageStore) *Threads {
	return &Threads{store: store}
}

// Correlate assembles the ordered set of messages belonging to one
// conversation, seeded by an explicit message id, a subject, or both.
// The structural parent link is tried first; the subject+recipient
// heuristic is the fallback. An empty result means "no thread found"
// and is not an error.
func (t *Threads) Correlate(id, subject string) ([]model.TrackedMessage, error) {
	var seed *model.TrackedMessage

	if id != "" {
		var err error
		seed, err = t.store.FindByID(id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve seed message: %w", err)
		}
		if seed != nil {
			family, err := t.store.FindFamily(seed.RootID())
			if err != nil {
				return nil, fmt.Errorf("failed to correlate by parent link: %w", err)
			}
			if len(family) > 0 {
				return family, nil
			}
		}
	}

	// No structural link produced a family; fall back to the fuzzy
	// subject+recipient heuristic when a subject is available.
	if subject == "" && seed != nil {
		subject = seed.Subject
	}
	return t.correlateBySubject(seed, subject)
}

func (t *Threads) correlateBySubject(seed *model.TrackedMessage, subject string) ([]model.TrackedMessage, error) {
	matcher, err := NewSubjectMatcher(subject)
	if err != nil {
		return nil, err
	}
	if matcher == nil {
		return nil, nil
	}

	candidates, err := t.store.FindBySubjectSuffix(matcher.Canonical())
	if err != nil {
		return nil, fmt.Errorf("failed to load subject candidates: %w", err)
	}

	matched := candidates[:0]
	for _, c := range candidates {
		if matcher.Matches(c.Subject) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	// Newest first, so the most recent candidate anchors the
	// recipient filter when no seed is known.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	reference := matched[0].Recipients
	if seed != nil {
		reference = seed.Recipients
	}

	var thread []model.TrackedMessage
	for _, c := range matched {
		if RecipientsOverlap(reference, c.Recipients) {
			thread = append(thread, c)
		}
	}

	sort.Slice(thread, func(i, j int) bool {
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})

	logrus.Debugf("Subject correlation matched %d of %d candidates", len(thread), len(candidates))
	return thread, nil
}

// Summarize reduces an ordered thread into the reporting view: a
// per-message breakdown, the total opens across the whole
// conversation, and a headline status taken from the latest message
// alone.
func (t *Threads) Summarize(thread []model.TrackedMessage) model.ThreadStatusResponse {
	if len(thread) == 0 {
		return model.ThreadStatusResponse{Found: false}
	}

	resp := model.ThreadStatusResponse{
		Found:     true,
		Breakdown: make([]model.ThreadEntry, 0, len(thread)),
	}

	for i, msg := range thread {
		resp.TotalThreadOpens += msg.OpenCount
		resp.Breakdown = append(resp.Breakdown, model.ThreadEntry{
			Position:   i + 1,
			MessageID:  msg.ID,
			CreatedAt:  msg.CreatedAt,
			OpenCount:  msg.OpenCount,
			IsReply:    (msg.ParentID != nil && *msg.ParentID != "") || i > 0,
			LastReadAt: msg.LastOpenedAt,
		})
	}

	latest := thread[len(thread)-1]
	resp.Opened = latest.Opened
	resp.OpenCount = latest.OpenCount
	return resp
}

// Status correlates and summarizes in one call.
func (t *Threads) Status(id, subject string) (model.ThreadStatusResponse, error) {
	thread, err := t.Correlate(id, subject)
	if err != nil {
		return model.ThreadStatusResponse{}, err
	}
	return t.Summarize(thread), nil
}
