package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mail-beacon-go/internal/model"
)

// fakeMessageStore implements MessageStore in memory.
type fakeMessageStore struct {
	mu       sync.Mutex
	messages map[string]*model.TrackedMessage
	events   map[string][]model.OpenEvent
	failAll  bool
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{
		messages: make(map[string]*model.TrackedMessage),
		events:   make(map[string][]model.OpenEvent),
	}
}

func (s *fakeMessageStore) add(msg model.TrackedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := msg
	s.messages[m.ID] = &m
}

func (s *fakeMessageStore) get(id string) model.TrackedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.messages[id]
}

func (s *fakeMessageStore) eventCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events[id])
}

func (s *fakeMessageStore) Create(msg *model.TrackedMessage) error {
	if s.failAll {
		return fmt.Errorf("store down")
	}
	s.add(*msg)
	return nil
}

func (s *fakeMessageStore) FindByID(id string) (*model.TrackedMessage, error) {
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	copied := *msg
	return &copied, nil
}

func (s *fakeMessageStore) FindFamily(rootID string) ([]model.TrackedMessage, error) {
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var family []model.TrackedMessage
	for _, msg := range s.messages {
		if msg.ID == rootID || (msg.ParentID != nil && *msg.ParentID == rootID) {
			family = append(family, *msg)
		}
	}
	sort.Slice(family, func(i, j int) bool {
		return family[i].CreatedAt.Before(family[j].CreatedAt)
	})
	return family, nil
}

func (s *fakeMessageStore) FindBySubjectSuffix(canonical string) ([]model.TrackedMessage, error) {
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var candidates []model.TrackedMessage
	for _, msg := range s.messages {
		if strings.HasSuffix(strings.ToLower(msg.Subject), strings.ToLower(canonical)) {
			candidates = append(candidates, *msg)
		}
	}
	return candidates, nil
}

func (s *fakeMessageStore) LastOpenEvent(id string) (*model.OpenEvent, error) {
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evts := s.events[id]
	if len(evts) == 0 {
		return nil, nil
	}
	last := evts[len(evts)-1]
	return &last, nil
}

func (s *fakeMessageStore) RecordOpen(id string, evt *model.OpenEvent) error {
	if s.failAll {
		return fmt.Errorf("store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return fmt.Errorf("unknown message %s", id)
	}
	evt.MessageID = id
	s.events[id] = append(s.events[id], *evt)
	msg.OpenCount++
	msg.Opened = true
	occurred := evt.OccurredAt
	msg.LastOpenedAt = &occurred
	return nil
}

// fakeAdStore implements AdStore in memory with the same capped
// increment semantics the SQL store guarantees.
type fakeAdStore struct {
	mu  sync.Mutex
	ads map[uint]*model.Ad
}

func newFakeAdStore(ads ...model.Ad) *fakeAdStore {
	s := &fakeAdStore{ads: make(map[uint]*model.Ad)}
	for _, ad := range ads {
		a := ad
		s.ads[a.ID] = &a
	}
	return s
}

func (s *fakeAdStore) views(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ads[id].CurrentViews
}

func (s *fakeAdStore) ListEligible() ([]model.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var eligible []model.Ad
	for _, ad := range s.ads {
		if ad.Active && !ad.IsFallback() && ad.CurrentViews < ad.MaxViews {
			eligible = append(eligible, *ad)
		}
	}
	return eligible, nil
}

func (s *fakeAdStore) FindByClient(name string) (*model.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ad := range s.ads {
		if ad.ClientName == name {
			copied := *ad
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeAdStore) ChargeView(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ad, ok := s.ads[id]
	if !ok || !ad.Active || ad.CurrentViews >= ad.MaxViews {
		return false, nil
	}
	ad.CurrentViews++
	return true, nil
}

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
