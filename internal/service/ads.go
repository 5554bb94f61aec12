package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/metrics"
	"mail-beacon-go/internal/model"
)

// AdStore is the storage surface the sponsor allocator needs.
// Implemented by repository.Ads; tests use in-memory fakes.
type AdStore interface {
	ListEligible() ([]model.Ad, error)
	FindByClient(name string) (*model.Ad, error)
	ChargeView(id uint) (bool, error)
}

// AdAllocator picks one sponsor slot per footer-render request,
// preferring paying clients under their view cap and falling back to
// the house ad.
type AdAllocator struct {
	store            AdStore
	metrics          *metrics.Metrics
	fallbackImageURL string

	mu   sync.Mutex
	rand *rand.Rand
}

// NewAdAllocator creates the sponsor rotation allocator
func NewAdAllocator(store AdStore, m *metrics.Metrics, fallbackImageURL string) *AdAllocator {
	return &AdAllocator{
		store:            store,
		metrics:          m,
		fallbackImageURL: fallbackImageURL,
		rand:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Serve selects and charges one placement. Selection is uniform over
// the eligible candidates; the charge is an atomic capped increment
// at the store, so a candidate that loses the race is dropped and
// another is drawn. The fallback is never charged and always
// available, so Serve only fails on storage errors.
func (a *AdAllocator) Serve() (model.AdPlacement, error) {
	candidates, err := a.store.ListEligible()
	if err != nil {
		return model.AdPlacement{}, fmt.Errorf("failed to list eligible ads: %w", err)
	}

	for len(candidates) > 0 {
		i := a.intn(len(candidates))
		pick := candidates[i]

		charged, err := a.store.ChargeView(pick.ID)
		if err != nil {
			return model.AdPlacement{}, fmt.Errorf("failed to charge ad %q: %w", pick.ClientName, err)
		}
		if charged {
			if a.metrics != nil {
				a.metrics.AdsServed.Inc()
			}
			return model.AdPlacement{ClientName: pick.ClientName, ImageURL: pick.ImageURL}, nil
		}

		// Lost the race to the cap; drop and redraw.
		candidates = append(candidates[:i], candidates[i+1:]...)
	}

	return a.fallback()
}

func (a *AdAllocator) fallback() (model.AdPlacement, error) {
	if a.metrics != nil {
		a.metrics.AdsServed.Inc()
		a.metrics.AdsFallback.Inc()
	}

	ad, err := a.store.FindByClient(model.FallbackClientName)
	if err != nil {
		logrus.Warnf("Failed to load fallback ad, using configured image: %v", err)
	}
	if ad != nil {
		return model.AdPlacement{ClientName: ad.ClientName, ImageURL: ad.ImageURL}, nil
	}
	return model.AdPlacement{
		ClientName: model.FallbackClientName,
		ImageURL:   a.fallbackImageURL,
	}, nil
}

func (a *AdAllocator) intn(n int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rand.Intn(n)
}
