package repository

import "gorm.io/gorm"

// Stats aggregates the counts the stats refresher publishes.
type Stats struct {
	messages *Messages
	ads      *Ads
}

// NewStats creates a stats repository
func NewStats(db *gorm.DB) *Stats {
	return &Stats{
		messages: NewMessages(db),
		ads:      NewAds(db),
	}
}

// CountMessages returns total and opened tracked message counts.
func (s *Stats) CountMessages() (int64, int64, error) {
	return s.messages.CountMessages()
}

// CountActiveAds returns how many paying ads remain selectable.
func (s *Stats) CountActiveAds() (int64, error) {
	return s.ads.CountActive()
}
