package repository

import (
	"fmt"

	"gorm.io/gorm"

	"mail-beacon-go/internal/model"
)

// Ads provides storage access for sponsor creatives.
type Ads struct {
	db *gorm.DB
}

// NewAds creates an ad repository
func NewAds(db *gorm.DB) *Ads {
	return &Ads{db: db}
}

// ListEligible returns active non-fallback ads still under their cap.
func (r *Ads) ListEligible() ([]model.Ad, error) {
	var ads []model.Ad
	result := r.db.
		Where("active = ? AND client_name <> ? AND current_views < max_views",
			true, model.FallbackClientName).
		Find(&ads)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list eligible ads: %w", result.Error)
	}
	return ads, nil
}

// FindByClient returns the ad for a client name, or (nil, nil) when
// it does not exist.
func (r *Ads) FindByClient(name string) (*model.Ad, error) {
	var ad model.Ad
	result := r.db.Where("client_name = ?", name).First(&ad)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &ad, nil
}

// ChargeView increments an ad's view counter by one, but only while
// the counter is still below the cap. The guard runs inside the
// UPDATE itself, so concurrent charges cannot push the counter past
// max_views. Returns false when the ad lost the race or went
// inactive.
func (r *Ads) ChargeView(id uint) (bool, error) {
	result := r.db.Model(&model.Ad{}).
		Where("id = ? AND active = ? AND current_views < max_views", id, true).
		Update("current_views", gorm.Expr("current_views + 1"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to charge ad view: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ResetViews zeroes an ad's counter, making a capped ad eligible again.
func (r *Ads) ResetViews(id uint) error {
	result := r.db.Model(&model.Ad{}).
		Where("id = ?", id).
		Update("current_views", 0)
	if result.Error != nil {
		return fmt.Errorf("failed to reset ad views: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountActive returns how many non-fallback ads are active and under cap.
func (r *Ads) CountActive() (int64, error) {
	var n int64
	result := r.db.Model(&model.Ad{}).
		Where("active = ? AND client_name <> ? AND current_views < max_views",
			true, model.FallbackClientName).
		Count(&n)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count active ads: %w", result.Error)
	}
	return n, nil
}
