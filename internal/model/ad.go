package model

import (
	"time"

	"gorm.io/gorm"
)

// FallbackClientName is the reserved client of the house ad. The
// fallback is always eligible, exempt from the view cap, and its
// counter is never incremented.
const FallbackClientName = "house"

// PlanQuotas maps a pricing plan to its view quota. Consulted only
// when an ad is registered; changing the table later does not touch
// existing ads.
var PlanQuotas = map[string]int{
	"basic":   1000,
	"premium": 10000,
	"ultra":   100000,
}

// Ad represents a sponsor creative with a view quota.
type Ad struct {
	ID           uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	ClientName   string         `json:"client_name" gorm:"type:varchar(255);not null;uniqueIndex"`
	ImageURL     string         `json:"image_url" gorm:"type:varchar(1024);not null"`
	Plan         string         `json:"plan" gorm:"type:varchar(50)"`
	MaxViews     int            `json:"max_views"`
	CurrentViews int            `json:"current_views"`
	Active       bool           `json:"active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for Ad
func (Ad) TableName() string {
	return "ads"
}

// IsFallback reports whether this is the quota-exempt house ad.
func (a *Ad) IsFallback() bool {
	return a.ClientName == FallbackClientName
}
