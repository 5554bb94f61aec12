package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a sender account.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string         `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name      string         `json:"name" gorm:"type:varchar(255)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Voucher represents a plan entitlement code.
type Voucher struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Code       string         `json:"code" gorm:"type:varchar(64);not null;uniqueIndex"`
	Plan       string         `json:"plan" gorm:"type:varchar(50);not null"`
	UserID     *uint          `json:"user_id,omitempty" gorm:"index"`
	Redeemed   bool           `json:"redeemed" gorm:"default:false"`
	RedeemedAt *time.Time     `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for Voucher
func (Voucher) TableName() string {
	return "vouchers"
}
