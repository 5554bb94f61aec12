package model

import "time"

// RegisterMessageRequest is the body for registering an outbound message.
type RegisterMessageRequest struct {
	Sender     string   `json:"sender" binding:"required,email"`
	Recipients []string `json:"recipients" binding:"required,min=1"`
	Subject    string   `json:"subject"`
	ID         string   `json:"id"`
	ParentID   string   `json:"parent_id"`
}

// RegisterMessageResponse is returned after a message is registered.
type RegisterMessageResponse struct {
	ID       string `json:"id"`
	PixelURL string `json:"pixel_url"`
}

// ThreadEntry is one message's line in a thread breakdown.
type ThreadEntry struct {
	Position   int        `json:"position"`
	MessageID  string     `json:"message_id"`
	CreatedAt  time.Time  `json:"created_at"`
	OpenCount  int        `json:"open_count"`
	IsReply    bool       `json:"is_reply"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

// ThreadStatusResponse is the consolidated read-status view of a thread.
// Opened and OpenCount describe the latest message only;
// TotalThreadOpens sums opens across the whole conversation.
type ThreadStatusResponse struct {
	Found            bool          `json:"found"`
	Opened           bool          `json:"opened,omitempty"`
	OpenCount        int           `json:"open_count,omitempty"`
	TotalThreadOpens int           `json:"total_thread_opens,omitempty"`
	Breakdown        []ThreadEntry `json:"thread_breakdown,omitempty"`
}

// AdRequest is the body for creating or updating an ad.
type AdRequest struct {
	ClientName string `json:"client_name" binding:"required"`
	ImageURL   string `json:"image_url" binding:"required,url"`
	Plan       string `json:"plan"`
	Active     *bool  `json:"active"`
}

// AdPlacement is the footer slot selection returned to renderers.
type AdPlacement struct {
	ClientName string `json:"client_name"`
	ImageURL   string `json:"image_url"`
}

// UserRequest is the body for creating a user.
type UserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// VoucherRequest is the body for creating a voucher.
type VoucherRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// RedeemVoucherRequest binds a voucher to a user.
type RedeemVoucherRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// StatsResponse is the snapshot served by the stats endpoint.
type StatsResponse struct {
	TrackedMessages int64     `json:"tracked_messages"`
	OpenedMessages  int64     `json:"opened_messages"`
	ActiveAds       int64     `json:"active_ads"`
	RefreshedAt     time.Time `json:"refreshed_at"`
}
