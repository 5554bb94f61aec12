package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// RecipientList stores a list of addresses in a single text column.
type RecipientList []string

// Value implements driver.Valuer.
func (l RecipientList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner.
func (l *RecipientList) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported recipient list type %T", value)
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}

// TrackedMessage represents one registered outbound email.
// Rows are append-only: the deduplicator mutates the open fields,
// nothing ever deletes a message.
type TrackedMessage struct {
	ID           string        `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ParentID     *string       `json:"parent_id,omitempty" gorm:"type:varchar(64);index"`
	Sender       string        `json:"sender" gorm:"type:varchar(255);not null"`
	Subject      string        `json:"subject" gorm:"type:varchar(998);index"`
	Recipients   RecipientList `json:"recipients" gorm:"type:text"`
	SenderToken  string        `json:"-" gorm:"type:varchar(64)"`
	OpenCount    int           `json:"open_count"`
	Opened       bool          `json:"opened"`
	LastOpenedAt *time.Time    `json:"last_opened_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at" gorm:"index"`

	OpenEvents []OpenEvent `json:"open_events,omitempty" gorm:"foreignKey:MessageID"`
}

// TableName specifies the table name for TrackedMessage
func (TrackedMessage) TableName() string {
	return "tracked_messages"
}

// RootID returns the id grouping this message's thread: the parent
// when one is set, the message's own id otherwise. Linking is one
// level deep; a reply to a reply must reference the thread root.
func (m *TrackedMessage) RootID() string {
	if m.ParentID != nil && *m.ParentID != "" {
		return *m.ParentID
	}
	return m.ID
}

// OpenEvent is one accepted pixel fetch for a message.
type OpenEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID  string    `json:"message_id" gorm:"type:varchar(64);not null;index"`
	IP         string    `json:"ip" gorm:"type:varchar(64)"`
	UserAgent  string    `json:"user_agent" gorm:"type:varchar(512)"`
	OccurredAt time.Time `json:"occurred_at" gorm:"index"`
}

// TableName specifies the table name for OpenEvent
func (OpenEvent) TableName() string {
	return "open_events"
}
