package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"mail-beacon-go/internal/model"
)

// Messages provides storage access for tracked messages and their
// open events.
type Messages struct {
	db *gorm.DB
}

// NewMessages creates a message repository
func NewMessages(db *gorm.DB) *Messages {
	return &Messages{db: db}
}

// Create inserts a newly registered message.
func (r *Messages) Create(msg *model.TrackedMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create tracked message: %w", err)
	}
	return nil
}

// FindByID returns the message with the given id, or (nil, nil) when
// it does not exist.
func (r *Messages) FindByID(id string) (*model.TrackedMessage, error) {
	var msg model.TrackedMessage
	result := r.db.Where("id = ?", id).First(&msg)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &msg, nil
}

// FindFamily returns the thread root together with its direct
// replies, ordered by creation time. Linking is one level deep.
func (r *Messages) FindFamily(rootID string) ([]model.TrackedMessage, error) {
	var msgs []model.TrackedMessage
	result := r.db.
		Where("id = ? OR parent_id = ?", rootID, rootID).
		Order("created_at ASC").
		Find(&msgs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load thread family: %w", result.Error)
	}
	return msgs, nil
}

// FindBySubjectSuffix returns candidate thread members whose subject
// ends with the canonical subject. This is only a coarse pre-filter;
// the caller confirms each candidate against the anchored matcher.
func (r *Messages) FindBySubjectSuffix(canonical string) ([]model.TrackedMessage, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(canonical)
	var msgs []model.TrackedMessage
	result := r.db.
		Where("subject LIKE ?", "%"+escaped).
		Order("created_at DESC").
		Find(&msgs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load subject candidates: %w", result.Error)
	}
	return msgs, nil
}

// LastOpenEvent returns the most recent open event for a message, or
// (nil, nil) when none has been recorded yet.
func (r *Messages) LastOpenEvent(id string) (*model.OpenEvent, error) {
	var evt model.OpenEvent
	result := r.db.
		Where("message_id = ?", id).
		Order("occurred_at DESC").
		Order("id DESC").
		First(&evt)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &evt, nil
}

// RecordOpen appends an accepted open event and advances the message
// counters in one transaction, keeping open_count equal to the number
// of stored events.
func (r *Messages) RecordOpen(id string, evt *model.OpenEvent) error {
	evt.MessageID = id
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(evt).Error; err != nil {
			return err
		}
		return tx.Model(&model.TrackedMessage{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"open_count":     gorm.Expr("open_count + 1"),
				"opened":         true,
				"last_opened_at": evt.OccurredAt,
			}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record open event: %w", err)
	}
	return nil
}

// CountMessages returns the total number of tracked messages and how
// many of them have been opened at least once.
func (r *Messages) CountMessages() (total int64, opened int64, err error) {
	if err = r.db.Model(&model.TrackedMessage{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	if err = r.db.Model(&model.TrackedMessage{}).Where("opened = ?", true).Count(&opened).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count opened messages: %w", err)
	}
	return total, opened, nil
}
