package models

import (
	"cinco/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is one outbound SMS or e-mail intent written together with the
// status change that caused it, then delivered after commit.
type Notification struct {
	ID        uuid.UUID                 `gorm:"primarykey;type:uuid" json:"id"`
	TeamID    uint                      `gorm:"index" json:"team_id"`
	MemberID  uint                      `json:"member_id"`
	Channel   types.NotificationChannel `gorm:"size:16" json:"channel"`
	Recipient string                    `json:"recipient"`
	Subject   string                    `json:"subject,omitempty"`
	Body      string                    `gorm:"type:text" json:"-"`
	Status    types.NotificationStatus  `gorm:"size:16;index;default:'pending'" json:"status"`
	Attempts  int                       `gorm:"default:0" json:"attempts"`
	LastError *string                   `json:"last_error,omitempty"`
	SentAt    *time.Time                `json:"sent_at,omitempty"`
	Metadata  types.JSONB               `gorm:"type:jsonb" json:"metadata,omitempty"`

	types.Timestamps
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
