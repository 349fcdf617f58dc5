package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the audit anchor for a customer thread. Reorders clone the
// brief of the source conversation into a fresh row.
type Conversation struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Channel   string     `gorm:"column:channel;not null;default:'app'"`
	Brief     *string    `gorm:"column:brief"`
	Context   *string    `gorm:"column:context"`
	HandoffID *uuid.UUID `gorm:"column:handoff_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
