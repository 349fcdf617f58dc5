package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/types"
)

// Notification is an inbox entry for an internal user.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null;index"`
	Type        enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title       string                 `gorm:"column:title;not null"`
	Body        string                 `gorm:"column:body;not null"`
	Data        *types.JSONMap         `gorm:"column:data;type:jsonb;serializer:json"`
	ReadAt      *time.Time             `gorm:"column:read_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
