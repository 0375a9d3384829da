package entity

import (
	"time"

	"gorm.io/datatypes"
)

// OperationLog records who did what to which catalog entity. Written by the
// services on every mutating call; approval stamps alone don't cover edits.
type OperationLog struct {
	ID         string         `json:"id" gorm:"primaryKey;size:32"`
	UserID     string         `json:"user_id" gorm:"size:32;not null;index"`
	UserName   string         `json:"user_name" gorm:"size:64"`
	Action     string         `json:"action" gorm:"size:32;not null"`
	EntityType string         `json:"entity_type" gorm:"size:32;not null"`
	EntityID   string         `json:"entity_id" gorm:"size:32;not null;index"`
	Detail     datatypes.JSON `json:"detail,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (OperationLog) TableName() string {
	return "operation_logs"
}
