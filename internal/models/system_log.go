package models

import (
	"time"

	"gorm.io/datatypes"
)

// SystemLog stores ERROR+ log records in the active store.
type SystemLog struct {
	ID        string            `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	Timestamp time.Time         `gorm:"not null;index" bson:"timestamp" json:"timestamp"`
	Level     string            `gorm:"size:10;not null;index" bson:"level" json:"level"`
	Message   string            `gorm:"type:text" bson:"message" json:"message"`
	RequestID string            `gorm:"size:36;index" bson:"requestId,omitempty" json:"request_id"`
	UserEmail *string           `gorm:"size:255" bson:"userEmail,omitempty" json:"user_email"`
	Action    string            `gorm:"size:100" bson:"action,omitempty" json:"action"`
	Error     string            `gorm:"type:text" bson:"error,omitempty" json:"error"`
	LatencyMs int               `bson:"latencyMs,omitempty" json:"latency_ms"`
	Extra     datatypes.JSONMap `gorm:"type:jsonb;default:'{}'" bson:"extra,omitempty" json:"extra"`
	CreatedAt time.Time         `bson:"createdAt" json:"created_at"`
}
