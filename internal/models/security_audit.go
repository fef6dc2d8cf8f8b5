package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions performed from the admin pages.
const (
	AuditActionDeleteUser = "delete_user"
	AuditActionUpdateRole = "update_role"
	AuditActionDebug      = "toggle_debug"
)

// SecurityAudit records admin actions against member accounts.
type SecurityAudit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	ActorID   uint      `json:"actor_id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	TargetID  uint      `json:"target_id"`
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates UUID for new audit rows
func (a *SecurityAudit) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}
