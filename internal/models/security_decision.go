package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sources and actions recorded on security decisions.
const (
	DecisionSourceRateLimit = "ratelimit"
	DecisionActionBlock     = "block"
)

// SecurityDecision records a throttle decision taken against a client so it
// can be audited after the in-memory state is gone.
type SecurityDecision struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	Source    string    `json:"source"`
	Action    string    `json:"action"`
	IP        string    `json:"ip" gorm:"index"`
	Until     time.Time `json:"until"`
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates UUID for new decisions
func (d *SecurityDecision) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == "" {
		d.UUID = uuid.New().String()
	}
	return nil
}
