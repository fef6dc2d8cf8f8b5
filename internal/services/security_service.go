package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hoadb/memberwall/internal/logger"
	"github.com/hoadb/memberwall/internal/models"
)

// SecurityService persists throttle decisions and admin audit entries.
type SecurityService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewSecurityService returns a SecurityService using the provided DB.
// notifier may be nil.
func NewSecurityService(db *gorm.DB, notifier *Notifier) *SecurityService {
	return &SecurityService{db: db, notifier: notifier}
}

// RecordBlock stores a block decision for clientKey and sends a notification.
// It is called from the login throttle, so failures are only logged.
func (s *SecurityService) RecordBlock(clientKey string, until time.Time) {
	d := &models.SecurityDecision{
		Source:  models.DecisionSourceRateLimit,
		Action:  models.DecisionActionBlock,
		IP:      clientKey,
		Until:   until,
		Details: "login attempts exhausted",
	}
	if err := s.LogDecision(d); err != nil {
		logger.Log().WithFields(logrus.Fields{
			"client": clientKey,
			"error":  logger.ErrorField(err),
		}).Error("failed to record security decision")
	}
	s.notifier.Notify("Client blocked",
		fmt.Sprintf("User requested too many login attempts from %s, blocked until %s", clientKey, until.UTC().Format(time.RFC3339)))
}

// LogDecision stores a security decision record.
func (s *SecurityService) LogDecision(d *models.SecurityDecision) error {
	if d == nil {
		return nil
	}
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	return s.db.Create(d).Error
}

// ListDecisions returns recent security decisions, newest first.
func (s *SecurityService) ListDecisions(limit int) ([]models.SecurityDecision, error) {
	var res []models.SecurityDecision
	q := s.db.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// LogAudit stores an audit entry and forwards it to the notifier.
func (s *SecurityService) LogAudit(a *models.SecurityAudit) error {
	if a == nil {
		return nil
	}
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := s.db.Create(a).Error; err != nil {
		return err
	}
	s.notifier.Notify("Admin action", a.Details)
	return nil
}

// ListAudits returns recent audit entries, newest first.
func (s *SecurityService) ListAudits(limit int) ([]models.SecurityAudit, error) {
	var res []models.SecurityAudit
	q := s.db.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}
