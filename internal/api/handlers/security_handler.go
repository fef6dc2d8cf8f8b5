package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoadb/memberwall/internal/cerberus"
	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/services"
)

// recentEntries is how many decisions and audit rows the overview shows.
const recentEntries = 20

// SecurityHandler serves the admin security overview.
type SecurityHandler struct {
	cfg      config.SecurityConfig
	cerb     *cerberus.Cerberus
	security *services.SecurityService
}

// NewSecurityHandler creates a new SecurityHandler.
func NewSecurityHandler(cfg config.SecurityConfig, cerb *cerberus.Cerberus, security *services.SecurityService) *SecurityHandler {
	return &SecurityHandler{cfg: cfg, cerb: cerb, security: security}
}

// GetStatus returns the throttle settings, the size of the in-memory tables
// and the most recent block decisions and admin actions.
func (h *SecurityHandler) GetStatus(c *gin.Context) {
	decisions, err := h.security.ListDecisions(recentEntries)
	if err != nil {
		storeError(c, "SQL query error", err, "/home")
		return
	}
	audits, err := h.security.ListAudits(recentEntries)
	if err != nil {
		storeError(c, "SQL query error", err, "/home")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page": "security",
		"rate_limit": gin.H{
			"max_attempts":   h.cfg.LoginMaxAttempts,
			"window":         h.cfg.LoginWindow.String(),
			"block_duration": h.cfg.BlockDuration.String(),
		},
		"tracked_clients": h.cerb.Limiter().Len(),
		"block_entries":   h.cerb.Blocklist().Len(),
		"decisions":       decisions,
		"audits":          audits,
	})
}
