package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoadb/memberwall/internal/api/middleware"
	"github.com/hoadb/memberwall/internal/logger"
	"github.com/hoadb/memberwall/internal/models"
	"github.com/hoadb/memberwall/internal/services"
	"github.com/hoadb/memberwall/internal/util"
)

type AdminHandler struct {
	users    *services.UserService
	security *services.SecurityService
}

func NewAdminHandler(users *services.UserService, security *services.SecurityService) *AdminHandler {
	return &AdminHandler{users: users, security: security}
}

func (h *AdminHandler) AdminDelete(c *gin.Context) {
	h.listUsers(c, pageAdminDelete, "Admin delete triggered")
}

func (h *AdminHandler) AdminUpdate(c *gin.Context) {
	h.listUsers(c, pageAdminUpdate, "Admin update triggered")
}

func (h *AdminHandler) listUsers(c *gin.Context, page, msg string) {
	users, err := h.users.ListExcludingAdmin()
	if err != nil {
		storeError(c, "SQL query error", err, "/home")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	middleware.GetRequestLogger(c).Info(msg)
	c.JSON(http.StatusOK, gin.H{"page": page, "users": users})
}

// Delete removes the member named in the path. Admins cannot delete themselves.
func (h *AdminHandler) Delete(c *gin.Context) {
	const back = "/adminDelete"
	id, ok := parseID(c)
	if !ok {
		redirect(c, back)
		return
	}
	actor := middleware.CurrentSession(c)
	if id == actor.Identity.ID {
		middleware.GetRequestLogger(c).Warn("refusing to delete the signed-in admin")
		redirect(c, back)
		return
	}

	if err := h.users.DeleteByID(id); err != nil {
		storeError(c, "SQL query error", err, back)
		return
	}
	h.audit(c, models.AuditActionDeleteUser, id, fmt.Sprintf("User ID %d deleted successfully", id))
	redirect(c, back)
}

// Update sets the user_type of the member named in the path.
func (h *AdminHandler) Update(c *gin.Context) {
	const back = "/adminUpdate"
	id, ok := parseID(c)
	if !ok {
		redirect(c, back)
		return
	}
	role := c.PostForm("user_type")

	if err := h.users.UpdateRole(id, role); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrUserNotFound):
			middleware.GetRequestLogger(c).WithFields(logrus.Fields{
				"target_id": id,
				"error":     err.Error(),
			}).Warn("role update rejected")
			redirect(c, back)
		default:
			storeError(c, "SQL query error", err, back)
		}
		return
	}
	h.audit(c, models.AuditActionUpdateRole, id, fmt.Sprintf("User ID %d's role updated successfully to %s", id, role))
	redirect(c, back)
}

// Debugger flips verbose logging.
func (h *AdminHandler) Debugger(c *gin.Context) {
	on := !logger.Debug()
	logger.SetDebug(on)

	msg := "Debug mode turned off."
	if on {
		msg = "Debug mode turned on."
	}
	h.audit(c, models.AuditActionDebug, 0, msg)
	c.JSON(http.StatusOK, gin.H{"debug": on})
}

func (h *AdminHandler) audit(c *gin.Context, action string, target uint, details string) {
	actor := middleware.CurrentSession(c)
	entry := &models.SecurityAudit{
		ActorID:  actor.Identity.ID,
		Actor:    actor.Name,
		Action:   action,
		TargetID: target,
		Details:  details,
	}
	log := middleware.GetRequestLogger(c)
	if err := h.security.LogAudit(entry); err != nil {
		log.WithField("error", logger.ErrorField(err)).Error("failed to store audit entry")
	}
	log.WithField("action", action).Info(details)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		middleware.GetRequestLogger(c).WithField("id", util.Truncate(c.Param("id"), 32)).Warn("invalid user id")
		return 0, false
	}
	return uint(id), true
}
