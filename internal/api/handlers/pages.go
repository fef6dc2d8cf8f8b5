package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoadb/memberwall/internal/api/middleware"
	"github.com/hoadb/memberwall/internal/logger"
)

// Page names rendered by the front end.
const (
	pageLogin        = "login"
	pageRegistration = "registration"
	pageHome         = "home"
	pageAdminDelete  = "adminDelete"
	pageAdminUpdate  = "adminUpdate"
)

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// storeError logs a failed store call and sends the client to a safe page.
// The error text is only logged while verbose logging is on.
func storeError(c *gin.Context, msg string, err error, location string) {
	middleware.GetRequestLogger(c).WithField("error", logger.ErrorField(err)).Error(msg)
	redirect(c, location)
}

// Root sends visitors to the login page.
func Root(c *gin.Context) {
	redirect(c, "/login")
}

// NotFound renders the not-found page whatever the caller's session.
func NotFound(c *gin.Context) {
	middleware.AbortNotFound(c)
}
