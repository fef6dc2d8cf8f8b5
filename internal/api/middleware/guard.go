package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoadb/memberwall/internal/access"
)

// Guard applies the access decision for the matched route pattern, so
// /delete/:id is authorized as the delete route. Guarded responses are never
// cached so the back button cannot show a page after logout.
func Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, must-revalidate")

		switch access.AuthorizePath(c.FullPath(), CurrentSession(c)) {
		case access.Allow:
			c.Next()
		case access.RedirectLogin:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		case access.RedirectHome:
			c.Redirect(http.StatusFound, "/home")
			c.Abort()
		default:
			AbortNotFound(c)
		}
	}
}

// AbortNotFound answers with the not-found page.
func AbortNotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"page": "notFound"})
}
