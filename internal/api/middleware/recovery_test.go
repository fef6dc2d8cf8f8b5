package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hoadb/memberwall/internal/logger"
)

func panicRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})
	return router
}

func TestRecoveryLogsStacktraceVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(true, buf)
	t.Cleanup(func() { logger.SetDebug(false) })

	w := httptest.NewRecorder()
	panicRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	out := buf.String()
	assert.Contains(t, out, "PANIC: test panic")
	assert.Contains(t, out, "Stacktrace:")
	assert.Contains(t, out, "request_id")
}

func TestRecoveryLogsBriefWhenNotVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(false, buf)

	w := httptest.NewRecorder()
	panicRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "PANIC: test panic")
	assert.NotContains(t, buf.String(), "Stacktrace:")
}

func TestRecoveryRedactsSessionCookie(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(true, buf)
	t.Cleanup(func() { logger.SetDebug(false) })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("Cookie", "memberwall_sid=secret-token")
	w := httptest.NewRecorder()
	panicRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, buf.String(), "secret-token")
	assert.Contains(t, buf.String(), "<redacted>")
}
