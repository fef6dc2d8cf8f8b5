package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/metrics"
	"github.com/hoadb/memberwall/internal/session"
)

const sessionKey = "session"

// Sessions binds the session authority to the HTTP layer: it resolves the
// session cookie on each request and issues or clears it for the handlers.
type Sessions struct {
	authority *session.Authority
	codec     session.Codec
	cfg       config.SessionConfig
}

// NewSessions wires the authority and cookie codec.
func NewSessions(authority *session.Authority, codec session.Codec, cfg config.SessionConfig) *Sessions {
	if cfg.CookieName == "" {
		cfg.CookieName = config.DefaultSessionConfig().CookieName
	}
	return &Sessions{authority: authority, codec: codec, cfg: cfg}
}

// Load resolves the session cookie. A missing, forged or expired cookie
// leaves the request anonymous.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(s.cfg.CookieName)
		if err != nil || value == "" {
			c.Next()
			return
		}
		sid, err := s.codec.Decode(value)
		if err != nil {
			GetRequestLogger(c).Debug("ignoring invalid session cookie")
			c.Next()
			return
		}
		sess, ok := s.authority.Current(sid)
		if !ok {
			c.Next()
			return
		}
		c.Set(sessionKey, &sess)
		AddLogFields(c, logrus.Fields{"user_id": sess.Identity.ID})
		if s.cfg.RefreshOnAccess {
			s.setCookie(c, value)
		}
		c.Next()
	}
}

// Start opens a session for identity and sets its cookie. A session the
// caller already held is destroyed.
func (s *Sessions) Start(c *gin.Context, identity session.Identity) (session.Session, error) {
	if old := CurrentSession(c); old != nil {
		s.authority.Destroy(old.ID)
	}
	sess := s.authority.Login(identity)
	value, err := s.codec.Encode(sess.ID)
	if err != nil {
		s.authority.Destroy(sess.ID)
		return session.Session{}, err
	}
	s.setCookie(c, value)
	c.Set(sessionKey, &sess)
	metrics.IncSessionCreated()
	return sess, nil
}

// End destroys the caller's session, if any, and clears the cookie.
func (s *Sessions) End(c *gin.Context) {
	if sess := CurrentSession(c); sess != nil {
		s.authority.Destroy(sess.ID)
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.cfg.CookieName, "", -1, "/", "", s.cfg.Secure, true)
	c.Set(sessionKey, (*session.Session)(nil))
}

func (s *Sessions) setCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.cfg.CookieName, value, int(s.authority.IdleTimeout().Seconds()), "/", "", s.cfg.Secure, true)
}

// CurrentSession returns the session resolved for this request, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
