package cerberus

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/logger"
	"github.com/hoadb/memberwall/internal/metrics"
)

// Context keys shared between the login throttle and the login handler.
const (
	remainingKey   = "cerberus.remaining"
	loginSucceeded = "cerberus.login_succeeded"
)

// Recorder is notified when a client is placed on the blocklist.
type Recorder interface {
	RecordBlock(clientKey string, until time.Time)
}

// Cerberus guards the login endpoint: a per-client Limiter counts attempts and
// clients that exhaust it are placed on the Blocklist.
type Cerberus struct {
	cfg       config.SecurityConfig
	limiter   *Limiter
	blocklist *Blocklist
	recorder  Recorder
	now       func() time.Time
}

// New creates a Cerberus using the wall clock.
func New(cfg config.SecurityConfig, recorder Recorder) *Cerberus {
	return NewWithClock(cfg, recorder, time.Now)
}

// NewWithClock creates a Cerberus whose limiter and blocklist read time from now.
func NewWithClock(cfg config.SecurityConfig, recorder Recorder, now func() time.Time) *Cerberus {
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = cfg.LoginWindow
	}
	return &Cerberus{
		cfg:       cfg,
		limiter:   NewLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow, now),
		blocklist: NewBlocklist(now),
		recorder:  recorder,
		now:       now,
	}
}

// Limiter exposes the attempt counter.
func (c *Cerberus) Limiter() *Limiter { return c.limiter }

// Blocklist exposes the ban list.
func (c *Cerberus) Blocklist() *Blocklist { return c.blocklist }

// TooManyAttemptsMessage is the plaintext body of a 429 response.
func TooManyAttemptsMessage(minutes int) string {
	return fmt.Sprintf("Requested too many login attempts, try again in %d minutes.", minutes)
}

// LoginThrottle returns middleware for the login POST. Blocked clients and
// clients over quota get a 429 before the handler (and the user store) runs.
// When the handler reports a successful login via MarkLoginSucceeded, the
// attempt is refunded.
func (c *Cerberus) LoginThrottle() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.ClientIP()

		if blocked, minutes := c.blocklist.IsBlocked(key); blocked {
			metrics.IncRateLimited()
			logger.Log().WithFields(map[string]interface{}{
				"source":   "ratelimit",
				"decision": "blocked",
				"client":   key,
				"retry":    minutes,
			}).Warn("blocked client attempted login")
			c.reject(ctx, minutes)
			return
		}

		res := c.limiter.Check(key)
		if !res.Allowed {
			minutes := c.blocklist.Block(key, c.cfg.BlockDuration)
			metrics.IncRateLimited()
			metrics.IncBlocked()
			logger.Log().WithFields(map[string]interface{}{
				"source":   "ratelimit",
				"decision": "block",
				"client":   key,
				"retry":    minutes,
			}).Warn("User requested too many login attempts")
			if c.recorder != nil {
				c.recorder.RecordBlock(key, c.now().Add(c.cfg.BlockDuration))
			}
			c.reject(ctx, minutes)
			return
		}

		ctx.Set(remainingKey, res.Remaining)
		ctx.Header("X-RateLimit-Limit", strconv.Itoa(c.limiter.Max()))
		ctx.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		ctx.Next()

		if ok := ctx.GetBool(loginSucceeded); ok {
			c.limiter.Refund(key)
		}
	}
}

// Sweep drops rolled-over windows and expired bans.
func (c *Cerberus) Sweep() (windows, blocks int) {
	return c.limiter.Sweep(), c.blocklist.Sweep()
}

func (c *Cerberus) reject(ctx *gin.Context, minutes int) {
	ctx.Header("Retry-After", strconv.Itoa(minutes*60))
	ctx.String(http.StatusTooManyRequests, TooManyAttemptsMessage(minutes))
	ctx.Abort()
}

// RemainingAttempts returns the attempts left after the current one, as set by
// LoginThrottle. ok is false when the request did not pass through it.
func RemainingAttempts(ctx *gin.Context) (int, bool) {
	v, ok := ctx.Get(remainingKey)
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// MarkLoginSucceeded tells LoginThrottle not to count this request.
func MarkLoginSucceeded(ctx *gin.Context) {
	ctx.Set(loginSucceeded, true)
}
