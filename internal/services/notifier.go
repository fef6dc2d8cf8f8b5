package services

import (
	"fmt"
	"sync"

	"github.com/containrrr/shoutrrr"
	"github.com/sirupsen/logrus"

	"github.com/hoadb/memberwall/internal/logger"
	"github.com/hoadb/memberwall/internal/util"
)

// Notifier forwards security events to a shoutrrr service URL. A nil
// Notifier, or one without a URL, drops every event.
type Notifier struct {
	url  string
	send func(url, message string) error
	wg   sync.WaitGroup
}

// NewNotifier returns a Notifier for url.
func NewNotifier(url string) *Notifier {
	return &Notifier{url: url, send: shoutrrr.Send}
}

// Enabled reports whether events are delivered anywhere.
func (n *Notifier) Enabled() bool {
	return n != nil && n.url != ""
}

// Notify sends the event in the background. Delivery failures are logged.
func (n *Notifier) Notify(title, message string) {
	if !n.Enabled() {
		return
	}
	msg := fmt.Sprintf("%s\n\n%s", title, util.SanitizeForLog(message))
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.send(n.url, msg); err != nil {
			logger.Log().WithFields(logrus.Fields{
				"title": title,
				"error": logger.ErrorField(err),
			}).Warn("failed to send notification")
		}
	}()
}

// Wait blocks until every pending notification has been attempted.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
