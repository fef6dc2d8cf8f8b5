package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type captured struct {
	mu   sync.Mutex
	urls []string
	msgs []string
}

func (c *captured) send(url, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestNotifier_SendsAsync(t *testing.T) {
	c := &captured{}
	n := NewNotifier("generic://hooks.example.com/memberwall")
	n.send = c.send

	n.Notify("Client blocked", "from 10.0.0.1\nforged line")
	n.Wait()

	assert.Equal(t, []string{"generic://hooks.example.com/memberwall"}, c.urls)
	assert.Equal(t, "Client blocked\n\nfrom 10.0.0.1 forged line", c.msgs[0])
}

func TestNotifier_DisabledDropsEvents(t *testing.T) {
	c := &captured{}
	n := NewNotifier("")
	n.send = c.send
	n.Notify("x", "y")
	n.Wait()
	assert.Empty(t, c.msgs)
	assert.False(t, n.Enabled())

	var nilNotifier *Notifier
	assert.NotPanics(t, func() {
		nilNotifier.Notify("x", "y")
		nilNotifier.Wait()
	})
}

func TestNotifier_SendFailureIsSwallowed(t *testing.T) {
	n := NewNotifier("generic://hooks.example.com")
	n.send = func(string, string) error { return errors.New("connection refused") }
	assert.NotPanics(t, func() {
		n.Notify("x", "y")
		n.Wait()
	})
}
