package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_JSONByDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(false, buf)

	Log().Info("hello")
	Log().Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.NotContains(t, out, "hidden")
	assert.False(t, Debug())
}

func TestSetDebug_Toggles(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(false, buf)

	SetDebug(true)
	assert.True(t, Debug())
	WithFields(map[string]interface{}{"user_id": 7}).Debug("verbose line")
	assert.Contains(t, buf.String(), "verbose line")
	assert.Contains(t, buf.String(), "user_id=7")

	SetDebug(false)
	buf.Reset()
	Log().Debug("quiet line")
	assert.Empty(t, buf.String())
}

func TestAddErrorOutput(t *testing.T) {
	main := &bytes.Buffer{}
	errs := &bytes.Buffer{}
	Init(false, main)
	AddErrorOutput(errs)

	Log().Info("informational")
	Log().Error("broken")

	assert.Contains(t, main.String(), "informational")
	assert.Contains(t, main.String(), "broken")
	assert.NotContains(t, errs.String(), "informational")
	assert.Contains(t, errs.String(), "broken")

	// Init drops previously installed hooks.
	Init(false, main)
	errs.Reset()
	Log().Error("again")
	assert.Empty(t, errs.String())
}

func TestErrorField(t *testing.T) {
	Init(false, &bytes.Buffer{})
	assert.Nil(t, ErrorField(nil))
	assert.Equal(t, "redacted", ErrorField(errors.New("near \"users\": syntax error")))

	SetDebug(true)
	defer SetDebug(false)
	assert.Equal(t, "near \"users\": syntax error", ErrorField(errors.New("near \"users\": syntax error")))
}
