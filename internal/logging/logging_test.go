package logging

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/sethvargo/go-githubactions"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger = New(&buf, true)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestInActions(t *testing.T) {
	env := map[string]string{"GITHUB_ACTIONS": "true"}
	assert.True(t, InActions(func(k string) string { return env[k] }))
	assert.False(t, InActions(func(string) string { return "" }))
}

func TestActionsHook(t *testing.T) {
	var annotations bytes.Buffer
	action := githubactions.New(githubactions.WithWriter(&annotations))

	logger := New(io.Discard, false)
	logger.AddHook(NewActionsHook(action))

	logger.Info("not an annotation")
	logger.Warn("acme/widgets was never ready")
	logger.WithError(errors.New("boom")).Error("run failed")

	out := annotations.String()
	assert.NotContains(t, out, "not an annotation")
	assert.Contains(t, out, "::warning::acme/widgets was never ready")
	assert.Contains(t, out, "::error::run failed: boom")
}

func TestActionsHook_Levels(t *testing.T) {
	hook := NewActionsHook(githubactions.New(githubactions.WithWriter(io.Discard)))
	assert.Contains(t, hook.Levels(), logrus.WarnLevel)
	assert.NotContains(t, hook.Levels(), logrus.InfoLevel)
}
