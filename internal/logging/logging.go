// Package logging builds the logger shared by every component and connects it to the
// GitHub Actions annotation channel when running inside a workflow.
package logging

import (
	"fmt"
	"io"

	"github.com/sethvargo/go-githubactions"
	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out. Debug entries are only emitted when verbose is set.
func New(out io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// InActions reports whether the process runs as a GitHub Actions step.
func InActions(getenv func(string) string) bool {
	return getenv("GITHUB_ACTIONS") == "true"
}

// ActionsHook mirrors warnings and errors as workflow annotations.
type ActionsHook struct {
	action *githubactions.Action
}

func NewActionsHook(action *githubactions.Action) *ActionsHook {
	return &ActionsHook{action: action}
}

func (h *ActionsHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *ActionsHook) Fire(entry *logrus.Entry) error {
	msg := entry.Message
	if err, ok := entry.Data[logrus.ErrorKey].(error); ok {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	if entry.Level == logrus.WarnLevel {
		h.action.Warningf("%s", msg)
		return nil
	}
	h.action.Errorf("%s", msg)
	return nil
}
