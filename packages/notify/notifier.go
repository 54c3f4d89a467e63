// Package notify posts run summaries to chat webhooks.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/apiprobe/packages/core/runner"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when checks fail
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when every check passes
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first
	// passing run after a failure
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates a policy name. Empty means NotifyFailure.
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch on := NotifyOn(strings.ToLower(strings.TrimSpace(s))); on {
	case "":
		return NotifyFailure, nil
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return on, nil
	default:
		return "", fmt.Errorf("unknown notify policy %q (use always, failure, success or recovery)", s)
	}
}

// Summary is what a notifier receives about one run.
type Summary struct {
	BaseURL    string
	Result     *runner.RunResult
	IsRecovery bool
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(ctx context.Context, summary *Summary) error
	Name() string
}

// Manager applies a NotifyOn policy across consecutive runs.
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run was successful
}

// NewManager creates a new notification manager
func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
	}
}

// Notify sends notifications for result based on the configured policy
func (m *Manager) Notify(ctx context.Context, result *runner.RunResult) error {
	currentSuccess := result.Success()
	summary := &Summary{BaseURL: result.BaseURL, Result: result}

	shouldNotify := false
	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = !currentSuccess
	case NotifySuccess:
		shouldNotify = currentSuccess
	case NotifyRecovery:
		if !m.lastState && currentSuccess {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !currentSuccess {
			shouldNotify = true
		}
	}

	m.lastState = currentSuccess

	if !shouldNotify {
		return nil
	}

	var errs []string
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", n.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
