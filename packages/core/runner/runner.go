package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/assertions"
	"github.com/abdul-hamid-achik/apiprobe/packages/checks"
)

// Observer is notified as checks start and finish.
type Observer interface {
	CheckStarted(check checks.Check)
	CheckFinished(result *CheckResult)
}

type Runner struct {
	checks   []checks.Check
	observer Observer
	logger   *slog.Logger
}

type Config struct {
	// Checks defaults to checks.Default().
	Checks   []checks.Check
	Observer Observer
	Logger   *slog.Logger
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	r := &Runner{
		checks:   cfg.Checks,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}
	if r.checks == nil {
		r.checks = checks.Default()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Checks returns the checks in run order.
func (r *Runner) Checks() []checks.Check {
	return r.checks
}

type RunResult struct {
	BaseURL   string
	Results   []*CheckResult
	StartedAt time.Time
	Duration  time.Duration
	Passed    int
	Failed    int
}

// Success reports whether at least one check ran and none failed.
func (r *RunResult) Success() bool {
	return r.Failed == 0 && r.Passed > 0
}

type CheckResult struct {
	Name        string
	Description string
	Passed      bool
	Duration    time.Duration
	Assertions  []*assertions.Result
	Captures    map[string]any
	Error       error
}

// ErrorMessage returns the failure cause, or "" for a passed check.
func (c *CheckResult) ErrorMessage() string {
	if c.Error == nil {
		return ""
	}
	return c.Error.Error()
}

// IsTransportError reports whether the check failed before getting a response.
func (c *CheckResult) IsTransportError() bool {
	var transportErr *checks.TransportError
	return errors.As(c.Error, &transportErr)
}

// Run executes every check in order against target.
func (r *Runner) Run(ctx context.Context, target *checks.Target) *RunResult {
	start := time.Now()
	result := &RunResult{
		BaseURL:   target.BaseURL,
		StartedAt: start,
	}

	for _, c := range r.checks {
		if r.observer != nil {
			r.observer.CheckStarted(c)
		}

		var checkResult *CheckResult
		if err := ctx.Err(); err != nil {
			checkResult = &CheckResult{Name: c.Name, Description: c.Description, Error: err}
		} else {
			checkResult = r.runCheck(ctx, c, target)
		}

		result.Results = append(result.Results, checkResult)
		if checkResult.Passed {
			result.Passed++
		} else {
			result.Failed++
		}

		r.logger.Debug("check finished",
			"check", c.Name,
			"passed", checkResult.Passed,
			"duration", checkResult.Duration,
			"error", checkResult.ErrorMessage(),
		)

		if r.observer != nil {
			r.observer.CheckFinished(checkResult)
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) runCheck(ctx context.Context, c checks.Check, target *checks.Target) (result *CheckResult) {
	result = &CheckResult{
		Name:        c.Name,
		Description: c.Description,
	}

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		if p := recover(); p != nil {
			result.Passed = false
			result.Error = fmt.Errorf("check panicked: %v", p)
		}
	}()

	captures, err := c.Run(ctx, target)
	result.Captures = captures
	result.Error = err
	result.Passed = err == nil

	var assertErr *checks.AssertionError
	if errors.As(err, &assertErr) {
		result.Assertions = assertErr.Failures
	}

	return result
}
