package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/http"
)

// SlackNotifier sends notifications to Slack via webhook
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	client     *http.Client
}

// SlackOption is a functional option for SlackNotifier
type SlackOption func(*SlackNotifier)

// WithSlackChannel sets the Slack channel
func WithSlackChannel(channel string) SlackOption {
	return func(s *SlackNotifier) {
		s.channel = channel
	}
}

// WithSlackClient replaces the HTTP client used to call the webhook
func WithSlackClient(c *http.Client) SlackOption {
	return func(s *SlackNotifier) {
		s.client = c
	}
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "apiprobe",
		client:     http.NewClient(http.WithTimeout(10 * time.Second)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	TS     int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func buildSlackMessage(summary *Summary) slackAttachment {
	r := summary.Result

	color := "good"
	title := ":white_check_mark: All checks passed"
	switch {
	case !r.Success():
		color = "danger"
		title = fmt.Sprintf(":x: %d check(s) failed", r.Failed)
	case summary.IsRecovery:
		title = ":tada: Checks recovered"
	}

	fields := []slackField{
		{Title: "Backend", Value: summary.BaseURL, Short: false},
		{Title: "Passed", Value: fmt.Sprintf("%d/%d", r.Passed, len(r.Results)), Short: true},
		{Title: "Duration", Value: r.Duration.Round(time.Millisecond).String(), Short: true},
	}

	var text strings.Builder
	for _, c := range r.Results {
		if c.Passed {
			continue
		}
		if text.Len() == 0 {
			text.WriteString("*Failed checks:*\n")
		}
		fmt.Fprintf(&text, "• `%s` %s\n", c.Name, c.ErrorMessage())
	}

	return slackAttachment{
		Color:  color,
		Title:  title,
		Text:   text.String(),
		Fields: fields,
		TS:     r.StartedAt.Unix(),
	}
}

// Notify sends a notification to Slack
func (s *SlackNotifier) Notify(ctx context.Context, summary *Summary) error {
	msg := slackMessage{
		Channel:     s.channel,
		Username:    s.username,
		Attachments: []slackAttachment{buildSlackMessage(summary)},
	}

	resp, err := s.client.PostJSON(ctx, s.webhookURL, msg)
	if err != nil {
		return fmt.Errorf("failed to send Slack notification: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("slack API returned status %d: %s", resp.StatusCode, resp.BodyString())
	}
	return nil
}
