package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"
)

const (
	userAgent          = "marquee/1.0"
	maxListedTheatres  = 10
	defaultHTTPTimeout = 10 * time.Second
)

// Service defines the notification surface used by the monitor and CLI.
type Service interface {
	NotifyMatch(ctx context.Context, match Match) error
	NotifyFetchError(ctx context.Context, err error) error
	TestNotification(ctx context.Context) error
}

// Theatre is one matching venue listed in a match notification.
type Theatre struct {
	Name    string
	City    string
	Address string
	Shows   int
}

// Match carries everything a match notification displays.
type Match struct {
	// Rule names the rule that matched: "keyword sets", "target name" or "condition".
	Rule string
	// Sets holds display labels of the film keyword sets that matched.
	Sets  []string
	Films []string
	// Dates holds one "code: date" line per theatre lookup.
	Dates       []string
	Theatres    []Theatre
	AllTheatres bool
	CinemaSets  []string
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &ntfyService{
		endpoint: topic,
		priority: strings.TrimSpace(cfg.Notifications.Priority),
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	priority string
	client   *http.Client
}

func (n *ntfyService) NotifyMatch(ctx context.Context, match Match) error {
	data := payload{
		title:    "Marquee - Tickets Available",
		message:  FormatMatch(match),
		tags:     []string{"marquee", "tickets", "match"},
		priority: n.priority,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFetchError(ctx context.Context, err error) error {
	var builder strings.Builder
	builder.WriteString("Listing request failed: ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}
	builder.WriteString("\nMonitoring continues on the next poll.")

	data := payload{
		title:    "Marquee - Listing Error",
		message:  builder.String(),
		tags:     []string{"marquee", "error", "warning"},
		priority: "default",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Marquee - Test",
		message:  "Notification system test",
		tags:     []string{"marquee", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyMatch(context.Context, Match) error      { return nil }
func (noopService) NotifyFetchError(context.Context, error) error { return nil }
func (noopService) TestNotification(context.Context) error        { return nil }
