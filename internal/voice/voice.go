// Package voice places the escalation phone call through a Twilio-compatible
// REST API.
package voice

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"marquee/internal/config"
	"marquee/internal/services"
)

const defaultTimeout = 15 * time.Second

// Caller places voice alerts.
type Caller interface {
	// Call starts one call and returns the provider call id.
	Call(ctx context.Context) (string, error)
	Enabled() bool
}

// HTTPDoer matches *http.Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// New returns a Twilio-backed Caller, or a disabled one when voice is off.
func New(cfg *config.Config) Caller {
	if cfg == nil || !cfg.Voice.Enabled {
		return disabled{}
	}
	timeout := time.Duration(cfg.Voice.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &twilioCaller{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.Voice.BaseURL), "/"),
		accountSID: strings.TrimSpace(cfg.Voice.AccountSID),
		authToken:  strings.TrimSpace(cfg.Voice.AuthToken),
		from:       strings.TrimSpace(cfg.Voice.From),
		to:         strings.TrimSpace(cfg.Voice.To),
		message:    strings.TrimSpace(cfg.Voice.Message),
		client:     &http.Client{Timeout: timeout},
	}
}

type twilioCaller struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	to         string
	message    string
	client     HTTPDoer
}

func (c *twilioCaller) Enabled() bool { return true }

func (c *twilioCaller) Call(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, url.PathEscape(c.accountSID))
	form := url.Values{}
	form.Set("To", c.to)
	form.Set("From", c.from)
	form.Set("Twiml", twiml(c.message))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "voice", "build request", "", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "voice", "create call", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "voice", "read response", fmt.Sprintf("http %d", resp.StatusCode), err)
	}
	if resp.StatusCode >= 300 {
		detail := gjson.GetBytes(body, "message").String()
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return "", services.Wrap(services.ErrTransport, "voice", "create call", fmt.Sprintf("http %d: %s", resp.StatusCode, detail), nil)
	}
	sid := gjson.GetBytes(body, "sid").String()
	if sid == "" {
		return "", services.Wrap(services.ErrParse, "voice", "create call", "response missing call sid", nil)
	}
	return sid, nil
}

func twiml(message string) string {
	var escaped strings.Builder
	_ = xml.EscapeText(&escaped, []byte(message))
	return "<Response><Say>" + escaped.String() + "</Say></Response>"
}

type disabled struct{}

func (disabled) Enabled() bool { return false }

func (disabled) Call(context.Context) (string, error) {
	return "", services.Wrap(services.ErrConfiguration, "voice", "call", "voice alerts are disabled", nil)
}
