// Package sendgrid sends transactional mail through the SendGrid v3 API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/httpx"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
	// MaxRetries counts retries after the first attempt.
	MaxRetries     int
	InitialBackoff time.Duration
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Message struct {
	To         EmailAddress
	Subject    string
	Text       string
	HTML       string
	Categories []string
}

type Client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       EmailAddress
	maxRetries int
	backoff    time.Duration
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing sendgrid api key")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("missing sendgrid from address")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	return &Client{
		log:        log.With("client", "SendGridClient"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		from:       EmailAddress{Email: strings.TrimSpace(cfg.FromEmail), Name: strings.TrimSpace(cfg.FromName)},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.InitialBackoff,
	}, nil
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
}

type personalization struct {
	To []EmailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	to := EmailAddress{Email: strings.TrimSpace(msg.To.Email), Name: strings.TrimSpace(msg.To.Name)}
	if to.Email == "" {
		return errors.New("sendgrid: recipient required")
	}
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		return errors.New("sendgrid: subject required")
	}
	var contents []mailContent
	if t := strings.TrimSpace(msg.Text); t != "" {
		contents = append(contents, mailContent{Type: "text/plain", Value: t})
	}
	if h := strings.TrimSpace(msg.HTML); h != "" {
		contents = append(contents, mailContent{Type: "text/html", Value: h})
	}
	if len(contents) == 0 {
		return errors.New("sendgrid: text or html content required")
	}

	return c.do(ctx, "/v3/mail/send", mailSendRequest{
		Personalizations: []personalization{{To: []EmailAddress{to}}},
		From:             c.from,
		Subject:          subject,
		Content:          contents,
		Categories:       msg.Categories,
	})
}

type errorItem struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	Errors     []errorItem
}

func (e *HTTPError) Error() string {
	if len(e.Errors) > 0 && strings.TrimSpace(e.Errors[0].Message) != "" {
		return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Errors[0].Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *Client) do(ctx context.Context, path string, body any) error {
	backoff := c.backoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, err := c.doOnce(ctx, path, body)
		if err == nil {
			return nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("SendGrid request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
	return errors.New("unreachable retry loop")
}

func (c *Client) doOnce(ctx context.Context, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		var er struct {
			Errors []errorItem `json:"errors"`
		}
		if json.Unmarshal(raw, &er) == nil {
			he.Errors = er.Errors
		}
		return resp, he
	}
	return resp, nil
}
