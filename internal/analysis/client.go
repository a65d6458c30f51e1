// Package analysis submits research questions to the remote article
// analysis service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/rsrch/internal/config"
	"github.com/pders01/rsrch/internal/debuglog"
)

// Submitter sends one query and returns the service's answer text.
type Submitter interface {
	Submit(ctx context.Context, query string) (string, error)
}

type Client struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	maxBytes  int64
	client    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithEndpoint overrides the configured endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		endpoint:  cfg.API.Endpoint,
		userAgent: cfg.API.UserAgent,
		timeout:   cfg.API.Timeout,
		maxBytes:  cfg.API.MaxResponseBytes,
		client:    &http.Client{},
	}
	if c.maxBytes <= 0 {
		c.maxBytes = config.DefaultMaxResponseBytes
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Submitter = (*Client)(nil)

// Endpoint returns the URL queries are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

type analyzeRequest struct {
	Query string `json:"query"`
}

type analyzeResponse struct {
	Answer json.RawMessage `json:"answer"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// validationIssue is one entry of a list-valued detail, as produced by
// FastAPI request validation.
type validationIssue struct {
	Msg string `json:"msg"`
}

// Submit posts query and returns the answer. Failures are returned as
// *TransportError, *ServiceError or *MalformedResultError.
func (c *Client) Submit(ctx context.Context, query string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(analyzeRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	log := debuglog.WithFields(map[string]interface{}{
		"request_id": requestID,
		"endpoint":   c.endpoint,
	})
	log.Infof("submitting query (%d chars)", len(query))
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		terr := c.transportError(ctx, err)
		log.Warnf("request failed after %s: %v", time.Since(start), err)
		return "", terr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		log.Warnf("reading response failed: %v", err)
		return "", c.transportError(ctx, fmt.Errorf("reading response: %w", err))
	}
	if int64(len(body)) > c.maxBytes {
		return "", &MalformedResultError{Reason: fmt.Sprintf("response larger than %d bytes", c.maxBytes)}
	}

	log = log.With("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &ServiceError{Status: resp.StatusCode, Detail: parseDetail(body)}
		log.Warnf("service error after %s: %s", time.Since(start), serr)
		return "", serr
	}

	answer, err := parseAnswer(body)
	if err != nil {
		log.Warnf("undecodable answer: %v", err)
		return "", err
	}

	log.Infof("answer received in %s (%d chars)", time.Since(start), len(answer))
	return answer, nil
}

func (c *Client) transportError(ctx context.Context, err error) *TransportError {
	terr := &TransportError{Err: err}
	var nerr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		terr.Timeout = true
		terr.After = c.timeout
	}
	return terr
}

// parseAnswer extracts the answer string. A missing or non-string answer is
// an empty result; a body that is not a JSON object is malformed.
func parseAnswer(body []byte) (string, error) {
	var r analyzeResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", &MalformedResultError{Reason: "body is not a JSON object", Err: err}
	}
	if len(r.Answer) == 0 {
		return "", nil
	}
	var answer string
	if err := json.Unmarshal(r.Answer, &answer); err != nil {
		return "", nil
	}
	return answer, nil
}

// parseDetail pulls a human-readable message out of an error body. It
// returns "" when there is nothing usable.
func parseDetail(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil || len(e.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(e.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}

	var issues []validationIssue
	if err := json.Unmarshal(e.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if m := strings.TrimSpace(issue.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
