// Package render talks to the document rendering service.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

var (
	// ErrUnknownTemplate is returned when the service does not know the template.
	ErrUnknownTemplate = errors.New("rendering service: unknown template")
	ErrNotConfigured   = errors.New("rendering service: base url not configured")
)

const RequestIDHeader = "X-Request-Id"

// Handle is the service's reference to a rendered document. It is opaque to the
// rest of the system.
type Handle struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

type Options struct {
	BaseURL       string
	Token         string
	RatePerSecond float64
	Timeout       time.Duration
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter

	entropyMu sync.Mutex
	entropy   io.Reader
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

type renderRequest struct {
	TemplateID string          `json:"templateId"`
	Data       json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Render submits spec and returns the handle of the rendered document.
func (c *Client) Render(ctx context.Context, spec plan.GenerationSpec) (Handle, error) {
	if c.baseURL == "" {
		return Handle{}, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Handle{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := json.Marshal(renderRequest{TemplateID: spec.TemplateID, Data: spec.Data})
	if err != nil {
		return Handle{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/documents", bytes.NewReader(body))
	if err != nil {
		return Handle{}, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, c.requestID())

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Handle{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusNotFound:
		var e errorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error == "template_not_found" {
			return Handle{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, spec.TemplateID)
		}

		return Handle{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	default:
		return Handle{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var h Handle
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Handle{}, fmt.Errorf("decoding response: %w", err)
	}

	if h.ID == "" {
		return Handle{}, errors.New("rendering service returned an empty handle")
	}

	return h, nil
}

func (c *Client) requestID() string {
	c.entropyMu.Lock()
	defer c.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
}
