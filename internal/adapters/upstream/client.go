package upstream

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
	"syscall"

	"github.com/Sama14b/orchestrator/internal/domain"
)

// maxErrorBody caps how much of an upstream failure body is relayed.
const maxErrorBody = 8 << 10

// client is the shared plumbing for both upstream adapters. Per-call
// deadlines come from the caller's context, so the http.Client carries no
// timeout of its own.
type client struct {
	stage   domain.Stage
	baseURL string
	http    *http.Client
}

func newClient(stage domain.Stage, baseURL string) client {
	return client{
		stage:   stage,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// postJSON sends body to path and decodes a 2xx response into out. Transport
// faults and non-success statuses come back already classified and tagged
// with this client's stage.
func (c *client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.stage, err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.stage, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifyTransport(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.NewUpstream(c.stage, url, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.stage, err)
	}
	return nil
}

// classifyTransport maps a failed round trip onto the taxonomy. The stage tag
// is this client's own identity, fixed before the call was made.
func (c *client) classifyTransport(url string, err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.NewUnavailable(c.stage, url, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeout(c.stage, url, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.NewTimeout(c.stage, url, err)
	}

	// dial failures that are neither refused nor timed out (no route, DNS)
	// still mean the endpoint was unreachable
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return domain.NewUnavailable(c.stage, url, err)
	}

	return fmt.Errorf("%s: call %s: %w", c.stage, url, err)
}

// probe issues the bounded GET /health check and returns the raw body.
func (c *client) probe(ctx context.Context) (string, error) {
	url := c.baseURL + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("health returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return strings.TrimSpace(string(b)), nil
}
