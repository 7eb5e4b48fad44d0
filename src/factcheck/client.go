package factcheck

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

	"github.com/veritynews/verity/src/webclient"
)

// Validation modes accepted by the verification service. Unknown modes
// are rejected by the service, not validated here.
const (
	ModeSummary   = "summary"
	ModeStandard  = "standard"
	ModeThorough  = "thorough"
	ModeSynthesis = "synthesis"
)

// Job statuses reported by the verification service.
const (
	StatusQueued   = "queued"
	StatusStarted  = "started"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// ErrJobNotFound indicates the service has no job with the given id.
var ErrJobNotFound = errors.New("factcheck: job not found")

// JobStatus is one status poll observation.
type JobStatus struct {
	State    string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"error,omitempty"` // service-reported failure reason
}

// Client is the contract with the external verification service. All
// calls surface transport errors unmodified; retry policy belongs to
// the Orchestrator, never here.
type Client interface {
	Submit(ctx context.Context, url, mode string) (jobID string, err error)
	Status(ctx context.Context, jobID string) (JobStatus, error)
	Result(ctx context.Context, jobID string) (json.RawMessage, error)
	Cancel(ctx context.Context, jobID string) error
}

const defaultTimeout = 30 * time.Second

// HTTPClient talks JSON over HTTP to the verification service.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the verification service at
// endpoint. The key may be empty for unauthenticated deployments.
func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: webclient.NewDefault(defaultTimeout),
	}
}

func (c *HTTPClient) Submit(ctx context.Context, url, mode string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"url": url, "mode": mode})
	body, err := c.do(ctx, http.MethodPost, "/v1/jobs", payload)
	if err != nil {
		return "", err
	}
	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("submit: decode response: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("submit: service returned no job id")
	}
	return out.JobID, nil
}

func (c *HTTPClient) Status(ctx context.Context, jobID string) (JobStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/jobs/"+jobID, nil)
	if err != nil {
		return JobStatus{}, err
	}
	var st JobStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return JobStatus{}, fmt.Errorf("status: decode response: %w", err)
	}
	return st, nil
}

func (c *HTTPClient) Result(ctx context.Context, jobID string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/jobs/"+jobID+"/result", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *HTTPClient) Cancel(ctx context.Context, jobID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/jobs/"+jobID, nil)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, rdr)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w (%s %s)", ErrJobNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("factcheck: %s %s: status %d: %s", method, path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
