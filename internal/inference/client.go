package inference

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/registry"
)

// FrameType identifies one frame of an inference stream.
type FrameType string

const (
	// FrameTypePartial carries an incremental chunk of model output
	FrameTypePartial FrameType = "partial"
	// FrameTypeUsage carries the stream's single usage report
	FrameTypeUsage FrameType = "usage"
	// FrameTypeDone terminates the stream
	FrameTypeDone FrameType = "done"
)

// Usage is the upstream-reported resource consumption for one request.
type Usage struct {
	InputTokens  int64           `json:"input_tokens"`
	OutputTokens int64           `json:"output_tokens"`
	Cost         decimal.Decimal `json:"cost"`
}

// Frame is one decoded server-sent event from the upstream stream.
type Frame struct {
	Type FrameType
	// Data is the raw partial-output payload, set for partial frames
	Data json.RawMessage
	// Usage is set for usage frames
	Usage *Usage
}

// Request describes one upstream inference call. BaseURL and Provider come
// from BYOK resolution; the credential is injected here, never logged.
type Request struct {
	Provider domain.Provider
	BaseURL  string
	APIKey   string
	Pool     domain.CapabilityPool
	Body     json.RawMessage
}

// Stream yields decoded frames until the done frame or an error.
type Stream interface {
	// Recv returns the next frame. io.EOF after the done frame.
	Recv() (*Frame, error)
	// Close releases the underlying connection
	Close() error
}

// Client forwards inference requests to an allow-listed upstream provider.
//
//go:generate mockgen -source=client.go -destination=../mocks/inference.go -package=mocks -mock_names=Client=MockInferenceClient,Stream=MockInferenceStream
type Client interface {
	// Stream opens a streaming completion against the resolved provider
	Stream(ctx context.Context, req *Request) (Stream, error)
}

type httpClient struct {
	client *http.Client
	hosts  registry.HostRegistry
	json   adapter.JSON
}

// NewClient creates a new upstream inference client. The timeout bounds the
// whole stream, not just the dial.
func NewClient(timeout time.Duration, hosts registry.HostRegistry, js adapter.JSON) Client {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
		},
		hosts: hosts,
		json:  js,
	}
}

// Stream opens a streaming completion against the resolved provider.
// The target host is re-checked against the allow-list even though routing
// already pinned it: a request must never leave for an unlisted host.
func (c *httpClient) Stream(ctx context.Context, req *Request) (Stream, error) {
	target, err := url.Parse(req.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse upstream base URL: %w", err)
	}
	if target.Scheme != "https" {
		return nil, fmt.Errorf("upstream scheme %q is not https: %w", target.Scheme, domain.ErrForbidden)
	}
	host := strings.ToLower(target.Hostname())
	if !c.hosts.IsAllowedHost(req.Provider, host) {
		return nil, fmt.Errorf("upstream host %q is not allow-listed for provider %s: %w", host, req.Provider, domain.ErrForbidden)
	}

	target = target.JoinPath("v1", "completions")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	setCredential(httpReq, req.Provider, req.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach upstream provider: %w", domain.ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, upstreamStatusError(resp.StatusCode, body)
	}

	return newSSEStream(resp.Body, c.json), nil
}

// setCredential injects the provider's expected auth header. The Anthropic
// API does not use a bearer scheme.
func setCredential(req *http.Request, provider domain.Provider, apiKey string) {
	switch provider {
	case domain.ProviderAnthropic:
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

func upstreamStatusError(status int, body []byte) error {
	switch {
	case status == http.StatusBadRequest:
		return fmt.Errorf("upstream rejected request: %s: %w", string(body), domain.ErrValidation)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		// The tenant's stored key was refused; not a gateway auth failure.
		return fmt.Errorf("upstream refused credential (status %d): %w", status, domain.ErrForbidden)
	default:
		return fmt.Errorf("upstream returned status %d: %w", status, domain.ErrUpstreamUnavailable)
	}
}

// sseStream decodes text/event-stream frames from the upstream body.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	json    adapter.JSON
	done    bool
}

func newSSEStream(body io.ReadCloser, js adapter.JSON) Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{
		body:    body,
		scanner: scanner,
		json:    js,
	}
}

// Recv returns the next frame. io.EOF after the done frame.
func (s *sseStream) Recv() (*Frame, error) {
	if s.done {
		return nil, io.EOF
	}

	event, data, err := s.nextEvent()
	if err != nil {
		return nil, err
	}

	switch FrameType(event) {
	case FrameTypePartial:
		return &Frame{Type: FrameTypePartial, Data: json.RawMessage(data)}, nil
	case FrameTypeUsage:
		var usage Usage
		if err := s.json.Unmarshal(data, &usage); err != nil {
			return nil, fmt.Errorf("failed to decode usage frame: %w", err)
		}
		return &Frame{Type: FrameTypeUsage, Usage: &usage}, nil
	case FrameTypeDone:
		s.done = true
		return &Frame{Type: FrameTypeDone}, nil
	default:
		return nil, fmt.Errorf("unknown stream frame type %q", event)
	}
}

// nextEvent reads one blank-line-terminated SSE event block.
func (s *sseStream) nextEvent() (event string, data []byte, err error) {
	var dataLines []string
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			if event != "" || len(dataLines) > 0 {
				return event, []byte(strings.Join(dataLines, "\n")), nil
			}
			continue
		}
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// comment line, keep-alive
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("upstream stream interrupted: %w", err)
	}
	// Stream ended without a done frame.
	return "", nil, fmt.Errorf("upstream stream ended before done frame: %w", io.ErrUnexpectedEOF)
}

// Close releases the underlying connection.
func (s *sseStream) Close() error {
	return s.body.Close()
}
