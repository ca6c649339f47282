package payu

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// RawResponse is an undecoded processor reply.
type RawResponse struct {
	Status int
	Body   []byte
}

// Transport delivers a serialized request to the processor. Non-2xx replies
// are returned as responses; only failures to get a reply are errors.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) (RawResponse, error)
}

// HTTPTransport posts JSON over net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport builds a transport with a per-request timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{client: &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}}
}

// NewHTTPTransportWithClient wraps an existing client, e.g. one from httptest.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, body []byte) (RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return RawResponse{}, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return RawResponse{}, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return RawResponse{}, &TransportError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return RawResponse{Status: resp.StatusCode, Body: payload}, nil
}

// RecordingTransport writes every exchange of the wrapped transport to W,
// passed through Scrub when set.
type RecordingTransport struct {
	Next  Transport
	W     io.Writer
	Scrub func(string) string

	mu sync.Mutex
}

// NewRecordingTransport decorates next with transcript capture.
func NewRecordingTransport(next Transport, w io.Writer, scrub func(string) string) *RecordingTransport {
	return &RecordingTransport{Next: next, W: w, Scrub: scrub}
}

func (t *RecordingTransport) Post(ctx context.Context, url string, body []byte) (RawResponse, error) {
	resp, err := t.Next.Post(ctx, url, body)

	var b bytes.Buffer
	fmt.Fprintf(&b, "-> POST %s\n%s\n", url, body)
	if err != nil {
		fmt.Fprintf(&b, "<- error: %v\n", err)
	} else {
		fmt.Fprintf(&b, "<- %d\n%s\n", resp.Status, resp.Body)
	}
	text := b.String()
	if t.Scrub != nil {
		text = t.Scrub(text)
	}

	t.mu.Lock()
	_, _ = io.WriteString(t.W, text)
	t.mu.Unlock()

	return resp, err
}
