package ollama

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

const generatePath = "/api/generate"

var ErrUnexpectedStatus = errors.New("unexpected response status")

// Transport exposes a response body that is still being received.
type Transport interface {
	// Snapshot returns every byte received so far and whether the body is complete.
	// The returned slice must not be modified.
	Snapshot() ([]byte, bool)
	// Err reports why the body ended early. It is nil for a clean end of stream.
	Err() error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, body []byte) (Transport, error)
}

type DialerFunc func(ctx context.Context, body []byte) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context, body []byte) (Transport, error) {
	return f(ctx, body)
}

type HTTPDialer struct {
	endpoint string
	client   *http.Client
}

func NewHTTPDialer(baseURL *url.URL, client *http.Client) *HTTPDialer {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPDialer{endpoint: baseURL.JoinPath(generatePath).String(), client: client}
}

// Dial posts body and returns once the response headers arrived. The body is
// then read in the background.
func (d *HTTPDialer) Dial(ctx context.Context, body []byte) (Transport, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("post %s: %w", d.endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(detail))
	}

	t := &httpTransport{body: resp.Body, cancel: cancel}
	go t.read()

	return t, nil
}

type httpTransport struct {
	body   io.ReadCloser
	cancel context.CancelFunc

	mu       sync.Mutex
	buf      []byte
	complete bool
	err      error

	closeOnce sync.Once
	closeErr  error
}

func (t *httpTransport) read() {
	chunk := make([]byte, 4096)
	for {
		n, err := t.body.Read(chunk)
		t.mu.Lock()
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
		}
		if err != nil {
			t.complete = true
			if !errors.Is(err, io.EOF) {
				t.err = err
			}
		}
		t.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (t *httpTransport) Snapshot() ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.buf[:len(t.buf):len(t.buf)], t.complete
}

func (t *httpTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

func (t *httpTransport) Close() error {
	t.closeOnce.Do(func() {
		t.cancel()
		t.closeErr = t.body.Close()
	})

	return t.closeErr
}
