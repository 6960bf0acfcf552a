package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/taleweaver/internal/ports"
	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu          sync.Mutex
	tokens      []string
	completions atomic.Int32
	done        chan ports.StreamResult
}

func newRecorder() *recorder {
	return &recorder{done: make(chan ports.StreamResult, 4)}
}

func (r *recorder) onToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens = append(r.tokens, token)
}

func (r *recorder) onComplete(result ports.StreamResult) {
	r.completions.Add(1)
	r.done <- result
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.tokens...)
}

func (r *recorder) wait(t *testing.T) ports.StreamResult {
	t.Helper()

	select {
	case result := <-r.done:
		return result
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not complete")
		return ports.StreamResult{}
	}
}

func newTestClient(t *testing.T, opts Options) (*Client, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	if opts.BaseURL == "" {
		opts.BaseURL = "http://127.0.0.1:1"
	}
	if opts.Model == "" {
		opts.Model = "mistral"
	}
	opts.PollInterval = time.Millisecond
	opts.Registerer = reg

	client, err := NewClient(opts)
	require.NoError(t, err)
	return client, reg
}

func TestClientReassemblesLineSplitAcrossChunks(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

	transport.push(`{"response":"Hel`)
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, rec.snapshot())

	transport.push("lo\",\"done\":false}\n")
	transport.end(nil)

	result := rec.wait(t)
	assert.Equal(t, ports.StreamCompleted, result.Outcome)
	assert.Equal(t, []string{"Hello"}, rec.snapshot())
	assert.Equal(t, "Hello", result.Text)
	assert.Equal(t, StateCompleted, client.State())
}

func TestClientStreamSplitInsideDoneKey(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

	transport.push("{\"response\":\"Hel\"}\n{\"response\":\"lo \"}\n{\"response\":\"world\",\"do")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Hel", "lo "}, rec.snapshot())

	transport.push("ne\":true}\n")
	transport.end(nil)

	result := rec.wait(t)
	assert.Equal(t, ports.StreamCompleted, result.Outcome)
	assert.Equal(t, []string{"Hel", "lo ", "world"}, rec.snapshot())
	assert.Equal(t, "Hello world", result.Text)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), rec.completions.Load())
}

func TestClientSkipsMalformedAndEmptyLines(t *testing.T) {
	transport := &scriptedTransport{}
	client, reg := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	transport.push("{\"response\":\"The \"}\n\n{not json}\n{\"response\":\"end\"}\n{\"response\":\"\",\"done\":true}\n")
	transport.end(nil)
	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

	result := rec.wait(t)
	assert.Equal(t, ports.StreamCompleted, result.Outcome)
	assert.Equal(t, []string{"The ", "end"}, rec.snapshot())
	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.malformed))
	assert.Equal(t, 2.0, testutil.ToFloat64(client.metrics.tokens))
	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.streams.WithLabelValues("completed")))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "taleweaver_stream_duration_seconds"))
}

func TestClientDecodesTrailingFragmentOnCompletion(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	transport.push("{\"response\":\"a\"}\n{\"response\":\"b\",\"done\":true}")
	transport.end(nil)
	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

	result := rec.wait(t)
	assert.Equal(t, ports.StreamCompleted, result.Outcome)
	assert.Equal(t, []string{"a", "b"}, rec.snapshot())
}

func TestClientIgnoresDoneFlagUntilTransportCompletes(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	transport.push("{\"response\":\"a\",\"done\":true}\n")
	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), rec.completions.Load())
	assert.Equal(t, StateStreaming, client.State())

	transport.end(nil)
	rec.wait(t)
	assert.Equal(t, []string{"a"}, rec.snapshot())
}

func TestClientTransportFailureEmitsErrorToken(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	transport.push("{\"response\":\"Once\"}\n")
	transport.end(errors.New("connection reset"))
	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

	result := rec.wait(t)
	assert.Equal(t, ports.StreamFailed, result.Outcome)
	require.Error(t, result.Err)
	assert.Equal(t, []string{"Once", failedResponseMessage}, rec.snapshot())
	assert.Equal(t, "Once"+failedResponseMessage, result.Text)
	assert.Equal(t, StateFailed, client.State())
}

func TestClientServerErrorLineFailsStream(t *testing.T) {
	testCases := []struct {
		name   string
		stream string
	}{
		{name: "terminated line", stream: "{\"response\":\"Once\"}\n{\"error\":\"model runner crashed\"}\n{\"response\":\"ignored\"}\n"},
		{name: "trailing fragment", stream: "{\"response\":\"Once\"}\n{\"error\":\"model runner crashed\"}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &scriptedTransport{}
			client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
			rec := newRecorder()

			transport.push(tc.stream)
			transport.end(nil)
			require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

			result := rec.wait(t)
			assert.Equal(t, ports.StreamFailed, result.Outcome)
			assert.ErrorIs(t, result.Err, ErrServerReported)
			assert.ErrorContains(t, result.Err, "model runner crashed")
			assert.Equal(t, []string{"Once", failedResponseMessage}, rec.snapshot())
			assert.Equal(t, "Once"+failedResponseMessage, result.Text)
			assert.Equal(t, StateFailed, client.State())
			assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.streams.WithLabelValues("failed")))
		})
	}
}

func TestClientDialFailureEmitsErrorToken(t *testing.T) {
	dialErr := errors.New("connection refused")
	client, _ := newTestClient(t, Options{Dialer: DialerFunc(func(context.Context, []byte) (Transport, error) {
		return nil, dialErr
	})})
	rec := newRecorder()

	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))

	result := rec.wait(t)
	assert.Equal(t, ports.StreamFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, dialErr)
	assert.Equal(t, []string{failedResponseMessage}, rec.snapshot())
}

func TestClientRejectsConcurrentStart(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	first := newRecorder()
	second := newRecorder()

	require.NoError(t, client.Start(context.Background(), "one", first.onToken, first.onComplete))
	err := client.Start(context.Background(), "two", second.onToken, second.onComplete)
	require.ErrorIs(t, err, ErrStreamActive)

	transport.push("{\"response\":\"first\"}\n")
	transport.end(nil)

	result := first.wait(t)
	assert.Equal(t, ports.StreamCompleted, result.Outcome)
	assert.Equal(t, []string{"first"}, first.snapshot())
	assert.Empty(t, second.snapshot())
	assert.Equal(t, int32(0), second.completions.Load())

	next := &scriptedTransport{}
	next.end(nil)
	client.dialer = dialerFor(next)
	require.NoError(t, client.Start(context.Background(), "three", second.onToken, second.onComplete))
	second.wait(t)
}

func TestClientCancelStopsStreamOnce(t *testing.T) {
	transport := &scriptedTransport{}
	client, reg := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))
	transport.push("{\"response\":\"Part\"}\n")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, time.Millisecond)

	client.Cancel()
	result := rec.wait(t)
	assert.Equal(t, ports.StreamCancelled, result.Outcome)
	assert.Equal(t, "Part", result.Text)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), rec.completions.Load())
	assert.Equal(t, []string{"Part"}, rec.snapshot())
	assert.Equal(t, int32(1), transport.closed.Load())
	assert.Equal(t, StateCancelled, client.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.streams.WithLabelValues("cancelled")))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "taleweaver_streams_total"))
}

func TestClientCallerContextCancellation(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, client.Start(ctx, "prompt", rec.onToken, rec.onComplete))
	cancel()

	result := rec.wait(t)
	assert.Equal(t, ports.StreamCancelled, result.Outcome)
	assert.Empty(t, rec.snapshot())
}

func TestClientRecoversFromPanickingTokenCallback(t *testing.T) {
	transport := &scriptedTransport{}
	client, _ := newTestClient(t, Options{Dialer: dialerFor(transport)})
	rec := newRecorder()

	var calls []string
	var mu sync.Mutex
	onToken := func(token string) {
		mu.Lock()
		calls = append(calls, token)
		mu.Unlock()
		if token == "boom" {
			panic("renderer exploded")
		}
	}

	transport.push("{\"response\":\"boom\"}\n{\"response\":\"never\"}\n")
	transport.end(nil)
	require.NoError(t, client.Start(context.Background(), "prompt", onToken, rec.onComplete))

	result := rec.wait(t)
	assert.Equal(t, ports.StreamFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, ErrInternal)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"boom", internalErrorMessage}, calls)
	assert.Equal(t, int32(1), rec.completions.Load())
}

func TestClientSetModel(t *testing.T) {
	client, _ := newTestClient(t, Options{})

	assert.Equal(t, "mistral", client.Model())
	client.SetModel("llama3:8b")
	assert.Equal(t, "llama3:8b", client.Model())
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "localhost"})
	require.Error(t, err)
}

func TestClientStreamsFromHTTPServer(t *testing.T) {
	type captured struct {
		request     api.GenerateRequest
		contentType string
	}
	seen := make(chan captured, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req api.GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen <- captured{request: req, contentType: r.Header.Get("Content-Type")}

		flusher := w.(http.Flusher)
		for _, word := range []string{"The ", "tide ", "turns."} {
			_, _ = fmt.Fprintf(w, "{\"response\":%q,\"done\":false}\n", word)
			flusher.Flush()
			time.Sleep(5 * time.Millisecond)
		}
		_, _ = io.WriteString(w, "{\"response\":\"\",\"done\":true}\n")
	}))
	defer server.Close()

	client, _ := newTestClient(t, Options{BaseURL: server.URL, Model: "llama3"})
	rec := newRecorder()

	require.NoError(t, client.Start(context.Background(), "Tell me more", rec.onToken, rec.onComplete))
	result := rec.wait(t)

	assert.Equal(t, ports.StreamCompleted, result.Outcome)
	assert.Equal(t, "The tide turns.", result.Text)
	assert.Equal(t, []string{"The ", "tide ", "turns."}, rec.snapshot())

	got := <-seen
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "llama3", got.request.Model)
	assert.Equal(t, "Tell me more", got.request.Prompt)
	require.NotNil(t, got.request.Stream)
	assert.True(t, *got.request.Stream)
}

func TestClientHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := newTestClient(t, Options{BaseURL: server.URL})
	rec := newRecorder()

	require.NoError(t, client.Start(context.Background(), "prompt", rec.onToken, rec.onComplete))
	result := rec.wait(t)

	assert.Equal(t, ports.StreamFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, ErrUnexpectedStatus)
	assert.Equal(t, []string{failedResponseMessage}, rec.snapshot())
}

func TestClientListAvailableModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"models":[{"name":"mistral:latest","size":1},{"name":"llama3:8b","size":2}]}`)
	}))
	defer server.Close()

	client, _ := newTestClient(t, Options{BaseURL: server.URL})

	assert.Equal(t, []string{"mistral:latest", "llama3:8b"}, client.ListAvailableModels(context.Background()))
}

func TestClientListAvailableModelsFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newTestClient(t, Options{BaseURL: server.URL, Model: "custom"})
	assert.Equal(t, []string{"custom"}, client.ListAvailableModels(context.Background()))

	server.Close()
	assert.Equal(t, []string{"custom"}, client.ListAvailableModels(context.Background()))
}
