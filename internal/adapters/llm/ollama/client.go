package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/taleweaver/internal/ports"
	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL      = "http://localhost:11434"
	DefaultPollInterval = 15 * time.Millisecond

	failedResponseMessage = "\nError: Failed to get response from the model."
	internalErrorMessage  = "\nError: Something went wrong."
)

var (
	ErrStreamActive   = ports.ErrStreamActive
	ErrInternal       = errors.New("internal stream failure")
	// ErrServerReported wraps an error object the server sent in place of a chunk.
	ErrServerReported = errors.New("server reported error")
)

// streamChunk is one NDJSON line of a generate stream. Ollama reports
// mid-stream failures as {"error": "..."} on an otherwise healthy 200 response.
type streamChunk struct {
	api.GenerateResponse
	Error string `json:"error,omitempty"`
}

type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Options struct {
	BaseURL      string
	Model        string
	PollInterval time.Duration
	HTTPClient   *http.Client
	// Dialer replaces the HTTP transport, mostly in tests.
	Dialer     Dialer
	Registerer prometheus.Registerer
	Logger     *zap.Logger
}

// Client streams completions from an Ollama server, one stream at a time.
type Client struct {
	api     *api.Client
	dialer  Dialer
	poll    time.Duration
	metrics *Metrics
	logger  *zap.Logger

	mu     sync.Mutex
	model  string
	state  State
	active bool
	cancel context.CancelFunc
}

var _ ports.CompletionStreamer = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ollama base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse ollama base url %q: scheme and host are required", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = NewHTTPDialer(base, httpClient)
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		api:     api.NewClient(base, httpClient),
		dialer:  dialer,
		poll:    poll,
		metrics: NewMetrics(opts.Registerer),
		logger:  logger.Named("ollama"),
		model:   opts.Model,
	}, nil
}

func (c *Client) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name != c.model {
		c.logger.Debug("model set", zap.String("model", name))
	}
	c.model = name
}

func (c *Client) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.model
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Start begins streaming a completion for prompt. Callbacks run on the stream
// goroutine. onComplete is called exactly once unless Start returns an error.
func (c *Client) Start(ctx context.Context, prompt string, onToken func(string), onComplete func(ports.StreamResult)) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrStreamActive
	}
	streamCtx, cancel := context.WithCancel(ctx)
	c.active = true
	c.state = StateRequesting
	c.cancel = cancel
	model := c.model
	c.mu.Unlock()

	if onToken == nil {
		onToken = func(string) {}
	}
	if onComplete == nil {
		onComplete = func(ports.StreamResult) {}
	}

	s := &stream{
		client:     c,
		ctx:        streamCtx,
		cancel:     cancel,
		model:      model,
		prompt:     prompt,
		onToken:    onToken,
		onComplete: onComplete,
		started:    time.Now(),
	}
	go s.run()

	return nil
}

// Cancel stops the active stream, if any. Its completion reports StreamCancelled.
func (c *Client) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// ListAvailableModels returns the server's model names. Failures fall back to the current model.
func (c *Client) ListAvailableModels(ctx context.Context) []string {
	resp, err := c.api.List(ctx)
	if err != nil {
		current := c.Model()
		c.logger.Warn("list models failed", zap.Error(err), zap.String("fallback", current))
		return []string{current}
	}

	names := make([]string, 0, len(resp.Models))
	for _, model := range resp.Models {
		names = append(names, model.Name)
	}
	c.logger.Debug("models listed", zap.Strings("models", names))

	return names
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// release ends the active stream so the next Start is accepted.
func (c *Client) release(state State) {
	c.mu.Lock()
	c.state = state
	c.active = false
	c.cancel = nil
	c.mu.Unlock()
}

type stream struct {
	client     *Client
	ctx        context.Context
	cancel     context.CancelFunc
	model      string
	prompt     string
	onToken    func(string)
	onComplete func(ports.StreamResult)
	started    time.Time

	text      strings.Builder
	once      sync.Once
	completed bool
}

func (s *stream) run() {
	defer func() {
		if r := recover(); r != nil {
			s.client.logger.Error("stream panicked", zap.Any("panic", r), zap.String("model", s.model))
			if s.completed {
				return
			}
			s.safeEmit(internalErrorMessage)
			s.finish(ports.StreamFailed, fmt.Errorf("%w: %v", ErrInternal, r))
		}
	}()

	body, err := json.Marshal(api.GenerateRequest{
		Model:  s.model,
		Prompt: s.prompt,
		Stream: func(b bool) *bool { return &b }(true),
	})
	if err != nil {
		s.fail(fmt.Errorf("encode generate request: %w", err))
		return
	}

	transport, err := s.client.dialer.Dial(s.ctx, body)
	if err != nil {
		if s.ctx.Err() != nil {
			s.finish(ports.StreamCancelled, s.ctx.Err())
			return
		}
		s.fail(err)
		return
	}
	defer func() {
		if err := transport.Close(); err != nil {
			s.client.logger.Debug("close transport", zap.Error(err))
		}
	}()

	s.client.setState(StateStreaming)
	s.consume(transport)
}

func (s *stream) consume(transport Transport) {
	ticker := time.NewTicker(s.client.poll)
	defer ticker.Stop()

	var cursor lineCursor
	for {
		select {
		case <-s.ctx.Done():
			s.finish(ports.StreamCancelled, s.ctx.Err())
			return
		case <-ticker.C:
		}

		data, complete := transport.Snapshot()
		for _, line := range cursor.next(data) {
			if err := s.decode(line); err != nil {
				s.fail(err)
				return
			}
		}
		if !complete {
			continue
		}

		if err := transport.Err(); err != nil {
			if s.ctx.Err() != nil {
				s.finish(ports.StreamCancelled, s.ctx.Err())
				return
			}
			s.fail(fmt.Errorf("read generate response: %w", err))
			return
		}
		if tail := cursor.rest(data); len(tail) > 0 {
			if err := s.decode(tail); err != nil {
				s.fail(err)
				return
			}
		}
		s.finish(ports.StreamCompleted, nil)
		return
	}
}

// decode emits the fragment carried by line. Malformed lines are skipped; an
// error object ends the stream with the returned error.
func (s *stream) decode(line []byte) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	var chunk streamChunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		s.client.metrics.malformed.Inc()
		s.client.logger.Warn("skipping malformed stream line", zap.Error(err), zap.ByteString("line", line))
		return nil
	}
	if msg := strings.TrimSpace(chunk.Error); msg != "" {
		return fmt.Errorf("%w: %s", ErrServerReported, msg)
	}
	if chunk.Response != "" {
		s.emit(chunk.Response)
	}

	return nil
}

func (s *stream) emit(token string) {
	s.text.WriteString(token)
	s.client.metrics.tokens.Inc()
	s.onToken(token)
}

// safeEmit delivers the error token even when the token callback itself is what panicked.
func (s *stream) safeEmit(token string) {
	defer func() {
		if r := recover(); r != nil {
			s.client.logger.Error("token callback panicked", zap.Any("panic", r))
		}
	}()

	s.text.WriteString(token)
	s.onToken(token)
}

func (s *stream) fail(err error) {
	s.client.logger.Error("completion stream failed", zap.Error(err), zap.String("model", s.model))
	s.safeEmit(failedResponseMessage)
	s.finish(ports.StreamFailed, err)
}

func (s *stream) finish(outcome ports.StreamOutcome, err error) {
	s.once.Do(func() {
		s.completed = true
		s.cancel()

		state := StateCompleted
		switch outcome {
		case ports.StreamFailed:
			state = StateFailed
		case ports.StreamCancelled:
			state = StateCancelled
		}
		s.client.release(state)

		s.client.metrics.streams.WithLabelValues(string(outcome)).Inc()
		s.client.metrics.duration.Observe(time.Since(s.started).Seconds())
		s.client.logger.Debug("completion stream finished",
			zap.String("model", s.model),
			zap.String("outcome", string(outcome)),
			zap.Duration("elapsed", time.Since(s.started)),
		)

		s.onComplete(ports.StreamResult{Outcome: outcome, Text: s.text.String(), Err: err})
	})
}
