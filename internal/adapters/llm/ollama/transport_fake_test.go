package ollama

import (
	"context"
	"sync"
	"sync/atomic"
)

// scriptedTransport is fed by the test instead of a network connection.
type scriptedTransport struct {
	mu       sync.Mutex
	data     []byte
	complete bool
	err      error
	closed   atomic.Int32
}

func (t *scriptedTransport) push(chunk string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data = append(t.data, chunk...)
}

func (t *scriptedTransport) end(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.complete = true
	t.err = err
}

func (t *scriptedTransport) Snapshot() ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.data[:len(t.data):len(t.data)], t.complete
}

func (t *scriptedTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

func (t *scriptedTransport) Close() error {
	t.closed.Add(1)
	return nil
}

func dialerFor(transport Transport) Dialer {
	return DialerFunc(func(context.Context, []byte) (Transport, error) {
		return transport, nil
	})
}
