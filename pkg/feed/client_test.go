package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedConn struct {
	messages chan []byte
	closed   bool
}

func (c *scriptedConn) Messages() <-chan []byte { return c.messages }
func (c *scriptedConn) Close() error {
	c.closed = true
	return nil
}

// scriptedTransport returns the scripted outcomes in order; the last entry
// repeats forever.
type scriptedTransport struct {
	mu       sync.Mutex
	outcomes []func() (Conn, error)
	attempts int
}

func (t *scriptedTransport) Connect(ctx context.Context) (Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.attempts
	if idx >= len(t.outcomes) {
		idx = len(t.outcomes) - 1
	}
	t.attempts++
	return t.outcomes[idx]()
}

func TestRunRetriesForeverWithFixedDelay(t *testing.T) {
	t.Parallel()

	conn := &scriptedConn{messages: make(chan []byte)}
	close(conn.messages) // drops immediately once connected

	dialErr := errors.New("broker down")
	transport := &scriptedTransport{outcomes: []func() (Conn, error){
		func() (Conn, error) { return nil, dialErr },
		func() (Conn, error) { return nil, dialErr },
		func() (Conn, error) { return conn, nil },
	}}

	ctx, cancel := context.WithCancel(context.Background())

	var states []State
	var delays []time.Duration
	client, err := New(Options{
		Transport:      transport,
		ReconnectDelay: 5 * time.Second,
		OnOrder:        func(api.Order) {},
		OnState:        func(s State) { states = append(states, s) },
		wait: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			if len(delays) == 3 {
				cancel()
				return ctx.Err()
			}
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, client.Run(ctx))

	// two dial failures, one established-then-dropped connection, each
	// followed by a scheduled retry at the fixed delay
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, delays)
	assert.True(t, conn.closed)

	assert.Equal(t, []State{
		StateDisconnected,
		StateConnecting, StateDisconnected,
		StateConnecting, StateDisconnected,
		StateConnecting, StateConnected, StateDisconnected,
	}, states)
}

func TestRunDeliversDecodedSnapshotsAndSkipsGarbage(t *testing.T) {
	t.Parallel()

	messages := make(chan []byte, 3)
	messages <- []byte(`{"id":7,"status":"PENDING","customerName":"Ayu","totalAmount":25000,"items":[]}`)
	messages <- []byte(`{not json`)
	messages <- []byte(`{"id":7,"status":"PREPARING","totalAmount":25000,"items":[]}`)
	close(messages)

	transport := &scriptedTransport{outcomes: []func() (Conn, error){
		func() (Conn, error) { return &scriptedConn{messages: messages}, nil },
	}}

	ctx, cancel := context.WithCancel(context.Background())

	var received []api.Order
	client, err := New(Options{
		Transport:      transport,
		ReconnectDelay: time.Second,
		OnOrder:        func(o api.Order) { received = append(received, o) },
		wait: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})
	require.NoError(t, err)
	require.NoError(t, client.Run(ctx))

	require.Len(t, received, 2)
	assert.Equal(t, int64(7), received[0].ID)
	assert.Equal(t, "PENDING", string(received[0].Status))
	assert.Equal(t, "PREPARING", string(received[1].Status))
}

func TestRunStopsWhenContextCancelledMidConnection(t *testing.T) {
	t.Parallel()

	messages := make(chan []byte)
	conn := &scriptedConn{messages: messages}
	transport := &scriptedTransport{outcomes: []func() (Conn, error){
		func() (Conn, error) { return conn, nil },
	}}

	ctx, cancel := context.WithCancel(context.Background())

	connected := make(chan struct{})
	client, err := New(Options{
		Transport:      transport,
		ReconnectDelay: time.Second,
		OnOrder:        func(api.Order) {},
		OnState: func(s State) {
			if s == StateConnected {
				close(connected)
			}
		},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	<-connected
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.True(t, conn.closed)
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := New(Options{ReconnectDelay: time.Second, OnOrder: func(api.Order) {}})
	require.Error(t, err)

	_, err = New(Options{Transport: &scriptedTransport{}, OnOrder: func(api.Order) {}})
	require.Error(t, err)

	_, err = New(Options{Transport: &scriptedTransport{}, ReconnectDelay: time.Second})
	require.Error(t, err)
}
