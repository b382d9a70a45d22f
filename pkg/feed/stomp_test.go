package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardFramesRelaysBodiesInOrder(t *testing.T) {
	in := make(chan *stomp.Message, 2)
	out := make(chan []byte)
	done := make(chan struct{})

	in <- &stomp.Message{Body: []byte("one")}
	in <- &stomp.Message{Body: []byte("two")}
	close(in)

	go forwardFrames(in, out, done)

	assert.Equal(t, []byte("one"), <-out)
	assert.Equal(t, []byte("two"), <-out)

	_, open := <-out
	assert.False(t, open, "out closes when the subscription drains")
}

func TestForwardFramesStopsOnFrameError(t *testing.T) {
	in := make(chan *stomp.Message, 1)
	out := make(chan []byte)
	done := make(chan struct{})

	in <- &stomp.Message{Err: errors.New("connection lost")}

	go forwardFrames(in, out, done)

	_, open := <-out
	assert.False(t, open)
}

func TestForwardFramesUnblocksWhenDoneClosesWithNoReceiver(t *testing.T) {
	in := make(chan *stomp.Message, 1)
	out := make(chan []byte)
	done := make(chan struct{})
	exited := make(chan struct{})

	in <- &stomp.Message{Body: []byte("stuck")}

	go func() {
		forwardFrames(in, out, done)
		close(exited)
	}()

	// Nobody reads out; the forwarder is parked on the send.
	close(done)

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder stayed blocked after done closed")
	}

	_, open := <-out
	require.False(t, open, "out closes on the way out")
}