package feed

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
)

// STOMPTransport subscribes to the broker's order-events topic over the
// backend's WebSocket endpoint.
type STOMPTransport struct {
	Endpoint string
	Topic    string
}

func (t *STOMPTransport) Connect(ctx context.Context) (Conn, error) {
	wsConn, _, err := websocket.DefaultDialer.DialContext(ctx, t.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", t.Endpoint, err)
	}

	stompConn, err := stomp.Connect(newWebsocketNetConn(wsConn), stomp.ConnOpt.HeartBeat(0, 0))
	if err != nil {
		_ = wsConn.Close()
		return nil, fmt.Errorf("stomp handshake: %w", err)
	}

	sub, err := stompConn.Subscribe(t.Topic, stomp.AckAuto)
	if err != nil {
		_ = stompConn.Disconnect()
		_ = wsConn.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", t.Topic, err)
	}

	conn := &stompConnection{
		ws:       wsConn,
		stomp:    stompConn,
		sub:      sub,
		messages: make(chan []byte),
		done:     make(chan struct{}),
	}
	go conn.pump()
	return conn, nil
}

type stompConnection struct {
	ws       *websocket.Conn
	stomp    *stomp.Conn
	sub      *stomp.Subscription
	messages chan []byte
	done     chan struct{}
}

func (c *stompConnection) Messages() <-chan []byte {
	return c.messages
}

func (c *stompConnection) pump() {
	forwardFrames(c.sub.C, c.messages, c.done)
}

// forwardFrames relays subscription frames until the subscription drains or
// done closes. The done select keeps the send from blocking forever once the
// consumer has gone away.
func forwardFrames(in <-chan *stomp.Message, out chan<- []byte, done <-chan struct{}) {
	defer close(out)
	for msg := range in {
		if msg.Err != nil {
			return
		}
		select {
		case out <- msg.Body:
		case <-done:
			return
		}
	}
}

func (c *stompConnection) Close() error {
	close(c.done)
	var err error
	if c.sub.Active() {
		err = multierr.Append(err, c.sub.Unsubscribe())
	}
	err = multierr.Append(err, c.stomp.Disconnect())
	err = multierr.Append(err, c.ws.Close())
	return err
}

// websocketNetConn adapts a websocket connection to net.Conn so the STOMP
// client can frame over it. Each outgoing chunk becomes one text message.
type websocketNetConn struct {
	ws      *websocket.Conn
	appSide net.Conn
	wsSide  net.Conn
}

func newWebsocketNetConn(ws *websocket.Conn) net.Conn {
	wsSide, appSide := net.Pipe()
	conn := &websocketNetConn{ws: ws, appSide: appSide, wsSide: wsSide}
	go conn.copyIncoming()
	go conn.copyOutgoing()
	return conn
}

func (c *websocketNetConn) copyIncoming() {
	defer c.wsSide.Close()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if _, err := c.wsSide.Write(data); err != nil {
			return
		}
	}
}

func (c *websocketNetConn) copyOutgoing() {
	buf := make([]byte, 32*1024)
	for {
		n, err := c.wsSide.Read(buf)
		if n > 0 {
			if werr := c.ws.WriteMessage(websocket.TextMessage, buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (c *websocketNetConn) Read(p []byte) (int, error)  { return c.appSide.Read(p) }
func (c *websocketNetConn) Write(p []byte) (int, error) { return c.appSide.Write(p) }
func (c *websocketNetConn) Close() error {
	err := c.appSide.Close()
	return multierr.Append(err, c.ws.Close())
}
func (c *websocketNetConn) LocalAddr() net.Addr                { return c.ws.LocalAddr() }
func (c *websocketNetConn) RemoteAddr() net.Addr               { return c.ws.RemoteAddr() }
func (c *websocketNetConn) SetDeadline(t time.Time) error      { return c.appSide.SetDeadline(t) }
func (c *websocketNetConn) SetReadDeadline(t time.Time) error  { return c.appSide.SetReadDeadline(t) }
func (c *websocketNetConn) SetWriteDeadline(t time.Time) error { return c.appSide.SetWriteDeadline(t) }
