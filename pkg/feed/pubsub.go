package feed

import (
	"context"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"go.uber.org/multierr"
)

// PubSubTransport consumes order snapshots from a Pub/Sub subscription for
// deployments that broker the feed instead of exposing the STOMP endpoint.
type PubSubTransport struct {
	ProjectID    string
	Subscription string
}

func (t *PubSubTransport) Connect(ctx context.Context) (Conn, error) {
	if strings.TrimSpace(t.ProjectID) == "" {
		return nil, fmt.Errorf("gcp project id is required")
	}
	if strings.TrimSpace(t.Subscription) == "" {
		return nil, fmt.Errorf("pubsub subscription name is required")
	}

	client, err := pubsub.NewClient(ctx, t.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	receiveCtx, cancel := context.WithCancel(ctx)
	conn := &pubsubConnection{
		client:   client,
		cancel:   cancel,
		messages: make(chan []byte),
	}

	subscriber := client.Subscriber(t.subscriptionResourceName())
	go func() {
		defer close(conn.messages)
		_ = subscriber.Receive(receiveCtx, func(ctx context.Context, msg *pubsub.Message) {
			select {
			case conn.messages <- msg.Data:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
			}
		})
	}()

	return conn, nil
}

func (t *PubSubTransport) subscriptionResourceName() string {
	name := strings.TrimSpace(t.Subscription)
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/subscriptions/") {
		return name
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", strings.TrimSpace(t.ProjectID), name)
}

type pubsubConnection struct {
	client   *pubsub.Client
	cancel   context.CancelFunc
	messages chan []byte
}

func (c *pubsubConnection) Messages() <-chan []byte {
	return c.messages
}

func (c *pubsubConnection) Close() error {
	c.cancel()
	return multierr.Append(nil, c.client.Close())
}
