package feed

import (
	"fmt"

	"github.com/smartcafe/smartcafe-client/pkg/config"
)

// NewTransport builds the configured feed transport.
func NewTransport(cfg config.FeedConfig, gcp config.GCPConfig) (Transport, error) {
	switch cfg.Transport {
	case config.FeedTransportSTOMP:
		return &STOMPTransport{Endpoint: cfg.Endpoint, Topic: cfg.Topic}, nil
	case config.FeedTransportPubSub:
		return &PubSubTransport{ProjectID: gcp.ProjectID, Subscription: cfg.Subscription}, nil
	default:
		return nil, fmt.Errorf("unknown feed transport %q", cfg.Transport)
	}
}
