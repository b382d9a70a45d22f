package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FeedMetrics records the kitchen station's live-feed health.
type FeedMetrics struct {
	connected     prometheus.Gauge
	reconnects    prometheus.Counter
	messages      prometheus.Counter
	statusChanges *prometheus.CounterVec
}

// NewFeedMetrics registers the feed metrics on the provided registerer.
func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	if reg == nil {
		return &FeedMetrics{}
	}
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_connected",
		Help: "Whether the live order feed is connected (1) or not (0).",
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_reconnects_total",
		Help: "Reconnection attempts against the live order feed.",
	})
	messages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_messages_total",
		Help: "Order snapshots received from the live feed.",
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "status_change_requests_total",
		Help: "Status transition commands issued to the backend.",
	}, []string{"result"})
	reg.MustRegister(connected, reconnects, messages, statusChanges)
	return &FeedMetrics{
		connected:     connected,
		reconnects:    reconnects,
		messages:      messages,
		statusChanges: statusChanges,
	}
}

// SetConnected reflects the current connection state.
func (f *FeedMetrics) SetConnected(up bool) {
	if f == nil || f.connected == nil {
		return
	}
	if up {
		f.connected.Set(1)
	} else {
		f.connected.Set(0)
	}
}

// IncReconnects counts a reconnection attempt.
func (f *FeedMetrics) IncReconnects() {
	if f == nil || f.reconnects == nil {
		return
	}
	f.reconnects.Inc()
}

// IncMessages counts a received order snapshot.
func (f *FeedMetrics) IncMessages() {
	if f == nil || f.messages == nil {
		return
	}
	f.messages.Inc()
}

// IncStatusChange counts a status command by result ("ok" or "error").
func (f *FeedMetrics) IncStatusChange(result string) {
	if f == nil || f.statusChanges == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	f.statusChanges.WithLabelValues(result).Inc()
}
