// Package metrics provides Prometheus metrics for the chat-session manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters exported at /metrics.
type Metrics struct {
	ConversationsCreated prometheus.Counter
	ConversationsDeleted prometheus.Counter
	MessagesCreated      *prometheus.CounterVec

	RepliesScheduled prometheus.Counter
	RepliesDelivered prometheus.Counter
	RepliesDropped   prometheus.Counter
}

// New creates and registers all metrics against the given registerer. Tests
// pass a fresh prometheus.NewRegistry so parallel services never collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConversationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_conversations_created_total",
			Help: "Total number of conversations created",
		}),
		ConversationsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_conversations_deleted_total",
			Help: "Total number of conversations deleted (with their messages)",
		}),
		MessagesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_created_total",
			Help: "Total number of messages stored, by role",
		}, []string{"role"}),
		RepliesScheduled: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_deferred_replies_scheduled_total",
			Help: "Total number of assistant replies armed after a user message",
		}),
		RepliesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_deferred_replies_delivered_total",
			Help: "Total number of deferred assistant replies appended",
		}),
		RepliesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_deferred_replies_dropped_total",
			Help: "Total number of deferred replies dropped because the conversation was gone",
		}),
	}
}
