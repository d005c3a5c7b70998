package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/metrics"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/store"
)

const replyTemplate = `Hello, this is an AI response simulation. Are you asking about "%s"?`

// ReplyScheduler produces the simulated assistant turn. Arming is
// fire-and-forget: the caller's append returns immediately and the reply is
// written by a one-shot timer after a fixed delay. There is no error channel
// back to the caller; a reply that cannot be delivered is dropped.
type ReplyScheduler struct {
	store   store.Storage
	metrics *metrics.Metrics
	log     zerolog.Logger
	delay   time.Duration
}

func NewReplyScheduler(st store.Storage, m *metrics.Metrics, log zerolog.Logger, delay time.Duration) *ReplyScheduler {
	return &ReplyScheduler{
		store:   st,
		metrics: m,
		log:     log.With().Str("component", "reply_scheduler").Logger(),
		delay:   delay,
	}
}

// Arm schedules an assistant reply quoting userContent into the conversation
// captured at arm time. The timer cannot fire before the triggering append
// has returned, so the reply always carries a later creation timestamp than
// the user message.
func (s *ReplyScheduler) Arm(conversationID int64, userContent string) {
	jobID := uuid.NewString()
	s.metrics.RepliesScheduled.Inc()
	s.log.Debug().
		Str("job_id", jobID).
		Int64("conversation_id", conversationID).
		Dur("delay", s.delay).
		Msg("deferred reply armed")

	time.AfterFunc(s.delay, func() {
		s.deliver(jobID, conversationID, userContent)
	})
}

func (s *ReplyScheduler) deliver(jobID string, conversationID int64, userContent string) {
	// The conversation may have been deleted while the timer was pending.
	// That makes delivery a benign no-op rather than resurrecting a message
	// under a dead conversation ID.
	if _, ok := s.store.GetConversation(conversationID); !ok {
		s.metrics.RepliesDropped.Inc()
		s.log.Debug().
			Str("job_id", jobID).
			Int64("conversation_id", conversationID).
			Msg("conversation gone, deferred reply dropped")
		return
	}

	msg := s.store.CreateMessage(store.NewMessage{
		ConversationID: conversationID,
		Content:        fmt.Sprintf(replyTemplate, userContent),
		Role:           store.RoleAssistant,
	})
	s.store.UpdateConversation(conversationID, store.ConversationPatch{})

	s.metrics.RepliesDelivered.Inc()
	s.metrics.MessagesCreated.WithLabelValues(store.RoleAssistant).Inc()
	s.log.Debug().
		Str("job_id", jobID).
		Int64("conversation_id", conversationID).
		Int64("message_id", msg.ID).
		Msg("deferred reply delivered")
}
