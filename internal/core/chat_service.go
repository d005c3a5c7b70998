package core

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/metrics"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/store"
	apperrors "github.com/MRidhoPratama251/AI-Chatbot-Apps/pkg/errors"
)

// titleMaxRunes is the auto-title cutoff; longer first messages are truncated
// and get a trailing ellipsis.
const titleMaxRunes = 50

// ChatService owns the user, conversation and message operations: the
// pin-then-recency listing policy, cascade deletion, the auto-title rule and
// arming the deferred assistant reply. Validation happens here, before
// anything reaches the store.
type ChatService struct {
	store     store.Storage
	scheduler *ReplyScheduler
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func NewChatService(st store.Storage, scheduler *ReplyScheduler, m *metrics.Metrics, log zerolog.Logger) *ChatService {
	return &ChatService{
		store:     st,
		scheduler: scheduler,
		metrics:   m,
		log:       log.With().Str("component", "chat_service").Logger(),
	}
}

// User operations

func (s *ChatService) GetUser(userID int64) (store.User, error) {
	user, ok := s.store.GetUser(userID)
	if !ok {
		return store.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *ChatService) UpdateUser(userID int64, patch store.UserPatch) (store.User, error) {
	user, ok := s.store.UpdateUser(userID, patch)
	if !ok {
		return store.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

// Conversation operations

// ListConversations returns the user's conversations with pinned ones first;
// within each group the most recently touched conversation leads. Equal
// timestamps keep insertion order.
func (s *ChatService) ListConversations(userID int64) []store.Conversation {
	convs := s.store.ConversationsByUser(userID)
	sort.SliceStable(convs, func(i, j int) bool {
		if convs[i].IsPinned != convs[j].IsPinned {
			return convs[i].IsPinned
		}
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs
}

func (s *ChatService) CreateConversation(userID int64, title string, pinned bool) (store.Conversation, error) {
	if title == "" {
		return store.Conversation{}, apperrors.ErrTitleRequired
	}
	conv := s.store.CreateConversation(store.NewConversation{
		UserID:   userID,
		Title:    title,
		IsPinned: pinned,
	})
	s.metrics.ConversationsCreated.Inc()
	s.log.Debug().Int64("conversation_id", conv.ID).Int64("user_id", userID).Msg("conversation created")
	return conv, nil
}

func (s *ChatService) UpdateConversation(conversationID int64, patch store.ConversationPatch) (store.Conversation, error) {
	conv, ok := s.store.UpdateConversation(conversationID, patch)
	if !ok {
		return store.Conversation{}, apperrors.ErrConversationNotFound
	}
	return conv, nil
}

// DeleteConversation cascades: the conversation's messages go first, then the
// record itself. When the conversation does not exist nothing is touched.
func (s *ChatService) DeleteConversation(conversationID int64) error {
	if _, ok := s.store.GetConversation(conversationID); !ok {
		return apperrors.ErrConversationNotFound
	}
	removed := s.store.DeleteMessagesByConversation(conversationID)
	s.store.DeleteConversation(conversationID)
	s.metrics.ConversationsDeleted.Inc()
	s.log.Debug().
		Int64("conversation_id", conversationID).
		Int("messages_removed", removed).
		Msg("conversation deleted")
	return nil
}

// Message operations

// ListMessages returns the conversation's messages oldest first. Timestamps
// are assigned at append time, so ties resolve to insertion order.
func (s *ChatService) ListMessages(conversationID int64) []store.Message {
	msgs := s.store.MessagesByConversation(conversationID)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

// PostMessage appends a message and touches the owning conversation's
// UpdatedAt. A user-role message additionally retitles the conversation when
// it is the first user message ever sent in it, and arms the deferred
// assistant reply. Retitling happens synchronously; the reply does not.
func (s *ChatService) PostMessage(conversationID int64, content, role string, attachments []string) (store.Message, error) {
	if content == "" {
		return store.Message{}, apperrors.ErrContentRequired
	}
	if role != store.RoleUser && role != store.RoleAssistant {
		return store.Message{}, apperrors.ErrInvalidRole
	}

	msg := s.store.CreateMessage(store.NewMessage{
		ConversationID: conversationID,
		Content:        content,
		Role:           role,
		Attachments:    attachments,
	})
	s.metrics.MessagesCreated.WithLabelValues(role).Inc()

	// Empty patch: the only effect is refreshing the conversation's UpdatedAt.
	s.store.UpdateConversation(conversationID, store.ConversationPatch{})

	if role == store.RoleUser {
		s.applyAutoTitle(conversationID, content)
		s.scheduler.Arm(conversationID, content)
	}

	return msg, nil
}

// applyAutoTitle replaces the conversation title with the first user message,
// truncated to 50 runes. Only the very first user message triggers it.
func (s *ChatService) applyAutoTitle(conversationID int64, content string) {
	userMessages := 0
	for _, m := range s.store.MessagesByConversation(conversationID) {
		if m.Role == store.RoleUser {
			userMessages++
		}
	}
	if userMessages != 1 {
		return
	}

	title := content
	if runes := []rune(content); len(runes) > titleMaxRunes {
		title = string(runes[:titleMaxRunes]) + "..."
	}
	s.store.UpdateConversation(conversationID, store.ConversationPatch{Title: &title})
}
