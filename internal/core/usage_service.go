package core

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/store"
	apperrors "github.com/MRidhoPratama251/AI-Chatbot-Apps/pkg/errors"
)

// UsageService is the token-usage ledger: dated per-user records with
// inclusive date-range queries.
type UsageService struct {
	store store.Storage
	log   zerolog.Logger
}

func NewUsageService(st store.Storage, log zerolog.Logger) *UsageService {
	return &UsageService{
		store: st,
		log:   log.With().Str("component", "usage_service").Logger(),
	}
}

// Record stores a usage record stamped with the current date.
func (s *UsageService) Record(userID int64, tokensUsed int) (store.TokenUsage, error) {
	if tokensUsed < 0 {
		return store.TokenUsage{}, apperrors.ErrNegativeTokens
	}
	usage := s.store.CreateTokenUsage(store.NewTokenUsage{
		UserID:     userID,
		TokensUsed: tokensUsed,
	})
	s.log.Debug().Int64("user_id", userID).Int("tokens_used", tokensUsed).Msg("token usage recorded")
	return usage, nil
}

// Query returns the user's usage records sorted oldest first. Both bounds are
// optional and inclusive: a record dated exactly on a bound is kept.
func (s *UsageService) Query(userID int64, start, end *time.Time) []store.TokenUsage {
	var out []store.TokenUsage
	for _, u := range s.store.TokenUsageByUser(userID) {
		if start != nil && u.Date.Before(*start) {
			continue
		}
		if end != nil && u.Date.After(*end) {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
