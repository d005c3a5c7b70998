package store

import (
	"sort"
	"sync"
	"time"
)

// Storage is the persistence boundary used by the services. MemStore is the
// only implementation; everything is volatile and reseeded on process start.
type Storage interface {
	// User methods
	GetUser(id int64) (User, bool)
	GetUserByUsername(username string) (User, bool)
	CreateUser(nu NewUser) User
	UpdateUser(id int64, patch UserPatch) (User, bool)

	// Conversation methods
	GetConversation(id int64) (Conversation, bool)
	ConversationsByUser(userID int64) []Conversation
	CreateConversation(nc NewConversation) Conversation
	UpdateConversation(id int64, patch ConversationPatch) (Conversation, bool)
	DeleteConversation(id int64) bool

	// Message methods
	MessagesByConversation(conversationID int64) []Message
	CreateMessage(nm NewMessage) Message
	DeleteMessagesByConversation(conversationID int64) int

	// Token usage methods
	TokenUsageByUser(userID int64) []TokenUsage
	CreateTokenUsage(nt NewTokenUsage) TokenUsage
}

// table is one keyed collection with its own identifier sequence. IDs start
// at 1, only ever grow, and are never reused after a delete.
type table[T any] struct {
	items  map[int64]T
	nextID int64
}

func newTable[T any]() table[T] {
	return table[T]{items: make(map[int64]T), nextID: 1}
}

func (t *table[T]) insert(build func(id int64) T) T {
	id := t.nextID
	t.nextID++
	v := build(id)
	t.items[id] = v
	return v
}

func (t *table[T]) get(id int64) (T, bool) {
	v, ok := t.items[id]
	return v, ok
}

// update merges fields into the stored value via apply and returns the new
// value, or reports absence. It never fails any other way.
func (t *table[T]) update(id int64, apply func(*T)) (T, bool) {
	v, ok := t.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	apply(&v)
	t.items[id] = v
	return v, true
}

func (t *table[T]) delete(id int64) bool {
	_, ok := t.items[id]
	if ok {
		delete(t.items, id)
	}
	return ok
}

// all returns every item in ascending-ID order, which is insertion order
// since IDs are monotonic. Callers layer their own ordering policies on top.
func (t *table[T]) all() []T {
	ids := make([]int64, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.items[id])
	}
	return out
}

// MemStore holds all entities in memory. A message references its conversation
// by ID only; nothing holds the reverse link.
type MemStore struct {
	mu            sync.RWMutex
	users         table[User]
	conversations table[Conversation]
	messages      table[Message]
	tokenUsage    table[TokenUsage]
}

var _ Storage = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:         newTable[User](),
		conversations: newTable[Conversation](),
		messages:      newTable[Message](),
		tokenUsage:    newTable[TokenUsage](),
	}
}

// User methods

func (s *MemStore) GetUser(id int64) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.get(id)
}

func (s *MemStore) GetUserByUsername(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users.items {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

func (s *MemStore) CreateUser(nu NewUser) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs := nu.AIPreferences
	if prefs == nil {
		prefs = &AIPreferences{MaxTokens: 4000, Personality: "default", AddressStyle: "casual"}
	}
	return s.users.insert(func(id int64) User {
		return User{
			ID:            id,
			Username:      nu.Username,
			Password:      nu.Password,
			Email:         nu.Email,
			ProfilePhoto:  nu.ProfilePhoto,
			Role:          nu.Role,
			AIPreferences: prefs,
		}
	})
}

func (s *MemStore) UpdateUser(id int64, patch UserPatch) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.update(id, func(u *User) {
		if patch.Password != nil {
			u.Password = *patch.Password
		}
		if patch.Email != nil {
			u.Email = patch.Email
		}
		if patch.ProfilePhoto != nil {
			u.ProfilePhoto = patch.ProfilePhoto
		}
		if patch.Role != nil {
			u.Role = patch.Role
		}
		if patch.AIPreferences != nil {
			u.AIPreferences = patch.AIPreferences
		}
	})
}

// Conversation methods

func (s *MemStore) GetConversation(id int64) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversations.get(id)
}

func (s *MemStore) ConversationsByUser(userID int64) []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Conversation
	for _, c := range s.conversations.all() {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

func (s *MemStore) CreateConversation(nc NewConversation) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	return s.conversations.insert(func(id int64) Conversation {
		return Conversation{
			ID:        id,
			UserID:    nc.UserID,
			Title:     nc.Title,
			IsPinned:  nc.IsPinned,
			CreatedAt: now,
			UpdatedAt: now,
		}
	})
}

// UpdateConversation merges the patch and always refreshes UpdatedAt, even
// for an empty patch. The empty-patch form is how a message append touches
// its owning conversation.
func (s *MemStore) UpdateConversation(id int64, patch ConversationPatch) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations.update(id, func(c *Conversation) {
		if patch.Title != nil {
			c.Title = *patch.Title
		}
		if patch.IsPinned != nil {
			c.IsPinned = *patch.IsPinned
		}
		c.UpdatedAt = time.Now()
	})
}

func (s *MemStore) DeleteConversation(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations.delete(id)
}

// Message methods

func (s *MemStore) MessagesByConversation(conversationID int64) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.messages.all() {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out
}

func (s *MemStore) CreateMessage(nm NewMessage) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	return s.messages.insert(func(id int64) Message {
		return Message{
			ID:             id,
			ConversationID: nm.ConversationID,
			Content:        nm.Content,
			Role:           nm.Role,
			Attachments:    nm.Attachments,
			CreatedAt:      now,
		}
	})
}

// DeleteMessagesByConversation removes every message owned by the
// conversation and reports how many were removed.
func (s *MemStore) DeleteMessagesByConversation(conversationID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, m := range s.messages.items {
		if m.ConversationID == conversationID {
			delete(s.messages.items, id)
			n++
		}
	}
	return n
}

// Token usage methods

func (s *MemStore) TokenUsageByUser(userID int64) []TokenUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []TokenUsage
	for _, u := range s.tokenUsage.all() {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out
}

func (s *MemStore) CreateTokenUsage(nt NewTokenUsage) TokenUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertTokenUsageAt(nt.UserID, time.Now(), nt.TokensUsed)
}

// insertTokenUsageAt backdates a usage record; the seed loader uses it to lay
// down a month of history. Callers must hold the write lock.
func (s *MemStore) insertTokenUsageAt(userID int64, date time.Time, tokensUsed int) TokenUsage {
	return s.tokenUsage.insert(func(id int64) TokenUsage {
		return TokenUsage{
			ID:         id,
			UserID:     userID,
			Date:       date,
			TokensUsed: tokensUsed,
		}
	})
}
