package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/core"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/metrics"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	st := store.NewMemStore()
	st.LoadSampleData()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := zerolog.Nop()

	scheduler := core.NewReplyScheduler(st, m, log, 10*time.Millisecond)
	chatService := core.NewChatService(st, scheduler, m, log)
	usageService := core.NewUsageService(st, log)

	handler := NewAPIHandler(chatService, usageService, log)
	return NewRouter(handler, registry)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetUserReturnsSeededUser(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "demo_user", user.Username)
	require.NotNil(t, user.AIPreferences)
	assert.Equal(t, 4000, user.AIPreferences.MaxTokens)
}

func TestUpdateUser(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPatch, "/api/user", map[string]any{
		"email": "updated@example.com",
		"aiPreferences": map[string]any{
			"maxTokens":    2000,
			"personality":  "cynic",
			"addressStyle": "formal",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var user store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.NotNil(t, user.Email)
	assert.Equal(t, "updated@example.com", *user.Email)
	assert.Equal(t, "cynic", user.AIPreferences.Personality)
	assert.Equal(t, "demo_user", user.Username)
}

func TestCreateConversationValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/conversations", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndListConversations(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/conversations", map[string]any{
		"title":    "pinned one",
		"isPinned": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created store.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.IsPinned)

	rec = doJSON(t, router, http.MethodGet, "/api/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var convs []store.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &convs))
	require.Len(t, convs, 2) // seeded + new
	assert.Equal(t, created.ID, convs[0].ID)
}

func TestPatchRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	// A caller-supplied timestamp is not a patchable field; the refresh of
	// updatedAt always wins by construction.
	rec := doJSON(t, router, http.MethodPatch, "/api/conversations/1", map[string]any{
		"title":     "x",
		"updatedAt": "2020-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/user", map[string]any{"username": "hacker"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConversationNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPatch, "/api/conversations/999", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteConversation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodDelete, "/api/conversations/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/conversations/1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	assert.Empty(t, msgs)

	rec = doJSON(t, router, http.MethodDelete, "/api/conversations/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMessageValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/conversations/1/messages", map[string]any{
		"content": "hi",
		"role":    "system",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/conversations/1/messages", map[string]any{
		"content": "",
		"role":    "user",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMessageAndDeferredReply(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/conversations", map[string]any{"title": "T1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var conv store.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))

	messagesURL := fmt.Sprintf("/api/conversations/%d/messages", conv.ID)
	rec = doJSON(t, router, http.MethodPost, messagesURL, map[string]any{
		"content": "Hello",
		"role":    "user",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Eventually(t, func() bool {
		rec := doJSON(t, router, http.MethodGet, messagesURL, nil)
		var msgs []store.Message
		if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
			return false
		}
		return len(msgs) == 2
	}, time.Second, 5*time.Millisecond)

	rec = doJSON(t, router, http.MethodGet, messagesURL, nil)
	var msgs []store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	assert.Equal(t, store.RoleAssistant, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Hello")
}

func TestTokenUsageQueryAndRecord(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/token-usage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var usage []store.TokenUsage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Len(t, usage, 30)

	rec = doJSON(t, router, http.MethodPost, "/api/token-usage", map[string]any{"tokensUsed": 321})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/token-usage", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Len(t, usage, 31)
}

func TestTokenUsageValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/token-usage", map[string]any{"tokensUsed": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/token-usage?startDate=notadate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenUsageDateWindow(t *testing.T) {
	router := newTestRouter(t)

	// A window covering only the last ~5 days trims the 30 seeded records.
	// The hour of slack keeps second-truncation in RFC 3339 from cutting the
	// boundary record.
	start := time.Now().AddDate(0, 0, -5).Add(-time.Hour).Format(time.RFC3339)
	rec := doJSON(t, router, http.MethodGet, "/api/token-usage?startDate="+start, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var usage []store.TokenUsage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Len(t, usage, 6)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
