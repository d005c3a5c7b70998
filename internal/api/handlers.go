package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/core"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/store"
	apperrors "github.com/MRidhoPratama251/AI-Chatbot-Apps/pkg/errors"
)

// demoUserID is the single seeded user every request operates on; there is no
// authentication layer in this app.
const demoUserID int64 = 1

type APIHandler struct {
	chatService  *core.ChatService
	usageService *core.UsageService
	log          zerolog.Logger
}

func NewAPIHandler(cs *core.ChatService, us *core.UsageService, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		chatService:  cs,
		usageService: us,
		log:          log.With().Str("component", "api").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps AppError codes to HTTP statuses; anything untyped is a
// generic 500 so internal state never leaks to the client.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.CodeInvalidArgument:
			status = http.StatusBadRequest
		case apperrors.CodeNotFound:
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"message": appErr.Message})
		return
	}
	h.log.Error().Err(err).Msg("unhandled error")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.InvalidArg("invalid " + name)
	}
	return id, nil
}

// User handlers

func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.chatService.GetUser(demoUserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	// Patch payloads are strict: a field outside the patch struct (username,
	// id, ...) rejects the whole request.
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var patch store.UserPatch
	if err := dec.Decode(&patch); err != nil {
		h.writeError(w, apperrors.InvalidArg("invalid request body"))
		return
	}

	user, err := h.chatService.UpdateUser(demoUserID, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Conversation handlers

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	convs := h.chatService.ListConversations(demoUserID)
	if convs == nil {
		convs = []store.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

type CreateConversationRequest struct {
	Title    string `json:"title"`
	IsPinned bool   `json:"isPinned"`
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidArg("invalid request body"))
		return
	}

	conv, err := h.chatService.CreateConversation(demoUserID, req.Title, req.IsPinned)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *APIHandler) UpdateConversationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "conversationID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var patch store.ConversationPatch
	if err := dec.Decode(&patch); err != nil {
		h.writeError(w, apperrors.InvalidArg("invalid request body"))
		return
	}

	conv, err := h.chatService.UpdateConversation(id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *APIHandler) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "conversationID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.chatService.DeleteConversation(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted"})
}

// Message handlers

func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "conversationID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	msgs := h.chatService.ListMessages(id)
	if msgs == nil {
		msgs = []store.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

type CreateMessageRequest struct {
	Content     string   `json:"content"`
	Role        string   `json:"role"`
	Attachments []string `json:"attachments"`
}

func (h *APIHandler) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "conversationID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidArg("invalid request body"))
		return
	}

	msg, err := h.chatService.PostMessage(id, req.Content, req.Role, req.Attachments)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Token usage handlers

// parseDateBound accepts RFC 3339 timestamps or plain YYYY-MM-DD dates, which
// is what the usage chart in the UI sends.
func parseDateBound(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	return nil, apperrors.ErrInvalidDateRange
}

func (h *APIHandler) GetTokenUsageHandler(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateBound(r.URL.Query().Get("startDate"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	end, err := parseDateBound(r.URL.Query().Get("endDate"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	usage := h.usageService.Query(demoUserID, start, end)
	if usage == nil {
		usage = []store.TokenUsage{}
	}
	writeJSON(w, http.StatusOK, usage)
}

type RecordTokenUsageRequest struct {
	TokensUsed int `json:"tokensUsed"`
}

func (h *APIHandler) RecordTokenUsageHandler(w http.ResponseWriter, r *http.Request) {
	var req RecordTokenUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidArg("invalid request body"))
		return
	}

	usage, err := h.usageService.Record(demoUserID, req.TokensUsed)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, usage)
}
