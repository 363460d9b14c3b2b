package handlers

import (
	"net/http"
	"time"

	apierrors "chat-backend/internal/errors"
	"chat-backend/internal/guard"
	"chat-backend/internal/models"
	"chat-backend/internal/service"
)

type chatResponse struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type participantResponse struct {
	ID        int64 `json:"id"`
	ChatID    int64 `json:"chat_id"`
	UserID    int64 `json:"user_id"`
	IsCreator bool  `json:"is_creator"`
	IsAdmin   bool  `json:"is_admin"`
}

type messageResponse struct {
	ID            int64     `json:"id"`
	ChatID        int64     `json:"chat_id"`
	ParticipantID int64     `json:"chat_participant_id"`
	CreatedAt     time.Time `json:"created_at"`
	Text          string    `json:"text"`
}

type addParticipantRequest struct {
	UserID int64 `json:"user_id"`
}

type postMessageRequest struct {
	Text string `json:"text"`
}

func toChatResponse(c *models.Chat) chatResponse {
	return chatResponse{ID: c.ID, CreatedAt: c.CreatedAt, EndedAt: c.EndedAt}
}

func toParticipantResponse(p *models.ChatParticipant) participantResponse {
	return participantResponse{
		ID:        p.ID,
		ChatID:    p.ChatID,
		UserID:    p.UserID,
		IsCreator: p.IsCreator,
		IsAdmin:   p.IsAdmin,
	}
}

func toMessageResponse(m *models.ChatMessage) messageResponse {
	return messageResponse{
		ID:            m.ID,
		ChatID:        m.ChatID,
		ParticipantID: m.ParticipantID,
		CreatedAt:     m.CreatedAt,
		Text:          m.Text,
	}
}

// currentUser достаёт пользователя, опубликованного SessionGuard.
func currentUser(r *http.Request) (*models.User, bool) {
	return guard.UserFrom(guard.MetaFrom(r.Context()))
}

// currentChat достаёт чат, опубликованный ChatGuard.
func currentChat(r *http.Request) (*models.Chat, bool) {
	return guard.ChatFrom(guard.MetaFrom(r.Context()))
}

// ListChats — GET /chats.
func (h *Handlers) ListChats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	chats, err := h.Service.ListChats(r.Context(), user)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]chatResponse, 0, len(chats))
	for i := range chats {
		out = append(out, toChatResponse(&chats[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// CreateChat — POST /chats.
func (h *Handlers) CreateChat(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	chat, err := h.Service.CreateChat(r.Context(), user)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toChatResponse(chat))
}

// GetChat — GET /chats/{chatId}. Чат уже разрешён ChatGuard.
func (h *Handlers) GetChat(w http.ResponseWriter, r *http.Request) {
	chat, ok := currentChat(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toChatResponse(chat))
}

// DeleteChat — DELETE /chats/{chatId}.
func (h *Handlers) DeleteChat(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	chat, ok := currentChat(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	if err := h.Service.DeleteChat(r.Context(), user, chat); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListParticipants — GET /chats/{chatId}/participants.
func (h *Handlers) ListParticipants(w http.ResponseWriter, r *http.Request) {
	chat, ok := currentChat(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	participants, err := h.Service.Participants(r.Context(), chat)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]participantResponse, 0, len(participants))
	for i := range participants {
		out = append(out, toParticipantResponse(&participants[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// AddParticipant — POST /chats/{chatId}/participants.
func (h *Handlers) AddParticipant(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	chat, ok := currentChat(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	var in addParticipantRequest
	if err := decodeStrict(r, &in); err != nil || in.UserID <= 0 {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	participant, err := h.Service.AddParticipant(r.Context(), user, chat, in.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toParticipantResponse(participant))
}

// GetParticipant — GET /chats/{chatId}/participants/{chatParticipantId}.
// Участник уже разрешён ParticipantGuard.
func (h *Handlers) GetParticipant(w http.ResponseWriter, r *http.Request) {
	participant, ok := guard.ParticipantFrom(guard.MetaFrom(r.Context()))
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toParticipantResponse(participant))
}

// RemoveParticipant — DELETE /chats/{chatId}/participants/{chatParticipantId}.
func (h *Handlers) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	chat, ok := currentChat(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	participant, ok := guard.ParticipantFrom(guard.MetaFrom(r.Context()))
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	if err := h.Service.RemoveParticipant(r.Context(), user, chat, participant); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMessages — GET /chats/{chatId}/messages.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	chat, ok := currentChat(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	messages, err := h.Service.Messages(r.Context(), chat)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// PostMessage — POST /chats/{chatId}/messages.
func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	chat, ok := currentChat(r)
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	var in postMessageRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrEmptyText)
		return
	}

	message, err := h.Service.PostMessage(r.Context(), user, chat, in.Text)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(message))
}
