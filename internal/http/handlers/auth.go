package handlers

import (
	"net/http"
	"time"

	apierrors "chat-backend/internal/errors"
	"chat-backend/internal/guard"
	"chat-backend/internal/service"
)

type signUpStartRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpStartResponse struct {
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expires_at"`
}

type signUpVerifyRequest struct {
	Ticket string `json:"ticket"`
	Code   string `json:"code"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignUpStart — POST /auth/sign-up-by-password.
func (h *Handlers) SignUpStart(w http.ResponseWriter, r *http.Request) {
	var in signUpStartRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidEmail)
		return
	}

	ticket, err := h.Service.SignUpStart(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, signUpStartResponse{
		Ticket:    ticket.Ticket,
		ExpiresAt: ticket.ExpiresAt,
	})
}

// SignUpVerify — POST /auth/sign-up-by-password/verify.
func (h *Handlers) SignUpVerify(w http.ResponseWriter, r *http.Request) {
	var in signUpVerifyRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidVerification)
		return
	}

	result, err := h.Service.SignUpVerify(r.Context(), in.Ticket, in.Code, r.UserAgent())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// SignIn — POST /auth/sign-in.
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	result, err := h.Service.SignIn(r.Context(), in.Email, in.Password, r.UserAgent())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// SignOut — POST /auth/sign-out. Требует сессию.
func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	session, ok := guard.SessionFrom(guard.MetaFrom(r.Context()))
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	if err := h.Service.SignOut(r.Context(), session.ID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Prolong — POST /auth/prolong. Требует сессию; возвращает новый токен,
// старый после ответа недействителен.
func (h *Handlers) Prolong(w http.ResponseWriter, r *http.Request) {
	session, ok := guard.SessionFrom(guard.MetaFrom(r.Context()))
	if !ok {
		apierrors.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	result, err := h.Service.Prolong(r.Context(), session)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}
