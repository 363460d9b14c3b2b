package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chat-backend/internal/cache"
	"chat-backend/internal/device"
	"chat-backend/internal/models"
	"chat-backend/internal/pkg/log"
	"chat-backend/internal/storage"
	"chat-backend/internal/token"
)

const (
	minPasswordLen = 8
	// Длина цифрового кода подтверждения в письме.
	verificationCodeLen = 6
)

// SignUpTicket - результат первого шага регистрации: тикет, по которому
// клиент подтверждает код из письма.
type SignUpTicket struct {
	Ticket    string
	ExpiresAt time.Time
}

// AuthResult - результат успешной аутентификации.
type AuthResult struct {
	Token     string
	Session   *models.AuthSession
	User      *models.User
	ExpiresAt time.Time
}

// SignUpStart начинает двухфазную регистрацию: валидирует email и пароль,
// сохраняет заявку в Redis и отправляет код подтверждения на почту.
//
// Возвращает ErrInvalidEmail/ErrWeakPassword при плохом вводе и
// ErrEmailTaken, если email уже занят.
func (s *Service) SignUpStart(ctx context.Context, email, password string) (*SignUpTicket, error) {
	const op = "service.SignUpStart"

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if _, err := s.storage.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code, err := verificationCode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ticket := uuid.NewString()

	entry := &cache.PendingSignUp{
		Email:        email,
		PasswordHash: string(hash),
		Code:         code,
	}
	if err := s.pending.Put(ctx, ticket, entry, s.verificationTTL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		// Заявку не откатываем: клиент может повторить начало регистрации.
		log.From(ctx).Error("verification_mail_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SignUpTicket{
		Ticket:    ticket,
		ExpiresAt: s.now().Add(s.verificationTTL),
	}, nil
}

// SignUpVerify завершает регистрацию: сверяет код по тикету, создаёт
// пользователя и сразу открывает для него сессию.
//
// Просроченный/неизвестный тикет и неверный код неразличимы для клиента:
// оба случая - ErrInvalidVerification.
func (s *Service) SignUpVerify(ctx context.Context, ticket, code, userAgent string) (*AuthResult, error) {
	const op = "service.SignUpVerify"

	entry, ok, err := s.pending.Get(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok || entry.Code != code {
		return nil, ErrInvalidVerification
	}

	user := &models.User{
		Email:        entry.Email,
		PasswordHash: entry.PasswordHash,
		IsActive:     true,
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.pending.Del(ctx, ticket); err != nil {
		// Запись в Redis истечёт сама по TTL.
		log.From(ctx).Warn("pending_signup_cleanup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return s.openSession(ctx, user, userAgent)
}

// SignIn аутентифицирует пользователя по паролю и открывает новую сессию.
//
// Неизвестный email, неверный пароль и деактивированный аккаунт
// неразличимы для клиента: всё это ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password, userAgent string) (*AuthResult, error) {
	const op = "service.SignIn"

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user, userAgent)
}

// SignOut завершает сессию. Идемпотентен: повторный выход по уже
// удалённой сессии не считается ошибкой.
func (s *Service) SignOut(ctx context.Context, sessionID int64) error {
	const op = "service.SignOut"

	if err := s.storage.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Prolong продлевает сессию и выпускает новый токен. Старый токен с прежним
// jti перестаёт действовать сразу после ротации access_token_id.
func (s *Service) Prolong(ctx context.Context, session *models.AuthSession) (*AuthResult, error) {
	const op = "service.Prolong"

	expiresAt := s.now().Add(s.sessionTTL)

	tokenID, err := s.storage.ProlongSession(ctx, session.ID, expiresAt)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := token.Encode(token.Payload{SessionID: session.ID, TokenID: tokenID}, s.signature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prolonged := *session
	prolonged.ExpiresAt = expiresAt
	prolonged.AccessTokenID = tokenID

	return &AuthResult{
		Token:     raw,
		Session:   &prolonged,
		ExpiresAt: expiresAt,
	}, nil
}

// openSession создаёт новую сессию для пользователя и выпускает токен.
// Первая версия токена сессии всегда имеет access_token_id = 1.
func (s *Service) openSession(ctx context.Context, user *models.User, userAgent string) (*AuthResult, error) {
	const op = "service.openSession"

	if userAgent == "" {
		return nil, ErrInvalidCredentials
	}

	startedAt := s.now()

	session := &models.AuthSession{
		UserID:        user.ID,
		StartedAt:     startedAt,
		ExpiresAt:     startedAt.Add(s.sessionTTL),
		AccessTokenID: 1,
		Device:        device.Fingerprint(userAgent),
	}
	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := token.Encode(token.Payload{SessionID: session.ID, TokenID: session.AccessTokenID}, s.signature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &AuthResult{
		Token:     raw,
		Session:   session,
		User:      user,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// CleanupExpiredSessions удаляет просроченные сессии (фоновая задача).
func (s *Service) CleanupExpiredSessions(ctx context.Context) error {
	const op = "service.CleanupExpiredSessions"

	if err := s.storage.DeleteExpiredSessions(ctx, s.now()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// normalizeEmail валидирует и приводит email к каноничному виду.
func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}

	return addr.Address, nil
}

// verificationCode генерирует криптослучайный цифровой код фиксированной длины.
func verificationCode() (string, error) {
	max := big.NewInt(10)

	buf := make([]byte, verificationCodeLen)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}

		buf[i] = byte('0' + n.Int64())
	}

	return string(buf), nil
}
