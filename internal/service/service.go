// service реализует бизнес-логику сервиса: регистрацию и аутентификацию
// пользователей, управление чатами, участниками и сообщениями.
package service

import (
	"errors"
	"time"

	"chat-backend/internal/cache"
	"chat-backend/internal/mailer"
	"chat-backend/internal/storage"
)

// Сентинельные ошибки уровня бизнес-логики.
// Транспортный слой отображает их в HTTP-статусы.
var (
	// ErrInvalidCredentials - неверная пара email/пароль (401 Unauthorized).
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidVerification - тикет не найден/просрочен или код не совпал
	// (401 Unauthorized).
	ErrInvalidVerification = errors.New("invalid verification")
	// ErrEmailTaken - email уже занят (409 Conflict).
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidEmail - строка не похожа на email (400 Bad Request).
	ErrInvalidEmail = errors.New("invalid email")
	// ErrWeakPassword - пароль короче минимальной длины (400 Bad Request).
	ErrWeakPassword = errors.New("password is too weak")
	// ErrEmptyText - пустой текст сообщения (400 Bad Request).
	ErrEmptyText = errors.New("empty message text")
	// ErrChatEnded - чат завершён, запись в него запрещена (412 Precondition Failed).
	ErrChatEnded = errors.New("chat already ended")
	// ErrForbidden - операция запрещена для текущего пользователя (403 Forbidden).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound - сущность не найдена (404 Not Found).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists - нарушение уникальности (409 Conflict).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInternal - внутренняя ошибка (500 Internal Server Error).
	ErrInternal = errors.New("internal error")
)

// Notifier получает уведомления о новых сообщениях чата
// (реализуется WS-шлюзом; nil - уведомления отключены).
type Notifier interface {
	NotifyMessage(chatID int64, payload any)
}

// Options - параметры создания сервиса.
type Options struct {
	// TokenSignature - секрет подписи авторизационных JWT.
	TokenSignature string
	// SessionTTL - срок жизни сессии с момента выпуска/пролонгации.
	SessionTTL time.Duration
	// VerificationTTL - срок жизни незавершённой регистрации.
	VerificationTTL time.Duration
	// Now - источник текущего времени; по умолчанию time.Now (UTC).
	Now func() time.Time
}

// Service - слой бизнес-логики поверх хранилища.
type Service struct {
	storage  storage.Storage
	pending  cache.SignUpCache
	mailer   mailer.Mailer
	notifier Notifier

	signature       string
	sessionTTL      time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// New создаёт сервис.
func New(st storage.Storage, pending cache.SignUpCache, m mailer.Mailer, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		storage:         st,
		pending:         pending,
		mailer:          m,
		signature:       opts.TokenSignature,
		sessionTTL:      opts.SessionTTL,
		verificationTTL: opts.VerificationTTL,
		now:             now,
	}
}

// SetNotifier подключает получателя уведомлений о сообщениях.
// Вызывается один раз при сборке приложения, до старта сервера.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}
