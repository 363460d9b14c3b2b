package storage

import (
	"context"
	"errors"
	"time"

	"chat-backend/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/сессия/чат/участник).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email, пара chat_id+user_id).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя и проставляет ему ID.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// DeleteUser удаляет пользователя; его сессии и участия в чатах
	// удаляются каскадно на уровне БД.
	DeleteUser(ctx context.Context, id int64) error
}

// SessionStorage выполняет операции над авторизационными сессиями.
type SessionStorage interface {
	// SaveSession создаёт новую сессию и проставляет ей ID.
	SaveSession(ctx context.Context, session *models.AuthSession) error
	// ActiveSessionByID находит сессию по ID с условием expires_at > now.
	ActiveSessionByID(ctx context.Context, id int64, now time.Time) (*models.AuthSession, error)
	// ProlongSession атомарно инкрементирует access_token_id и продлевает
	// expires_at; возвращает новый access_token_id.
	ProlongSession(ctx context.Context, id int64, expiresAt time.Time) (int64, error)
	// DeleteSession удаляет сессию (sign-out).
	DeleteSession(ctx context.Context, id int64) error
	// DeleteExpiredSessions удаляет все просроченные сессии.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

// ChatStorage выполняет операции над чатами, участниками и сообщениями.
type ChatStorage interface {
	// SaveChat создаёт новый чат и проставляет ему ID.
	SaveChat(ctx context.Context, chat *models.Chat) error
	// ChatByID находит чат по ID.
	ChatByID(ctx context.Context, id int64) (*models.Chat, error)
	// Chats возвращает все чаты (для root-пользователя).
	Chats(ctx context.Context) ([]models.Chat, error)
	// ChatsByUserID возвращает чаты, в которых участвует пользователь.
	ChatsByUserID(ctx context.Context, userID int64) ([]models.Chat, error)
	// DeleteChat удаляет чат; участники и сообщения удаляются каскадно.
	DeleteChat(ctx context.Context, id int64) error

	// SaveParticipant добавляет участника в чат и проставляет ему ID.
	SaveParticipant(ctx context.Context, participant *models.ChatParticipant) error
	// ParticipantsByChatID возвращает всех участников чата.
	ParticipantsByChatID(ctx context.Context, chatID int64) ([]models.ChatParticipant, error)
	// DeleteParticipant удаляет участника из чата.
	DeleteParticipant(ctx context.Context, id int64) error

	// SaveMessage сохраняет сообщение и проставляет ему ID.
	SaveMessage(ctx context.Context, message *models.ChatMessage) error
	// MessagesByChatID возвращает сообщения чата в порядке создания.
	MessagesByChatID(ctx context.Context, chatID int64) ([]models.ChatMessage, error)
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	SessionStorage
	ChatStorage
	Close()
}
