package postgres

import (
	"context"
	"errors"
	"fmt"

	"chat-backend/internal/models"
	"chat-backend/internal/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SaveChat создаёт новый чат.
func (s *Storage) SaveChat(ctx context.Context, chat *models.Chat) error {
	const op = "storage.postgres.SaveChat"

	query := `
		INSERT INTO chats(created_at, ended_at)
		VALUES ($1, $2)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query, chat.CreatedAt, chat.EndedAt).Scan(&chat.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ChatByID находит чат по ID.
func (s *Storage) ChatByID(ctx context.Context, id int64) (*models.Chat, error) {
	const op = "storage.postgres.ChatByID"

	query := `
		SELECT id, created_at, ended_at
		FROM chats
		WHERE id = $1
	`

	var chat models.Chat
	err := s.db.QueryRow(ctx, query, id).Scan(&chat.ID, &chat.CreatedAt, &chat.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &chat, nil
}

// Chats возвращает все чаты (для root-пользователя).
func (s *Storage) Chats(ctx context.Context) ([]models.Chat, error) {
	const op = "storage.postgres.Chats"

	query := `
		SELECT id, created_at, ended_at
		FROM chats
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanChats(rows, op)
}

// ChatsByUserID возвращает чаты, в которых участвует пользователь.
func (s *Storage) ChatsByUserID(ctx context.Context, userID int64) ([]models.Chat, error) {
	const op = "storage.postgres.ChatsByUserID"

	query := `
		SELECT c.id, c.created_at, c.ended_at
		FROM chats c
		JOIN chat_participants p ON p.chat_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.id
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanChats(rows, op)
}

func scanChats(rows pgx.Rows, op string) ([]models.Chat, error) {
	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.CreatedAt, &chat.EndedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		chats = append(chats, chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return chats, nil
}

// DeleteChat удаляет чат. Участники и сообщения удаляются каскадно.
func (s *Storage) DeleteChat(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteChat"

	query := `
		DELETE FROM chats
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SaveParticipant добавляет участника в чат.
func (s *Storage) SaveParticipant(ctx context.Context, participant *models.ChatParticipant) error {
	const op = "storage.postgres.SaveParticipant"

	query := `
		INSERT INTO chat_participants(chat_id, user_id, is_creator, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		participant.ChatID,
		participant.UserID,
		participant.IsCreator,
		participant.IsAdmin,
	).Scan(&participant.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ParticipantsByChatID возвращает всех участников чата.
func (s *Storage) ParticipantsByChatID(ctx context.Context, chatID int64) ([]models.ChatParticipant, error) {
	const op = "storage.postgres.ParticipantsByChatID"

	query := `
		SELECT id, chat_id, user_id, is_creator, is_admin
		FROM chat_participants
		WHERE chat_id = $1
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var participants []models.ChatParticipant
	for rows.Next() {
		var p models.ChatParticipant
		if err := rows.Scan(&p.ID, &p.ChatID, &p.UserID, &p.IsCreator, &p.IsAdmin); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return participants, nil
}

// DeleteParticipant удаляет участника из чата.
func (s *Storage) DeleteParticipant(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteParticipant"

	query := `
		DELETE FROM chat_participants
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SaveMessage сохраняет сообщение в чате.
func (s *Storage) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	const op = "storage.postgres.SaveMessage"

	query := `
		INSERT INTO chat_messages(chat_id, chat_participant_id, created_at, text)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		message.ChatID,
		message.ParticipantID,
		message.CreatedAt,
		message.Text,
	).Scan(&message.ID)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MessagesByChatID возвращает сообщения чата в порядке создания.
func (s *Storage) MessagesByChatID(ctx context.Context, chatID int64) ([]models.ChatMessage, error) {
	const op = "storage.postgres.MessagesByChatID"

	query := `
		SELECT id, chat_id, chat_participant_id, created_at, text
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.ParticipantID, &m.CreatedAt, &m.Text); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return messages, nil
}
