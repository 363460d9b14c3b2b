package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-backend/internal/models"
	"chat-backend/internal/storage"

	"github.com/jackc/pgx/v5"
)

// SaveSession создаёт новую авторизационную сессию.
func (s *Storage) SaveSession(ctx context.Context, session *models.AuthSession) error {
	const op = "storage.postgres.SaveSession"

	query := `
		INSERT INTO auth_sessions(user_id, started_at, expires_at, access_token_id, device)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		session.UserID,
		session.StartedAt,
		session.ExpiresAt,
		session.AccessTokenID,
		session.Device,
	).Scan(&session.ID)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ActiveSessionByID находит сессию по ID с условием expires_at > now.
// Просроченная сессия неотличима от отсутствующей.
func (s *Storage) ActiveSessionByID(ctx context.Context, id int64, now time.Time) (*models.AuthSession, error) {
	const op = "storage.postgres.ActiveSessionByID"

	query := `
		SELECT id, user_id, started_at, expires_at, access_token_id, device
		FROM auth_sessions
		WHERE id = $1 AND expires_at > $2
	`

	var session models.AuthSession
	err := s.db.QueryRow(ctx, query, id, now).Scan(
		&session.ID,
		&session.UserID,
		&session.StartedAt,
		&session.ExpiresAt,
		&session.AccessTokenID,
		&session.Device,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &session, nil
}

// ProlongSession атомарно инкрементирует access_token_id и продлевает сессию.
// Возвращает новый access_token_id; ранее выданные токены с прежним jti
// перестают проходить проверку.
func (s *Storage) ProlongSession(ctx context.Context, id int64, expiresAt time.Time) (int64, error) {
	const op = "storage.postgres.ProlongSession"

	query := `
		UPDATE auth_sessions
		SET access_token_id = access_token_id + 1, expires_at = $2
		WHERE id = $1
		RETURNING access_token_id
	`

	var tokenID int64
	err := s.db.QueryRow(ctx, query, id, expiresAt).Scan(&tokenID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tokenID, nil
}

// DeleteSession удаляет сессию (sign-out).
func (s *Storage) DeleteSession(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteSession"

	query := `
		DELETE FROM auth_sessions
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

// DeleteExpiredSessions удаляет все просроченные сессии.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	const op = "storage.postgres.DeleteExpiredSessions"

	query := `
		DELETE FROM auth_sessions
		WHERE expires_at <= $1
	`

	_, err := s.db.Exec(ctx, query, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
