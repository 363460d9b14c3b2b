package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"chat-backend/internal/models"
	"chat-backend/internal/storage"
	"chat-backend/migrations"
)

// Файл интеграционных тестов для пакета postgres:
// - поднимает реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// - применяет embedded-миграции goose;
// - проверяет happy-path по пользователям/сессиям/чатам, уникальность,
//   каскадное удаление и фильтрацию просроченных сессий.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// startPostgres — поднимает временный экземпляр PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	// Применяем embedded-миграции через database/sql.
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Up(ctx, db))
	require.NoError(t, db.Close())

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

func seedUser(t *testing.T, st *Storage, email string) *models.User {
	t.Helper()

	u := &models.User{Email: email, PasswordHash: "hash", IsActive: true}
	require.NoError(t, st.SaveUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestIntegration_Users(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "user@example.com")

	got, err := st.UserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, got.IsActive)

	got, err = st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", got.Email)

	// Дубликат email.
	dup := &models.User{Email: "user@example.com", PasswordHash: "hash2", IsActive: true}
	require.ErrorIs(t, st.SaveUser(ctx, dup), storage.ErrAlreadyExists)

	// Отсутствующие записи.
	_, err = st.UserByEmail(ctx, "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.UserByID(ctx, 99999)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_Sessions(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "session@example.com")
	now := time.Now().UTC()

	s := &models.AuthSession{
		UserID:        u.ID,
		StartedAt:     now,
		ExpiresAt:     now.Add(time.Hour),
		AccessTokenID: 1,
		Device:        "fp-1",
	}
	require.NoError(t, st.SaveSession(ctx, s))
	require.NotZero(t, s.ID)

	got, err := st.ActiveSessionByID(ctx, s.ID, now)
	require.NoError(t, err)
	require.Equal(t, s.UserID, got.UserID)
	require.Equal(t, int64(1), got.AccessTokenID)
	require.Equal(t, "fp-1", got.Device)

	// Просроченная сессия не отдаётся как активная.
	_, err = st.ActiveSessionByID(ctx, s.ID, now.Add(2*time.Hour))
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Пролонгация инкрементирует access_token_id и двигает expires_at.
	tokenID, err := st.ProlongSession(ctx, s.ID, now.Add(3*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), tokenID)

	got, err = st.ActiveSessionByID(ctx, s.ID, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), got.AccessTokenID)

	// Удаление.
	require.NoError(t, st.DeleteSession(ctx, s.ID))
	_, err = st.ActiveSessionByID(ctx, s.ID, now)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, st.DeleteSession(ctx, s.ID), storage.ErrNotFound)
}

func TestIntegration_DeleteExpiredSessions(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "janitor@example.com")
	now := time.Now().UTC()

	expired := &models.AuthSession{
		UserID: u.ID, StartedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
		AccessTokenID: 1, Device: "fp",
	}
	alive := &models.AuthSession{
		UserID: u.ID, StartedAt: now, ExpiresAt: now.Add(time.Hour),
		AccessTokenID: 1, Device: "fp",
	}
	require.NoError(t, st.SaveSession(ctx, expired))
	require.NoError(t, st.SaveSession(ctx, alive))

	require.NoError(t, st.DeleteExpiredSessions(ctx, now))

	_, err := st.ActiveSessionByID(ctx, alive.ID, now)
	require.NoError(t, err)
	require.ErrorIs(t, st.DeleteSession(ctx, expired.ID), storage.ErrNotFound)
}

func TestIntegration_UserDeletionCascadesSessions(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "cascade@example.com")
	now := time.Now().UTC()

	s := &models.AuthSession{
		UserID: u.ID, StartedAt: now, ExpiresAt: now.Add(time.Hour),
		AccessTokenID: 1, Device: "fp",
	}
	require.NoError(t, st.SaveSession(ctx, s))

	require.NoError(t, st.DeleteUser(ctx, u.ID))

	// Сессии удалённого пользователя исчезают каскадно.
	_, err := st.ActiveSessionByID(ctx, s.ID, now)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_ChatsParticipantsMessages(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	creator := seedUser(t, st, "creator@example.com")
	member := seedUser(t, st, "member@example.com")
	outsider := seedUser(t, st, "outsider@example.com")

	chat := &models.Chat{CreatedAt: time.Now().UTC()}
	require.NoError(t, st.SaveChat(ctx, chat))
	require.NotZero(t, chat.ID)

	p1 := &models.ChatParticipant{ChatID: chat.ID, UserID: creator.ID, IsCreator: true, IsAdmin: true}
	p2 := &models.ChatParticipant{ChatID: chat.ID, UserID: member.ID}
	require.NoError(t, st.SaveParticipant(ctx, p1))
	require.NoError(t, st.SaveParticipant(ctx, p2))

	// Повторное участие того же пользователя — конфликт уникальности.
	dup := &models.ChatParticipant{ChatID: chat.ID, UserID: member.ID}
	require.ErrorIs(t, st.SaveParticipant(ctx, dup), storage.ErrAlreadyExists)

	participants, err := st.ParticipantsByChatID(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	// Выборка чатов по пользователю.
	chats, err := st.ChatsByUserID(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, chat.ID, chats[0].ID)

	chats, err = st.ChatsByUserID(ctx, outsider.ID)
	require.NoError(t, err)
	require.Empty(t, chats)

	// Сообщения приходят в порядке создания.
	for _, text := range []string{"first", "second", "third"} {
		msg := &models.ChatMessage{
			ChatID:        chat.ID,
			ParticipantID: p2.ID,
			CreatedAt:     time.Now().UTC(),
			Text:          text,
		}
		require.NoError(t, st.SaveMessage(ctx, msg))
	}

	messages, err := st.MessagesByChatID(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "first", messages[0].Text)
	require.Equal(t, "third", messages[2].Text)

	// Удаление чата каскадно чистит участников и сообщения.
	require.NoError(t, st.DeleteChat(ctx, chat.ID))

	participants, err = st.ParticipantsByChatID(ctx, chat.ID)
	require.NoError(t, err)
	require.Empty(t, participants)

	messages, err = st.MessagesByChatID(ctx, chat.ID)
	require.NoError(t, err)
	require.Empty(t, messages)
}
