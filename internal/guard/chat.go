package guard

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"chat-backend/internal/models"
	"chat-backend/internal/pkg/log"
	"chat-backend/internal/storage"
)

// Имена параметров маршрута, из которых гарды берут идентификаторы.
const (
	ChatIDParam        = "chatId"
	ParticipantIDParam = "chatParticipantId"
)

// ChatSource отдаёт чаты и их участников.
type ChatSource interface {
	ChatByID(ctx context.Context, id int64) (*models.Chat, error)
	ParticipantsByChatID(ctx context.Context, chatID int64) ([]models.ChatParticipant, error)
}

// ChatGuard разрешает чат из параметра маршрута и решает вопрос доступа.
//
// Требует, чтобы выше по цепочке уже отработал SessionGuard. Несуществующий
// чат — NotFound (всегда доводится до клиента как 404); существующий чат без
// членства — Deny. Root-пользователь получает доступ к любому чату.
type ChatGuard struct {
	chats ChatSource
}

// NewChatGuard создаёт гард доступа к чату.
func NewChatGuard(chats ChatSource) *ChatGuard {
	return &ChatGuard{chats: chats}
}

// Evaluate выполняет проверку доступа к чату.
// На успехе публикует чат в метаданные запроса.
func (g *ChatGuard) Evaluate(ctx context.Context, req Carrier) Decision {
	const op = "guard.ChatGuard.Evaluate"

	chatID := parseID(req.Param(ChatIDParam))
	if chatID == 0 {
		return NotFound
	}

	user, ok := UserFrom(req.Meta())
	if !ok {
		// SessionGuard обязателен выше по цепочке.
		return Deny
	}

	chat, err := g.chats.ChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFound
		}

		log.From(ctx).Error("chat_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return Deny
	}

	if user.IsRoot {
		PutChat(req.Meta(), chat)

		return Allow
	}

	participants, err := g.chats.ParticipantsByChatID(ctx, chatID)
	if err != nil {
		log.From(ctx).Error("participants_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return Deny
	}

	if !participates(participants, user.ID) {
		return Deny
	}

	PutChat(req.Meta(), chat)

	return Allow
}

// participates сообщает, есть ли пользователь среди участников.
func participates(participants []models.ChatParticipant, userID int64) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}

	return false
}

// parseID разбирает положительный числовой идентификатор из маршрута.
// Возвращает 0, если параметр отсутствует или некорректен.
func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}

	return id
}
