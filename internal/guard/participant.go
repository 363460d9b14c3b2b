package guard

import (
	"context"
	"log/slog"

	"chat-backend/internal/pkg/log"
)

// ParticipantGuard разрешает участника чата из параметра маршрута.
//
// Требует, чтобы выше по цепочке отработали SessionGuard и ChatGuard.
// Участник ищется только среди участников уже разрешённого чата, поэтому
// подставить ID участника чужого чата нельзя: это NotFound.
type ParticipantGuard struct {
	chats ChatSource
}

// NewParticipantGuard создаёт гард доступа к участнику чата.
func NewParticipantGuard(chats ChatSource) *ParticipantGuard {
	return &ParticipantGuard{chats: chats}
}

// Evaluate выполняет проверку доступа к участнику чата.
// На успехе публикует участника в метаданные запроса.
func (g *ParticipantGuard) Evaluate(ctx context.Context, req Carrier) Decision {
	const op = "guard.ParticipantGuard.Evaluate"

	participantID := parseID(req.Param(ParticipantIDParam))
	if participantID == 0 {
		return NotFound
	}

	user, ok := UserFrom(req.Meta())
	if !ok {
		return Deny
	}

	chat, ok := ChatFrom(req.Meta())
	if !ok {
		// ChatGuard обязателен выше по цепочке.
		return Deny
	}

	participants, err := g.chats.ParticipantsByChatID(ctx, chat.ID)
	if err != nil {
		log.From(ctx).Error("participants_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return Deny
	}

	var found int = -1
	for i, p := range participants {
		if p.ID == participantID {
			found = i
			break
		}
	}

	if found < 0 {
		return NotFound
	}

	participant := participants[found]

	if user.IsRoot {
		PutParticipant(req.Meta(), &participant)

		return Allow
	}

	if !participates(participants, user.ID) {
		return Deny
	}

	PutParticipant(req.Meta(), &participant)

	return Allow
}
