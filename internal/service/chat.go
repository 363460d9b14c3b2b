package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chat-backend/internal/models"
	"chat-backend/internal/storage"
)

// ListChats возвращает чаты, доступные пользователю: root видит все,
// остальные - только те, в которых участвуют.
func (s *Service) ListChats(ctx context.Context, user *models.User) ([]models.Chat, error) {
	const op = "service.ListChats"

	var (
		chats []models.Chat
		err   error
	)

	if user.IsRoot {
		chats, err = s.storage.Chats(ctx)
	} else {
		chats, err = s.storage.ChatsByUserID(ctx, user.ID)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return chats, nil
}

// CreateChat создаёт чат; создатель сразу становится его участником
// с правами создателя и администратора.
func (s *Service) CreateChat(ctx context.Context, user *models.User) (*models.Chat, error) {
	const op = "service.CreateChat"

	chat := &models.Chat{CreatedAt: s.now()}
	if err := s.storage.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creator := &models.ChatParticipant{
		ChatID:    chat.ID,
		UserID:    user.ID,
		IsCreator: true,
		IsAdmin:   true,
	}
	if err := s.storage.SaveParticipant(ctx, creator); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return chat, nil
}

// DeleteChat удаляет чат. Разрешено создателю чата и root-пользователю;
// участники и сообщения удаляются каскадно.
func (s *Service) DeleteChat(ctx context.Context, user *models.User, chat *models.Chat) error {
	const op = "service.DeleteChat"

	if !user.IsRoot {
		me, err := s.participantOf(ctx, chat.ID, user.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if me == nil || !me.IsCreator {
			return ErrForbidden
		}
	}

	if err := s.storage.DeleteChat(ctx, chat.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AddParticipant добавляет пользователя в чат. Разрешено создателю,
// администратору чата и root-пользователю.
func (s *Service) AddParticipant(ctx context.Context, user *models.User, chat *models.Chat, targetUserID int64) (*models.ChatParticipant, error) {
	const op = "service.AddParticipant"

	if chat.Ended(s.now()) {
		return nil, ErrChatEnded
	}

	if err := s.requireManager(ctx, user, chat); err != nil {
		return nil, err
	}

	if _, err := s.storage.UserByID(ctx, targetUserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	participant := &models.ChatParticipant{
		ChatID: chat.ID,
		UserID: targetUserID,
	}
	if err := s.storage.SaveParticipant(ctx, participant); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return participant, nil
}

// RemoveParticipant удаляет участника из чата. Разрешено создателю,
// администратору, root-пользователю - и самому участнику (выход из чата).
// Создателя чата удалить нельзя.
func (s *Service) RemoveParticipant(ctx context.Context, user *models.User, chat *models.Chat, participant *models.ChatParticipant) error {
	const op = "service.RemoveParticipant"

	if participant.IsCreator {
		return ErrForbidden
	}

	if participant.UserID != user.ID {
		if err := s.requireManager(ctx, user, chat); err != nil {
			return err
		}
	}

	if err := s.storage.DeleteParticipant(ctx, participant.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Participants возвращает участников чата.
func (s *Service) Participants(ctx context.Context, chat *models.Chat) ([]models.ChatParticipant, error) {
	const op = "service.Participants"

	participants, err := s.storage.ParticipantsByChatID(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return participants, nil
}

// Messages возвращает сообщения чата в порядке создания.
func (s *Service) Messages(ctx context.Context, chat *models.Chat) ([]models.ChatMessage, error) {
	const op = "service.Messages"

	messages, err := s.storage.MessagesByChatID(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return messages, nil
}

// PostMessage сохраняет сообщение от имени пользователя и уведомляет
// подписчиков чата. Писать можно только в незавершённый чат и только
// будучи его участником (root без участия писать не может).
func (s *Service) PostMessage(ctx context.Context, user *models.User, chat *models.Chat, text string) (*models.ChatMessage, error) {
	const op = "service.PostMessage"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	if chat.Ended(s.now()) {
		return nil, ErrChatEnded
	}

	me, err := s.participantOf(ctx, chat.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if me == nil {
		return nil, ErrForbidden
	}

	message := &models.ChatMessage{
		ChatID:        chat.ID,
		ParticipantID: me.ID,
		CreatedAt:     s.now(),
		Text:          text,
	}
	if err := s.storage.SaveMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(chat.ID, message)
	}

	return message, nil
}

// requireManager проверяет право управлять составом чата:
// root, создатель или администратор.
func (s *Service) requireManager(ctx context.Context, user *models.User, chat *models.Chat) error {
	const op = "service.requireManager"

	if user.IsRoot {
		return nil
	}

	me, err := s.participantOf(ctx, chat.ID, user.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if me == nil || (!me.IsCreator && !me.IsAdmin) {
		return ErrForbidden
	}

	return nil
}

// participantOf находит участие пользователя в чате; nil - не участвует.
func (s *Service) participantOf(ctx context.Context, chatID, userID int64) (*models.ChatParticipant, error) {
	participants, err := s.storage.ParticipantsByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for i := range participants {
		if participants[i].UserID == userID {
			return &participants[i], nil
		}
	}

	return nil, nil
}
