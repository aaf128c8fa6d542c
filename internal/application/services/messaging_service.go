package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// MessagingService owns conversations, private messages and the shared-room
// chat history.
type MessagingService struct {
	conversationRepo ports.ConversationRepository
	chatRepo         ports.ChatMessageRepository
	userRepo         ports.UserRepository
	logger           *logger.Logger
}

// NewMessagingService creates a new messaging service
func NewMessagingService(conversationRepo ports.ConversationRepository, chatRepo ports.ChatMessageRepository, userRepo ports.UserRepository, logger *logger.Logger) *MessagingService {
	return &MessagingService{
		conversationRepo: conversationRepo,
		chatRepo:         chatRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// Inbox lists the actor's conversations
func (s *MessagingService) Inbox(ctx context.Context, actor uuid.UUID) ([]*entities.Conversation, error) {
	conversations, err := s.conversationRepo.ListForUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return conversations, nil
}

// StartConversation finds or creates the two-party conversation between the
// actor and the named user.
func (s *MessagingService) StartConversation(ctx context.Context, actor uuid.UUID, username string) (*entities.Conversation, error) {
	peer, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if peer.ID == actor {
		return nil, fmt.Errorf("cannot start a conversation with yourself")
	}

	conv, err := s.conversationRepo.FindBetween(ctx, actor, peer.ID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, entities.ErrConversationNotFound) {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	conv, err = s.conversationRepo.Create(ctx, []uuid.UUID{actor, peer.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.logger.Info("Conversation started", "conversation_id", conv.ID, "user_id", actor, "peer_id", peer.ID)

	return conv, nil
}

// GetConversation returns a conversation the actor participates in
func (s *MessagingService) GetConversation(ctx context.Context, actor uuid.UUID, id int) (*entities.Conversation, error) {
	conv, err := s.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(actor) {
		return nil, entities.ErrNotParticipant
	}

	return conv, nil
}

// DeleteConversation deletes a conversation the actor participates in
func (s *MessagingService) DeleteConversation(ctx context.Context, actor uuid.UUID, id int) error {
	conv, err := s.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(actor) {
		return entities.ErrNotParticipant
	}

	if err := s.conversationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	s.logger.Info("Conversation deleted", "conversation_id", id, "user_id", actor)

	return nil
}

// SendMessage persists a private message from the actor into a conversation
// the actor participates in.
func (s *MessagingService) SendMessage(ctx context.Context, actor uuid.UUID, conversationID int, content string) (*entities.PrivateMessage, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(actor) {
		return nil, entities.ErrNotParticipant
	}

	sender, err := s.userRepo.GetByID(ctx, actor)
	if err != nil {
		return nil, err
	}

	msg := &entities.PrivateMessage{
		ConversationID: conversationID,
		SenderID:       actor,
		SenderName:     sender.Username,
		Content:        content,
	}

	if err := s.conversationRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return msg, nil
}

// ListMessages returns the message history of a conversation the actor
// participates in, oldest first. Messages from the other side are marked read.
func (s *MessagingService) ListMessages(ctx context.Context, actor uuid.UUID, conversationID int) ([]*entities.PrivateMessage, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(actor) {
		return nil, entities.ErrNotParticipant
	}

	messages, err := s.conversationRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if err := s.conversationRepo.MarkMessagesRead(ctx, conversationID, actor); err != nil {
		s.logger.Warn("Failed to mark messages read", "error", err, "conversation_id", conversationID)
	}

	return messages, nil
}

// SaveChatMessage persists one shared-room message. The sender is resolved by
// username because that is what the room frame carries.
func (s *MessagingService) SaveChatMessage(ctx context.Context, username, roomName, content string) (*entities.ChatMessage, error) {
	sender, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	msg := &entities.ChatMessage{
		RoomName:   roomName,
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Content:    content,
	}

	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create chat message: %w", err)
	}

	return msg, nil
}

// ChatHistory returns the most recent shared-room messages, oldest first
func (s *MessagingService) ChatHistory(ctx context.Context, roomName string, limit int) ([]*entities.ChatMessage, error) {
	messages, err := s.chatRepo.ListByRoom(ctx, roomName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}

	return messages, nil
}
