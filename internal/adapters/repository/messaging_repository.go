package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/ports"
)

// ConversationRepositoryImpl implements the ConversationRepository interface
type ConversationRepositoryImpl struct {
	db *sqlx.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *sqlx.DB) ports.ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, participants []uuid.UUID) (*entities.Conversation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var conv entities.Conversation
	err = tx.QueryRowContext(ctx,
		`INSERT INTO conversations DEFAULT VALUES RETURNING id, created_at`,
	).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	for _, p := range participants {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2)`,
			conv.ID, p)
		if err != nil {
			return nil, fmt.Errorf("add participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	conv.Participants = participants
	return &conv, nil
}

func (r *ConversationRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Conversation, error) {
	var conv entities.Conversation
	err := r.db.GetContext(ctx, &conv,
		`SELECT id, created_at FROM conversations WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrConversationNotFound
		}
		return nil, fmt.Errorf("get conversation by id: %w", err)
	}

	err = r.db.SelectContext(ctx, &conv.Participants,
		`SELECT user_id FROM conversation_participants WHERE conversation_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get conversation participants: %w", err)
	}

	return &conv, nil
}

// FindBetween returns the conversation whose participant set is exactly {a, b}.
func (r *ConversationRepositoryImpl) FindBetween(ctx context.Context, a, b uuid.UUID) (*entities.Conversation, error) {
	query := `
		SELECT c.id
		FROM conversations c
		JOIN conversation_participants pa ON pa.conversation_id = c.id AND pa.user_id = $1
		JOIN conversation_participants pb ON pb.conversation_id = c.id AND pb.user_id = $2
		WHERE (SELECT COUNT(*) FROM conversation_participants p WHERE p.conversation_id = c.id) = 2
		LIMIT 1`

	var id int
	err := r.db.GetContext(ctx, &id, query, a, b)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrConversationNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *ConversationRepositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.Conversation, error) {
	query := `
		SELECT c.id, c.created_at
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.created_at DESC`

	var convs []*entities.Conversation
	err := r.db.SelectContext(ctx, &convs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	for _, conv := range convs {
		err = r.db.SelectContext(ctx, &conv.Participants,
			`SELECT user_id FROM conversation_participants WHERE conversation_id = $1`, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("get conversation participants: %w", err)
		}
	}

	return convs, nil
}

func (r *ConversationRepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrConversationNotFound
	}

	return nil
}

func (r *ConversationRepositoryImpl) CreateMessage(ctx context.Context, msg *entities.PrivateMessage) error {
	query := `
		INSERT INTO private_messages (conversation_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, read, created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.ConversationID, msg.SenderID, msg.Content,
	).Scan(&msg.ID, &msg.Read, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("create private message: %w", err)
	}

	return nil
}

func (r *ConversationRepositoryImpl) ListMessages(ctx context.Context, conversationID int) ([]*entities.PrivateMessage, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, u.username AS sender_name,
			m.content, m.read, m.created_at
		FROM private_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at`

	var messages []*entities.PrivateMessage
	err := r.db.SelectContext(ctx, &messages, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list private messages: %w", err)
	}

	return messages, nil
}

func (r *ConversationRepositoryImpl) MarkMessagesRead(ctx context.Context, conversationID int, readerID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE private_messages SET read = TRUE
		 WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE`,
		conversationID, readerID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	return nil
}

// ChatMessageRepositoryImpl implements the ChatMessageRepository interface
type ChatMessageRepositoryImpl struct {
	db *sqlx.DB
}

// NewChatMessageRepository creates a new chat message repository
func NewChatMessageRepository(db *sqlx.DB) ports.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{db: db}
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, msg *entities.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (room_name, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.RoomName, msg.SenderID, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}

	return nil
}

func (r *ChatMessageRepositoryImpl) ListByRoom(ctx context.Context, roomName string, limit int) ([]*entities.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT m.id, m.room_name, m.sender_id, u.username AS sender_name, m.content, m.created_at
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_name = $1
		ORDER BY m.created_at DESC
		LIMIT $2`

	var messages []*entities.ChatMessage
	err := r.db.SelectContext(ctx, &messages, query, roomName, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	// Oldest first for rendering
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
