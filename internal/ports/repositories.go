package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/toodoo/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]*entities.User, error)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id int) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	DeleteCompleted(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error)
	GetRecurringTemplates(ctx context.Context, today time.Time) ([]*entities.Task, error)
	CloneExists(ctx context.Context, parentTaskID int, dueDate time.Time) (bool, error)
	CountCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CreatedCount, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	GetByID(ctx context.Context, id int) (*entities.Category, error)
	Update(ctx context.Context, category *entities.Category) error
	Delete(ctx context.Context, id int) error
	ListVisible(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error)
	Pin(ctx context.Context, userID uuid.UUID, categoryID int) error
	Unpin(ctx context.Context, userID uuid.UUID, categoryID int) error
	ListPinned(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *entities.Comment) error
	GetByID(ctx context.Context, id int) (*entities.Comment, error)
	Update(ctx context.Context, comment *entities.Comment) error
	Delete(ctx context.Context, id int) error
	ListByTask(ctx context.Context, taskID int) ([]*entities.Comment, error)
}

// ConversationRepository defines the interface for conversation and
// private message data operations
type ConversationRepository interface {
	Create(ctx context.Context, participants []uuid.UUID) (*entities.Conversation, error)
	GetByID(ctx context.Context, id int) (*entities.Conversation, error)
	FindBetween(ctx context.Context, a, b uuid.UUID) (*entities.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.Conversation, error)
	Delete(ctx context.Context, id int) error
	CreateMessage(ctx context.Context, msg *entities.PrivateMessage) error
	ListMessages(ctx context.Context, conversationID int) ([]*entities.PrivateMessage, error)
	MarkMessagesRead(ctx context.Context, conversationID int, readerID uuid.UUID) error
}

// ChatMessageRepository defines the interface for shared-room chat history
type ChatMessageRepository interface {
	Create(ctx context.Context, msg *entities.ChatMessage) error
	ListByRoom(ctx context.Context, roomName string, limit int) ([]*entities.ChatMessage, error)
}

// ActivityLogRepository defines the interface for the append-only audit trail
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *entities.ActivityLog) error
	ListRecent(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*entities.ActivityLog, error)
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// AuthRepository defines the interface for refresh token operations
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// Filter types for repository queries

type UserFilter struct {
	Search *string
	Limit  int
	Offset int
}

// TaskView selects one of the derived task list views.
type TaskView string

const (
	ViewAll        TaskView = "all"
	ViewCompleted  TaskView = "completed"
	ViewScheduled  TaskView = "scheduled"
	ViewOverdue    TaskView = "overdue"
	ViewRecurring  TaskView = "recurring"
	ViewBookmarked TaskView = "bookmarked"
)

func (v TaskView) IsValid() bool {
	switch v {
	case ViewAll, ViewCompleted, ViewScheduled, ViewOverdue, ViewRecurring, ViewBookmarked:
		return true
	default:
		return false
	}
}

type TaskFilter struct {
	// VisibleTo scopes the query to tasks the user owns or is assigned to.
	VisibleTo  *uuid.UUID
	View       TaskView
	Now        time.Time
	CategoryID *int
	Priority   *entities.Priority
	Completed  *bool
	Search     *string
	Limit      int
	Offset     int
}

// CreatedCount is one histogram cell: tasks of one priority created within one
// day-wide bin anchored at the query's `from` instant. Priority is empty for
// tasks with no priority set.
type CreatedCount struct {
	Day      time.Time         `db:"day"`
	Priority entities.Priority `db:"priority"`
	Count    int               `db:"count"`
}

// RefreshToken represents a refresh token record
type RefreshToken struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsExpired checks if the refresh token is expired
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token is revoked
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsValid checks if the refresh token is valid
func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked()
}
