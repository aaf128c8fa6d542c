package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("forbidden")
	ErrNotParticipant       = errors.New("user is not a participant of the conversation")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidInterval      = errors.New("invalid recurring interval")
	ErrAlreadyPinned        = errors.New("category already pinned")
)

// Enums and types
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type RecurringInterval string

const (
	IntervalMinute  RecurringInterval = "minute"
	IntervalDaily   RecurringInterval = "daily"
	IntervalWeekly  RecurringInterval = "weekly"
	IntervalMonthly RecurringInterval = "monthly"
)

type ActivityAction string

const (
	ActionTaskAdd        ActivityAction = "task_add"
	ActionTaskUpdate     ActivityAction = "task_update"
	ActionTaskComplete   ActivityAction = "task_complete"
	ActionTaskDelete     ActivityAction = "task_delete"
	ActionCategoryAdd    ActivityAction = "category_add"
	ActionCategoryUpdate ActivityAction = "category_update"
	ActionCategoryDelete ActivityAction = "category_delete"
)

// User represents an account in the system
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" db:"deleted_at"`
}

// Task represents a task in the system. A task with Recurring set and a
// recurrence window acts as a template; rows generated from it reference it
// through ParentTaskID and are called clones.
type Task struct {
	ID                 int                `json:"id" db:"id"`
	UserID             uuid.UUID          `json:"user_id" db:"user_id"`
	AssignedTo         *uuid.UUID         `json:"assigned_to" db:"assigned_to"`
	Title              string             `json:"title" db:"title"`
	Description        string             `json:"description" db:"description"`
	Completed          bool               `json:"completed" db:"completed"`
	CategoryID         *int               `json:"category_id" db:"category_id"`
	DueDate            *time.Time         `json:"due_date" db:"due_date"`
	Priority           *Priority          `json:"priority" db:"priority"`
	FilePath           *string            `json:"file_path" db:"file_path"`
	Bookmarked         bool               `json:"bookmarked" db:"bookmarked"`
	Recurring          bool               `json:"recurring" db:"recurring"`
	RecurringInterval  *RecurringInterval `json:"recurring_interval" db:"recurring_interval"`
	RecurringStartDate *time.Time         `json:"recurring_start_date" db:"recurring_start_date"`
	RecurringEndDate   *time.Time         `json:"recurring_end_date" db:"recurring_end_date"`
	ParentTaskID       *int               `json:"parent_task_id" db:"parent_task_id"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// Category groups tasks. A category marked global is visible to every user.
type Category struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Color     string    `json:"color" db:"color"`
	IsGlobal  bool      `json:"is_global" db:"is_global"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserCategory pins a category to a user's sidebar. Unique per (user, category).
type UserCategory struct {
	ID         int       `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	CategoryID int       `json:"category_id" db:"category_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Comment belongs to exactly one task and is removed with it.
type Comment struct {
	ID        int        `json:"id" db:"id"`
	TaskID    int        `json:"task_id" db:"task_id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Body      string     `json:"body" db:"body"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Conversation is a set of participant users exchanging private messages.
type Conversation struct {
	ID           int         `json:"id" db:"id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	Participants []uuid.UUID `json:"participants,omitempty"`
}

// PrivateMessage belongs to one conversation. The sender must be among the
// conversation's participants.
type PrivateMessage struct {
	ID             int       `json:"id" db:"id"`
	ConversationID int       `json:"conversation_id" db:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id" db:"sender_id"`
	SenderName     string    `json:"sender_name" db:"sender_name"`
	Content        string    `json:"content" db:"content"`
	Read           bool      `json:"read" db:"read"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ChatMessage is a message persisted for the shared broadcast room.
type ChatMessage struct {
	ID         int       `json:"id" db:"id"`
	RoomName   string    `json:"room_name" db:"room_name"`
	SenderID   uuid.UUID `json:"sender_id" db:"sender_id"`
	SenderName string    `json:"sender_name" db:"sender_name"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ActivityLog is an append-only audit record. Rows are never mutated.
type ActivityLog struct {
	ID        int            `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Action    ActivityAction `json:"action" db:"action"`
	ObjectID  int            `json:"object_id" db:"object_id"`
	Details   string         `json:"details" db:"details"`
	Timestamp time.Time      `json:"timestamp" db:"timestamp"`
}

// Notification is created by the emitter, never by direct user action.
// The read flag only moves false -> true.
type Notification struct {
	ID        int       `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	TaskID    *int      `json:"task_id" db:"task_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Business logic methods for Task

// IsClone reports whether the task was generated from a recurring template.
func (t *Task) IsClone() bool {
	return t.ParentTaskID != nil
}

// IsOverdue reports whether the task is open with a due date in the past.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now) && !t.Completed
}

// IsScheduled reports whether the task is open with a due date now or later.
func (t *Task) IsScheduled(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return !t.DueDate.Before(now) && !t.Completed
}

// VisibleTo reports whether the user owns the task or is assigned to it.
func (t *Task) VisibleTo(userID uuid.UUID) bool {
	if t.UserID == userID {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// NextDueDate computes the next occurrence for a recurring template.
// The monthly step is a fixed 30 days, not calendar-month arithmetic.
func (t *Task) NextDueDate() (time.Time, error) {
	if t.DueDate == nil || t.RecurringInterval == nil {
		return time.Time{}, ErrInvalidInterval
	}
	switch *t.RecurringInterval {
	case IntervalMinute:
		return t.DueDate.Add(time.Minute), nil
	case IntervalDaily:
		return t.DueDate.AddDate(0, 0, 1), nil
	case IntervalWeekly:
		return t.DueDate.AddDate(0, 0, 7), nil
	case IntervalMonthly:
		return t.DueDate.AddDate(0, 0, 30), nil
	default:
		return time.Time{}, ErrInvalidInterval
	}
}

// InRecurrenceWindow reports whether a candidate due date falls inside the
// template's recurrence window. A missing start date leaves the window open
// on the left; a missing end date means the template is never expanded.
func (t *Task) InRecurrenceWindow(due time.Time) bool {
	if t.RecurringEndDate == nil {
		return false
	}
	if due.After(*t.RecurringEndDate) {
		return false
	}
	if t.RecurringStartDate != nil && due.Before(*t.RecurringStartDate) {
		return false
	}
	return true
}

// Business logic methods for Conversation

// HasParticipant reports whether the user belongs to the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Utility methods

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

func (ri RecurringInterval) IsValid() bool {
	switch ri {
	case IntervalMinute, IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	default:
		return false
	}
}

func (a ActivityAction) IsValid() bool {
	switch a {
	case ActionTaskAdd, ActionTaskUpdate, ActionTaskComplete, ActionTaskDelete,
		ActionCategoryAdd, ActionCategoryUpdate, ActionCategoryDelete:
		return true
	default:
		return false
	}
}
