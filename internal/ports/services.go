package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/toodoo/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ValidateToken(tokenString string) (*Claims, error)
}

// TaskService interface for task management operations
type TaskService interface {
	CreateTask(ctx context.Context, actor uuid.UUID, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, actor uuid.UUID, id int) (*entities.Task, error)
	UpdateTask(ctx context.Context, actor uuid.UUID, id int, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, actor uuid.UUID, id int) error
	ListTasks(ctx context.Context, actor uuid.UUID, req ListTasksRequest) ([]*entities.Task, error)
	MarkCompleted(ctx context.Context, actor uuid.UUID, taskID int, completed bool) error
	ClearCompleted(ctx context.Context, actor uuid.UUID) (int64, error)
}

// CategoryService interface for category management operations
type CategoryService interface {
	CreateCategory(ctx context.Context, actor uuid.UUID, req CreateCategoryRequest) (*entities.Category, error)
	UpdateCategory(ctx context.Context, actor uuid.UUID, id int, req UpdateCategoryRequest) (*entities.Category, error)
	DeleteCategory(ctx context.Context, actor uuid.UUID, id int) error
	ListCategories(ctx context.Context, actor uuid.UUID) ([]*entities.Category, error)
	PinCategory(ctx context.Context, actor uuid.UUID, id int) error
	UnpinCategory(ctx context.Context, actor uuid.UUID, id int) error
	SetGlobal(ctx context.Context, actor uuid.UUID, id int, global bool) error
}

// CommentService interface for task comment operations
type CommentService interface {
	AddComment(ctx context.Context, actor uuid.UUID, taskID int, body string) (*entities.Comment, error)
	EditComment(ctx context.Context, actor uuid.UUID, id int, body string) (*entities.Comment, error)
	DeleteComment(ctx context.Context, actor uuid.UUID, id int) error
	ListComments(ctx context.Context, actor uuid.UUID, taskID int) ([]*entities.Comment, error)
}

// RecurrenceService materializes clones from recurring task templates.
type RecurrenceService interface {
	Run(ctx context.Context, today time.Time) (int, error)
}

// ActivityEmitter records audit entries and assignment notifications as a
// best-effort side channel of task/category mutations. Implementations must
// never return the emission failure to the caller of the primary mutation.
type ActivityEmitter interface {
	TaskCreated(ctx context.Context, task *entities.Task)
	TaskUpdated(ctx context.Context, prev, task *entities.Task)
	TaskDeleted(ctx context.Context, snapshot *entities.Task)
	CategoryCreated(ctx context.Context, category *entities.Category)
	CategoryUpdated(ctx context.Context, category *entities.Category)
	CategoryDeleted(ctx context.Context, snapshot *entities.Category)
}

// DashboardService computes per-user aggregate views.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*Dashboard, error)
}

// MessagingService owns conversations and message history.
type MessagingService interface {
	Inbox(ctx context.Context, actor uuid.UUID) ([]*entities.Conversation, error)
	StartConversation(ctx context.Context, actor uuid.UUID, username string) (*entities.Conversation, error)
	GetConversation(ctx context.Context, actor uuid.UUID, id int) (*entities.Conversation, error)
	DeleteConversation(ctx context.Context, actor uuid.UUID, id int) error
	SendMessage(ctx context.Context, actor uuid.UUID, conversationID int, content string) (*entities.PrivateMessage, error)
	ListMessages(ctx context.Context, actor uuid.UUID, conversationID int) ([]*entities.PrivateMessage, error)
	SaveChatMessage(ctx context.Context, username, roomName, content string) (*entities.ChatMessage, error)
	ChatHistory(ctx context.Context, roomName string, limit int) ([]*entities.ChatMessage, error)
}

// NotificationService lists and acknowledges a user's notifications.
type NotificationService interface {
	ListNotifications(ctx context.Context, actor uuid.UUID, unreadOnly bool) ([]*entities.Notification, error)
	MarkAllRead(ctx context.Context, actor uuid.UUID) error
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Task related types
type CreateTaskRequest struct {
	Title              string                      `json:"title" validate:"required,max=100"`
	Description        string                      `json:"description" validate:"max=2000"`
	AssignedTo         *uuid.UUID                  `json:"assigned_to"`
	CategoryID         *int                        `json:"category_id"`
	DueDate            *time.Time                  `json:"due_date"`
	Priority           *entities.Priority          `json:"priority"`
	FilePath           *string                     `json:"file_path"`
	Bookmarked         bool                        `json:"bookmarked"`
	Recurring          bool                        `json:"recurring"`
	RecurringInterval  *entities.RecurringInterval `json:"recurring_interval"`
	RecurringStartDate *time.Time                  `json:"recurring_start_date"`
	RecurringEndDate   *time.Time                  `json:"recurring_end_date"`
}

type UpdateTaskRequest struct {
	Title              *string                     `json:"title" validate:"omitempty,max=100"`
	Description        *string                     `json:"description" validate:"omitempty,max=2000"`
	AssignedTo         *uuid.UUID                  `json:"assigned_to"`
	ClearAssignee      bool                        `json:"clear_assignee"`
	CategoryID         *int                        `json:"category_id"`
	ClearCategory      bool                        `json:"clear_category"`
	DueDate            *time.Time                  `json:"due_date"`
	Completed          *bool                       `json:"completed"`
	Priority           *entities.Priority          `json:"priority"`
	Bookmarked         *bool                       `json:"bookmarked"`
	Recurring          *bool                       `json:"recurring"`
	RecurringInterval  *entities.RecurringInterval `json:"recurring_interval"`
	RecurringStartDate *time.Time                  `json:"recurring_start_date"`
	RecurringEndDate   *time.Time                  `json:"recurring_end_date"`
}

type ListTasksRequest struct {
	View       TaskView
	Search     *string
	CategoryID *int
	Limit      int
	Offset     int
}

// MarkCompletedRequest is the body of the completion-toggle endpoint.
type MarkCompletedRequest struct {
	TaskID    int  `json:"task_id" validate:"required"`
	Completed bool `json:"completed"`
}

// MarkCompletedResponse mirrors the toggle endpoint's JSON contract.
type MarkCompletedResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Category related types
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,len=7"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=50"`
	Color *string `json:"color" validate:"omitempty,len=7"`
}

// Comment related types
type CommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// Messaging related types
type StartConversationRequest struct {
	Username string `json:"username" validate:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// Dashboard aggregates
type Dashboard struct {
	AllTasksCount       int64              `json:"all_tasks_count"`
	ScheduledTasksCount int64              `json:"scheduled_tasks_count"`
	OverdueTasksCount   int64              `json:"overdue_tasks_count"`
	CompletedTasksCount int64              `json:"completed_tasks_count"`
	RecurringTasksCount int64              `json:"recurring_tasks_count"`
	BookmarkedCount     int64              `json:"bookmarked_tasks_count"`
	PriorityCounts      map[string]int64   `json:"priority_counts"`
	CreatedHistogram    []HistogramBucket  `json:"created_histogram"`
}

// HistogramBucket is one local calendar day of the created-tasks histogram.
type HistogramBucket struct {
	Day        time.Time      `json:"day"`
	ByPriority map[string]int `json:"by_priority"`
	Total      int            `json:"total"`
}

// Response types for pagination and common structures
type PaginatedResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
