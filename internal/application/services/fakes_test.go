package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/ports"
)

// In-memory fakes of the repository ports, shared by the service tests.

type fakeTaskRepo struct {
	nextID    int
	tasks     map[int]*entities.Task
	createErr error
	cloneErr  error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int]*entities.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *entities.Task) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	task.ID = r.nextID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = task.CreatedAt
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int) (*entities.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *entities.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) matches(task *entities.Task, filter ports.TaskFilter) bool {
	if filter.VisibleTo != nil && !task.VisibleTo(*filter.VisibleTo) {
		return false
	}

	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch filter.View {
	case ports.ViewCompleted:
		if !task.Completed {
			return false
		}
	case ports.ViewScheduled:
		if !task.IsScheduled(now) {
			return false
		}
	case ports.ViewOverdue:
		if !task.IsOverdue(now) {
			return false
		}
	case ports.ViewRecurring:
		if !task.Recurring {
			return false
		}
	case ports.ViewBookmarked:
		if !task.Bookmarked {
			return false
		}
	}

	if filter.Completed != nil && task.Completed != *filter.Completed {
		return false
	}
	if filter.CategoryID != nil && (task.CategoryID == nil || *task.CategoryID != *filter.CategoryID) {
		return false
	}
	if filter.Priority != nil && (task.Priority == nil || *task.Priority != *filter.Priority) {
		return false
	}
	if filter.Search != nil && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(*filter.Search)) {
		return false
	}

	return true
}

func (r *fakeTaskRepo) List(_ context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	var out []*entities.Task
	for id := 1; id <= r.nextID; id++ {
		task, ok := r.tasks[id]
		if !ok {
			continue
		}
		if r.matches(task, filter) {
			clone := *task
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Count(ctx context.Context, filter ports.TaskFilter) (int64, error) {
	tasks, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(tasks)), nil
}

func (r *fakeTaskRepo) DeleteCompleted(_ context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	var deleted []*entities.Task
	for id := 1; id <= r.nextID; id++ {
		task, ok := r.tasks[id]
		if !ok {
			continue
		}
		if task.UserID == userID && task.Completed {
			clone := *task
			deleted = append(deleted, &clone)
			delete(r.tasks, id)
		}
	}
	return deleted, nil
}

func (r *fakeTaskRepo) GetRecurringTemplates(_ context.Context, today time.Time) ([]*entities.Task, error) {
	var out []*entities.Task
	for id := 1; id <= r.nextID; id++ {
		task, ok := r.tasks[id]
		if !ok {
			continue
		}
		if task.Recurring && task.RecurringEndDate != nil && !task.RecurringEndDate.Before(today) {
			clone := *task
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CloneExists(_ context.Context, parentTaskID int, dueDate time.Time) (bool, error) {
	if r.cloneErr != nil {
		return false, r.cloneErr
	}
	for _, task := range r.tasks {
		if task.ParentTaskID != nil && *task.ParentTaskID == parentTaskID &&
			task.DueDate != nil && task.DueDate.Equal(dueDate) {
			return true, nil
		}
	}
	return false, nil
}

// CountCreatedBetween mirrors the SQL contract: rows are grouped into
// day-wide bins anchored at from.
func (r *fakeTaskRepo) CountCreatedBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]ports.CreatedCount, error) {
	type key struct {
		day      time.Time
		priority entities.Priority
	}
	grouped := make(map[key]int)
	for _, task := range r.tasks {
		if !task.VisibleTo(userID) {
			continue
		}
		if task.CreatedAt.Before(from) || !task.CreatedAt.Before(to) {
			continue
		}
		day := from.Add(task.CreatedAt.Sub(from) / (24 * time.Hour) * (24 * time.Hour))
		priority := entities.Priority("")
		if task.Priority != nil {
			priority = *task.Priority
		}
		grouped[key{day, priority}]++
	}

	var out []ports.CreatedCount
	for k, n := range grouped {
		out = append(out, ports.CreatedCount{Day: k.day, Priority: k.priority, Count: n})
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*entities.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *entities.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return entities.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ ports.UserFilter) ([]*entities.User, error) {
	var out []*entities.User
	for _, user := range r.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

type fakeCategoryRepo struct {
	nextID     int
	categories map[int]*entities.Category
	pinned     map[uuid.UUID]map[int]bool
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: make(map[int]*entities.Category),
		pinned:     make(map[uuid.UUID]map[int]bool),
	}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *entities.Category) error {
	r.nextID++
	category.ID = r.nextID
	category.CreatedAt = time.Now()
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int) (*entities.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, entities.ErrCategoryNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *entities.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return entities.ErrCategoryNotFound
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.categories[id]; !ok {
		return entities.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) ListVisible(_ context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	var out []*entities.Category
	for _, category := range r.categories {
		if category.UserID == userID || category.IsGlobal {
			clone := *category
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Pin(_ context.Context, userID uuid.UUID, categoryID int) error {
	if r.pinned[userID] == nil {
		r.pinned[userID] = make(map[int]bool)
	}
	if r.pinned[userID][categoryID] {
		return entities.ErrAlreadyPinned
	}
	r.pinned[userID][categoryID] = true
	return nil
}

func (r *fakeCategoryRepo) Unpin(_ context.Context, userID uuid.UUID, categoryID int) error {
	if !r.pinned[userID][categoryID] {
		return entities.ErrCategoryNotFound
	}
	delete(r.pinned[userID], categoryID)
	return nil
}

func (r *fakeCategoryRepo) ListPinned(_ context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	var out []*entities.Category
	for id := range r.pinned[userID] {
		if category, ok := r.categories[id]; ok {
			clone := *category
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeActivityRepo struct {
	entries   []*entities.ActivityLog
	createErr error
}

func (r *fakeActivityRepo) Create(_ context.Context, entry *entities.ActivityLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	entry.ID = len(r.entries) + 1
	entry.Timestamp = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeActivityRepo) ListRecent(_ context.Context, userID uuid.UUID, since time.Time, limit int) ([]*entities.ActivityLog, error) {
	var out []*entities.ActivityLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		entry := r.entries[i]
		if entry.UserID == userID && !entry.Timestamp.Before(since) {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	notifications []*entities.Notification
	createErr     error
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entities.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = len(r.notifications) + 1
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) ListForUser(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error) {
	var out []*entities.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) forUser(userID uuid.UUID) []*entities.Notification {
	var out []*entities.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeConversationRepo struct {
	nextID        int
	conversations map[int]*entities.Conversation
	messages      map[int][]*entities.PrivateMessage
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[int]*entities.Conversation),
		messages:      make(map[int][]*entities.PrivateMessage),
	}
}

func (r *fakeConversationRepo) Create(_ context.Context, participants []uuid.UUID) (*entities.Conversation, error) {
	r.nextID++
	conv := &entities.Conversation{
		ID:           r.nextID,
		CreatedAt:    time.Now(),
		Participants: participants,
	}
	r.conversations[conv.ID] = conv
	return conv, nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id int) (*entities.Conversation, error) {
	conv, ok := r.conversations[id]
	if !ok {
		return nil, entities.ErrConversationNotFound
	}
	return conv, nil
}

func (r *fakeConversationRepo) FindBetween(_ context.Context, a, b uuid.UUID) (*entities.Conversation, error) {
	for _, conv := range r.conversations {
		if len(conv.Participants) == 2 && conv.HasParticipant(a) && conv.HasParticipant(b) {
			return conv, nil
		}
	}
	return nil, entities.ErrConversationNotFound
}

func (r *fakeConversationRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]*entities.Conversation, error) {
	var out []*entities.Conversation
	for _, conv := range r.conversations {
		if conv.HasParticipant(userID) {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.conversations[id]; !ok {
		return entities.ErrConversationNotFound
	}
	delete(r.conversations, id)
	delete(r.messages, id)
	return nil
}

func (r *fakeConversationRepo) CreateMessage(_ context.Context, msg *entities.PrivateMessage) error {
	msg.ID = len(r.messages[msg.ConversationID]) + 1
	msg.CreatedAt = time.Now()
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], msg)
	return nil
}

func (r *fakeConversationRepo) ListMessages(_ context.Context, conversationID int) ([]*entities.PrivateMessage, error) {
	return r.messages[conversationID], nil
}

func (r *fakeConversationRepo) MarkMessagesRead(_ context.Context, conversationID int, readerID uuid.UUID) error {
	for _, msg := range r.messages[conversationID] {
		if msg.SenderID != readerID {
			msg.Read = true
		}
	}
	return nil
}

type fakeChatRepo struct {
	messages []*entities.ChatMessage
}

func (r *fakeChatRepo) Create(_ context.Context, msg *entities.ChatMessage) error {
	msg.ID = len(r.messages) + 1
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeChatRepo) ListByRoom(_ context.Context, roomName string, limit int) ([]*entities.ChatMessage, error) {
	var out []*entities.ChatMessage
	for _, msg := range r.messages {
		if msg.RoomName == roomName {
			out = append(out, msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
