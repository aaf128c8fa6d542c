package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func intervalPtr(i RecurringInterval) *RecurringInterval {
	return &i
}

func TestTaskVisibleTo(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()

	task := &Task{UserID: owner, AssignedTo: &assignee}

	if !task.VisibleTo(owner) {
		t.Error("owner should see the task")
	}
	if !task.VisibleTo(assignee) {
		t.Error("assignee should see the task")
	}
	if task.VisibleTo(stranger) {
		t.Error("stranger should not see the task")
	}

	unassigned := &Task{UserID: owner}
	if unassigned.VisibleTo(assignee) {
		t.Error("former assignee should not see an unassigned task")
	}
}

func TestTaskOverdueAndScheduled(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name          string
		task          Task
		wantOverdue   bool
		wantScheduled bool
	}{
		{"open past due", Task{DueDate: &past}, true, false},
		{"open future due", Task{DueDate: &future}, false, true},
		{"open due exactly now", Task{DueDate: &now}, false, true},
		{"completed past due", Task{DueDate: &past, Completed: true}, false, false},
		{"no due date", Task{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.wantOverdue {
				t.Errorf("IsOverdue = %t, want %t", got, tt.wantOverdue)
			}
			if got := tt.task.IsScheduled(now); got != tt.wantScheduled {
				t.Errorf("IsScheduled = %t, want %t", got, tt.wantScheduled)
			}
		})
	}
}

func TestTaskNextDueDate(t *testing.T) {
	due := time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		interval RecurringInterval
		want     time.Time
	}{
		{IntervalMinute, due.Add(time.Minute)},
		{IntervalDaily, time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)},
		{IntervalWeekly, time.Date(2024, time.February, 7, 8, 0, 0, 0, time.UTC)},
		// 30 days flat, not one calendar month.
		{IntervalMonthly, time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			task := &Task{DueDate: &due, RecurringInterval: intervalPtr(tt.interval)}
			got, err := task.NextDueDate()
			if err != nil {
				t.Fatalf("NextDueDate: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskNextDueDateErrors(t *testing.T) {
	due := time.Now()

	tests := []struct {
		name string
		task Task
	}{
		{"no due date", Task{RecurringInterval: intervalPtr(IntervalDaily)}},
		{"no interval", Task{DueDate: &due}},
		{"unknown interval", Task{DueDate: &due, RecurringInterval: intervalPtr("yearly")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.task.NextDueDate(); !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("err = %v, want %v", err, ErrInvalidInterval)
			}
		})
	}
}

func TestTaskInRecurrenceWindow(t *testing.T) {
	start := datePtr(2024, time.January, 1)
	end := datePtr(2024, time.January, 31)

	tests := []struct {
		name string
		task Task
		due  time.Time
		want bool
	}{
		{"inside window", Task{RecurringStartDate: start, RecurringEndDate: end}, *datePtr(2024, time.January, 15), true},
		{"on start", Task{RecurringStartDate: start, RecurringEndDate: end}, *start, true},
		{"on end", Task{RecurringStartDate: start, RecurringEndDate: end}, *end, true},
		{"before start", Task{RecurringStartDate: start, RecurringEndDate: end}, *datePtr(2023, time.December, 31), false},
		{"after end", Task{RecurringStartDate: start, RecurringEndDate: end}, *datePtr(2024, time.February, 1), false},
		{"open left bound", Task{RecurringEndDate: end}, *datePtr(2020, time.June, 1), true},
		{"no end date", Task{RecurringStartDate: start}, *datePtr(2024, time.January, 15), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.InRecurrenceWindow(tt.due); got != tt.want {
				t.Errorf("InRecurrenceWindow(%v) = %t, want %t", tt.due, got, tt.want)
			}
		})
	}
}

func TestTaskIsClone(t *testing.T) {
	parent := 3
	if !(&Task{ParentTaskID: &parent}).IsClone() {
		t.Error("task with a parent should be a clone")
	}
	if (&Task{}).IsClone() {
		t.Error("task without a parent should not be a clone")
	}
}

func TestConversationHasParticipant(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	conv := &Conversation{Participants: []uuid.UUID{a, b}}
	if !conv.HasParticipant(a) || !conv.HasParticipant(b) {
		t.Error("participants not recognized")
	}
	if conv.HasParticipant(c) {
		t.Error("outsider recognized as participant")
	}
}

func TestEnumValidation(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.IsValid() {
			t.Errorf("priority %q should be valid", p)
		}
	}
	if Priority("critical").IsValid() {
		t.Error("unknown priority accepted")
	}

	for _, i := range []RecurringInterval{IntervalMinute, IntervalDaily, IntervalWeekly, IntervalMonthly} {
		if !i.IsValid() {
			t.Errorf("interval %q should be valid", i)
		}
	}
	if RecurringInterval("yearly").IsValid() {
		t.Error("unknown interval accepted")
	}

	for _, a := range []ActivityAction{
		ActionTaskAdd, ActionTaskUpdate, ActionTaskComplete, ActionTaskDelete,
		ActionCategoryAdd, ActionCategoryUpdate, ActionCategoryDelete,
	} {
		if !a.IsValid() {
			t.Errorf("action %q should be valid", a)
		}
	}
	if ActivityAction("task_archive").IsValid() {
		t.Error("unknown action accepted")
	}
}
