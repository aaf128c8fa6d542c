package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
)

type messagingFixture struct {
	svc              *MessagingService
	conversationRepo *fakeConversationRepo
	chatRepo         *fakeChatRepo
	userRepo         *fakeUserRepo
}

func newMessagingFixture(users ...*entities.User) *messagingFixture {
	f := &messagingFixture{
		conversationRepo: newFakeConversationRepo(),
		chatRepo:         &fakeChatRepo{},
		userRepo:         newFakeUserRepo(users...),
	}
	f.svc = NewMessagingService(f.conversationRepo, f.chatRepo, f.userRepo, logger.NewNop())
	return f
}

func TestStartConversationFindsOrCreates(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	bob := &entities.User{ID: uuid.New(), Username: "bob"}
	f := newMessagingFixture(alice, bob)

	ctx := context.Background()
	first, err := f.svc.StartConversation(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	if !first.HasParticipant(alice.ID) || !first.HasParticipant(bob.ID) {
		t.Errorf("participants = %v", first.Participants)
	}

	// Starting again, from either side, reuses the existing conversation.
	again, err := f.svc.StartConversation(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("second StartConversation: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("second call created conversation %d, want %d", again.ID, first.ID)
	}

	reverse, err := f.svc.StartConversation(ctx, bob.ID, "alice")
	if err != nil {
		t.Fatalf("reverse StartConversation: %v", err)
	}
	if reverse.ID != first.ID {
		t.Errorf("reverse call created conversation %d, want %d", reverse.ID, first.ID)
	}
}

func TestStartConversationRejectsSelfAndUnknownPeer(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	f := newMessagingFixture(alice)

	if _, err := f.svc.StartConversation(context.Background(), alice.ID, "alice"); err == nil {
		t.Error("self-conversation should be rejected")
	}
	if _, err := f.svc.StartConversation(context.Background(), alice.ID, "ghost"); !errors.Is(err, entities.ErrUserNotFound) {
		t.Errorf("unknown peer err = %v, want %v", err, entities.ErrUserNotFound)
	}
}

func TestSendMessageRequiresParticipation(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	bob := &entities.User{ID: uuid.New(), Username: "bob"}
	eve := &entities.User{ID: uuid.New(), Username: "eve"}
	f := newMessagingFixture(alice, bob, eve)

	ctx := context.Background()
	conv, err := f.conversationRepo.Create(ctx, []uuid.UUID{alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}

	msg, err := f.svc.SendMessage(ctx, alice.ID, conv.ID, "hi bob")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.SenderID != alice.ID || msg.SenderName != "alice" || msg.Content != "hi bob" {
		t.Errorf("message = %+v", msg)
	}

	if _, err := f.svc.SendMessage(ctx, eve.ID, conv.ID, "let me in"); !errors.Is(err, entities.ErrNotParticipant) {
		t.Errorf("outsider err = %v, want %v", err, entities.ErrNotParticipant)
	}
	if len(f.conversationRepo.messages[conv.ID]) != 1 {
		t.Errorf("conversation holds %d messages, want 1", len(f.conversationRepo.messages[conv.ID]))
	}

	if _, err := f.svc.SendMessage(ctx, alice.ID, 999, "hello?"); !errors.Is(err, entities.ErrConversationNotFound) {
		t.Errorf("missing conversation err = %v, want %v", err, entities.ErrConversationNotFound)
	}
}

func TestListMessagesMarksOtherSideRead(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	bob := &entities.User{ID: uuid.New(), Username: "bob"}
	f := newMessagingFixture(alice, bob)

	ctx := context.Background()
	conv, err := f.conversationRepo.Create(ctx, []uuid.UUID{alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}

	if _, err := f.svc.SendMessage(ctx, alice.ID, conv.ID, "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.svc.SendMessage(ctx, bob.ID, conv.ID, "two"); err != nil {
		t.Fatalf("send: %v", err)
	}

	messages, err := f.svc.ListMessages(ctx, alice.ID, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Content != "one" || messages[1].Content != "two" {
		t.Errorf("order = [%q %q], want oldest first", messages[0].Content, messages[1].Content)
	}

	// Reading as alice marks bob's message read, never her own.
	for _, msg := range f.conversationRepo.messages[conv.ID] {
		if msg.SenderID == bob.ID && !msg.Read {
			t.Error("peer message not marked read")
		}
		if msg.SenderID == alice.ID && msg.Read {
			t.Error("own message marked read")
		}
	}
}

func TestDeleteConversationRequiresParticipation(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	bob := &entities.User{ID: uuid.New(), Username: "bob"}
	eve := &entities.User{ID: uuid.New(), Username: "eve"}
	f := newMessagingFixture(alice, bob, eve)

	ctx := context.Background()
	conv, err := f.conversationRepo.Create(ctx, []uuid.UUID{alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}

	if err := f.svc.DeleteConversation(ctx, eve.ID, conv.ID); !errors.Is(err, entities.ErrNotParticipant) {
		t.Errorf("outsider err = %v, want %v", err, entities.ErrNotParticipant)
	}
	if err := f.svc.DeleteConversation(ctx, bob.ID, conv.ID); err != nil {
		t.Fatalf("participant delete: %v", err)
	}
	if _, err := f.conversationRepo.GetByID(ctx, conv.ID); !errors.Is(err, entities.ErrConversationNotFound) {
		t.Error("conversation still present after delete")
	}
}

func TestInboxListsOnlyOwnConversations(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	bob := &entities.User{ID: uuid.New(), Username: "bob"}
	carol := &entities.User{ID: uuid.New(), Username: "carol"}
	f := newMessagingFixture(alice, bob, carol)

	ctx := context.Background()
	if _, err := f.conversationRepo.Create(ctx, []uuid.UUID{alice.ID, bob.ID}); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	if _, err := f.conversationRepo.Create(ctx, []uuid.UUID{bob.ID, carol.ID}); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}

	inbox, err := f.svc.Inbox(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("alice's inbox holds %d conversations, want 1", len(inbox))
	}

	inbox, err = f.svc.Inbox(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 2 {
		t.Errorf("bob's inbox holds %d conversations, want 2", len(inbox))
	}
}

func TestSaveChatMessageResolvesSender(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	f := newMessagingFixture(alice)

	ctx := context.Background()
	msg, err := f.svc.SaveChatMessage(ctx, "alice", "group_chat_gfg", "hello room")
	if err != nil {
		t.Fatalf("SaveChatMessage: %v", err)
	}
	if msg.SenderID != alice.ID || msg.RoomName != "group_chat_gfg" {
		t.Errorf("message = %+v", msg)
	}

	if _, err := f.svc.SaveChatMessage(ctx, "ghost", "group_chat_gfg", "boo"); !errors.Is(err, entities.ErrUserNotFound) {
		t.Errorf("unknown sender err = %v, want %v", err, entities.ErrUserNotFound)
	}
}

func TestChatHistoryHonorsLimit(t *testing.T) {
	alice := &entities.User{ID: uuid.New(), Username: "alice"}
	f := newMessagingFixture(alice)

	ctx := context.Background()
	for _, content := range []string{"a", "b", "c", "d"} {
		if _, err := f.svc.SaveChatMessage(ctx, "alice", "room", content); err != nil {
			t.Fatalf("save %q: %v", content, err)
		}
	}

	history, err := f.svc.ChatHistory(ctx, "room", 2)
	if err != nil {
		t.Fatalf("ChatHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	// The newest messages win, returned oldest first.
	if history[0].Content != "c" || history[1].Content != "d" {
		t.Errorf("history = [%q %q], want [c d]", history[0].Content, history[1].Content)
	}
}
