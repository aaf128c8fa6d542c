package ws

import (
	"testing"
)

// testClient builds a client joined to nothing, with a queue the tests can
// drain directly. The pumps never run here, so a nil conn is fine.
func testClient(hub *Hub, room string, buffer int) *Client {
	return newClient(hub, room, nil, buffer)
}

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, string(payload))
		default:
			return out
		}
	}
}

func TestBroadcastReachesAllRoomMembers(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "room", 4)
	b := testClient(hub, "room", 4)

	hub.Join("room", a)
	hub.Join("room", b)

	hub.Broadcast("room", []byte("hello"))

	for name, c := range map[string]*Client{"a": a, "b": b} {
		got := drain(c)
		if len(got) != 1 || got[0] != "hello" {
			t.Errorf("client %s received %v, want [hello]", name, got)
		}
	}
}

func TestBroadcastIsRoomScoped(t *testing.T) {
	hub := NewHub()
	inRoom := testClient(hub, "private_chat_1", 4)
	elsewhere := testClient(hub, "private_chat_2", 4)

	hub.Join("private_chat_1", inRoom)
	hub.Join("private_chat_2", elsewhere)

	hub.Broadcast("private_chat_1", []byte("secret"))

	if got := drain(inRoom); len(got) != 1 {
		t.Errorf("room member received %v, want one message", got)
	}
	if got := drain(elsewhere); len(got) != 0 {
		t.Errorf("other room received %v, want nothing", got)
	}
}

func TestBroadcastPreservesOrder(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, "room", 8)
	hub.Join("room", c)

	want := []string{"first", "second", "third"}
	for _, msg := range want {
		hub.Broadcast("room", []byte(msg))
	}

	got := drain(c)
	if len(got) != len(want) {
		t.Fatalf("received %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("received %v, want %v", got, want)
			break
		}
	}
}

func TestLateJoinerMissesEarlierBroadcasts(t *testing.T) {
	hub := NewHub()
	early := testClient(hub, "room", 4)
	hub.Join("room", early)

	hub.Broadcast("room", []byte("before"))

	late := testClient(hub, "room", 4)
	hub.Join("room", late)

	hub.Broadcast("room", []byte("after"))

	if got := drain(early); len(got) != 2 {
		t.Errorf("early client received %v, want both messages", got)
	}
	if got := drain(late); len(got) != 1 || got[0] != "after" {
		t.Errorf("late client received %v, want [after]", got)
	}
}

func TestLeaveRemovesClientAndEmptyRoom(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "room", 4)
	b := testClient(hub, "room", 4)

	hub.Join("room", a)
	hub.Join("room", b)
	hub.Leave("room", a)

	if n := hub.RoomSize("room"); n != 1 {
		t.Errorf("room size = %d, want 1", n)
	}

	hub.Broadcast("room", []byte("still here"))
	if got := drain(b); len(got) != 1 {
		t.Errorf("remaining client received %v, want one message", got)
	}

	hub.Leave("room", b)
	if n := hub.RoomSize("room"); n != 0 {
		t.Errorf("room size = %d, want 0 after last leave", n)
	}
	if _, ok := hub.rooms["room"]; ok {
		t.Error("empty room not deleted")
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, "room", 4)

	hub.Join("room", c)
	hub.Leave("room", c)
	// A second leave, or a leave for a room never joined, must not panic.
	hub.Leave("room", c)
	hub.Leave("other", c)
}

func TestSlowMemberIsEvicted(t *testing.T) {
	hub := NewHub()
	slow := testClient(hub, "room", 1)
	fast := testClient(hub, "room", 8)

	hub.Join("room", slow)
	hub.Join("room", fast)

	// The second broadcast overflows the slow member's queue of one.
	hub.Broadcast("room", []byte("one"))
	hub.Broadcast("room", []byte("two"))

	if n := hub.RoomSize("room"); n != 1 {
		t.Errorf("room size = %d, want the fast member only", n)
	}

	got := drain(fast)
	if len(got) != 2 {
		t.Errorf("fast client received %v, want both messages", got)
	}

	// The slow member's queue was closed after its buffered message.
	if _, ok := <-slow.send; !ok {
		t.Fatal("slow client lost its buffered message")
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client's queue was not closed")
	}
}

func TestPrivateRoomName(t *testing.T) {
	if got := PrivateRoomName(42); got != "private_chat_42" {
		t.Errorf("PrivateRoomName(42) = %q", got)
	}
}
