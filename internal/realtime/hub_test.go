package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeConn records frames and can be told to fail sends.
type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (c *fakeConn) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection closed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) received() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func TestPublishReachesEveryGroupMember(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	members := []*fakeConn{{}, {}, {}}
	for _, c := range members {
		hub.Subscribe(Subject("u1"), c)
	}
	bystander := &fakeConn{}
	hub.Subscribe(Subject("u2"), bystander)

	hub.Publish(Subject("u1"), OK(EventNewTripAvailable, "New Trip Available", nil))

	for i, c := range members {
		if got := c.received(); len(got) != 1 || got[0].Event != EventNewTripAvailable {
			t.Errorf("member %d got %v", i, got)
		}
	}
	if got := bystander.received(); len(got) != 0 {
		t.Errorf("other subject got %v", got)
	}
}

func TestPublishToEmptySubjectIsNoop(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	hub.Publish(Subject("nobody"), OK(EventTripRemoved, "gone", nil))
}

func TestFailedSendDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	dead := &fakeConn{fail: true}
	live := &fakeConn{}
	hub.Subscribe(Subject("u1"), dead)
	hub.Subscribe(Subject("u1"), live)

	hub.Publish(Subject("u1"), OK(EventLocationUpdate, "update", nil))

	if got := live.received(); len(got) != 1 {
		t.Fatalf("live conn got %d frames, want 1", len(got))
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	c := &fakeConn{}
	hub.Subscribe(Subject("u1"), c)
	hub.Unsubscribe(Subject("u1"), c)
	hub.Unsubscribe(Subject("u1"), c)
	hub.Unsubscribe(Subject("never-joined"), c)

	if n := hub.Count(Subject("u1")); n != 0 {
		t.Fatalf("count = %d after unsubscribe", n)
	}

	hub.Publish(Subject("u1"), OK(EventTripRemoved, "gone", nil))
	if got := c.received(); len(got) != 0 {
		t.Fatalf("unsubscribed conn got %v", got)
	}
}

func TestUnsubscribeRemovesOnlyTheLeaver(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	stay := &fakeConn{}
	leave := &fakeConn{}
	hub.Subscribe(Subject("u1"), stay)
	hub.Subscribe(Subject("u1"), leave)
	hub.Unsubscribe(Subject("u1"), leave)

	hub.Publish(Subject("u1"), OK(EventLocationUpdate, "update", nil))

	if got := stay.received(); len(got) != 1 {
		t.Fatalf("staying conn got %d frames, want 1", len(got))
	}
	if got := leave.received(); len(got) != 0 {
		t.Fatalf("left conn got %v", got)
	}
}

func TestPerPublisherOrderPreserved(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	c := &fakeConn{}
	hub.Subscribe(Subject("u1"), c)

	const n = 100
	for i := 0; i < n; i++ {
		hub.Publish(Subject("u1"), OK(EventLocationUpdate, fmt.Sprintf("%d", i), nil))
	}

	got := c.received()
	if len(got) != n {
		t.Fatalf("received %d frames, want %d", len(got), n)
	}
	for i, f := range got {
		if f.Message != fmt.Sprintf("%d", i) {
			t.Fatalf("frame %d out of order: %q", i, f.Message)
		}
	}
}

func TestConcurrentSubscribePublish(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			subject := Subject(fmt.Sprintf("u%d", n%4))
			c := &fakeConn{}
			hub.Subscribe(subject, c)
			hub.Publish(subject, OK(EventLocationUpdate, "update", nil))
			hub.Unsubscribe(subject, c)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		if n := hub.Count(Subject(fmt.Sprintf("u%d", i))); n != 0 {
			t.Errorf("subject u%d still has %d conns", i, n)
		}
	}
}

func TestSubjectNamespace(t *testing.T) {
	t.Parallel()
	if Subject("abc") != "driver_abc" {
		t.Fatalf("Subject(abc) = %q", Subject("abc"))
	}
}
