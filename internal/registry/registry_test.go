package registry

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/boardswarmd/internal/properties"
)

func TestAdd_MonotonicIDs(t *testing.T) {
	r := New[string]()

	id1 := r.Add(properties.New("a"), "A")
	id2 := r.Add(properties.New("b"), "B")

	if id2 <= id1 {
		t.Fatalf("expected strictly increasing ids, got %d then %d", id1, id2)
	}
	if id1 == 0 {
		t.Fatal("ids must be >= 1")
	}
}

func TestAddRemoveAdd_YieldsDistinctIDs(t *testing.T) {
	r := New[string]()
	props := properties.New("a")

	id1 := r.Add(props, "A")
	r.Remove(id1)
	id2 := r.Add(props, "A")

	if id1 == id2 {
		t.Fatalf("expected distinct ids after remove+re-add, got %d twice", id1)
	}
}

func TestRemove_AbsentIDIsNoop(t *testing.T) {
	r := New[string]()
	r.Remove(999) // must not panic or error
}

func TestLookup(t *testing.T) {
	r := New[string]()
	id := r.Add(properties.New("a"), "A")

	e, ok := r.Lookup(id)
	if !ok || e.Item != "A" {
		t.Fatalf("Lookup(%d) = %v, %v, want A, true", id, e, ok)
	}

	if _, ok := r.Lookup(id + 1); ok {
		t.Fatal("Lookup of unknown id should fail")
	}
}

func TestFindByName(t *testing.T) {
	r := New[string]()
	r.Add(properties.New("first"), "F")
	r.Add(properties.New("second"), "S")

	e, ok := r.FindByName("second")
	if !ok || e.Item != "S" {
		t.Fatalf("FindByName(second) = %v, %v", e, ok)
	}

	if _, ok := r.FindByName("missing"); ok {
		t.Fatal("FindByName(missing) should fail")
	}
}

func TestFind_MatchesSubset(t *testing.T) {
	r := New[string]()
	r.Add(properties.New("c1", "usb_id", "1234"), "C1")

	e, ok := r.Find(map[string]string{"usb_id": "1234"})
	if !ok || e.Item != "C1" {
		t.Fatalf("Find(usb_id=1234) = %v, %v", e, ok)
	}

	if _, ok := r.Find(map[string]string{"usb_id": "9999"}); ok {
		t.Fatal("Find should not match a different value")
	}
}

func TestContents_Snapshot(t *testing.T) {
	r := New[string]()
	r.Add(properties.New("a"), "A")
	r.Add(properties.New("b"), "B")

	got := r.Contents()
	if len(got) != 2 {
		t.Fatalf("len(Contents()) = %d, want 2", len(got))
	}
}

func TestMonitor_ReceivesAddAndRemove(t *testing.T) {
	r := New[string]()
	sub := r.Monitor()
	defer sub.Close()

	id := r.Add(properties.New("a"), "A")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	change, err := sub.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if change.Kind != Added || change.ID != id {
		t.Fatalf("got %+v, want Added id=%d", change, id)
	}

	r.Remove(id)
	change, err = sub.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if change.Kind != Removed || change.ID != id {
		t.Fatalf("got %+v, want Removed id=%d", change, id)
	}
}

func TestMonitor_OpenedBeforeContentsMissesNothing(t *testing.T) {
	r := New[string]()
	r.Add(properties.New("existing"), "E")

	// Callers open the subscription and then read Contents: the
	// pre-existing entry comes from the snapshot, and the subscription
	// replays nothing from before it opened, only later changes.
	sub := r.Monitor()
	defer sub.Close()

	if got := r.Contents(); len(got) != 1 || got[0].Item != "E" {
		t.Fatalf("Contents() = %v, want only the pre-existing entry", got)
	}

	id := r.Add(properties.New("new"), "N")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	change, err := sub.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if change.Kind != Added || change.ID != id {
		t.Fatalf("got %+v, want Added id=%d (not the pre-existing entry)", change, id)
	}
}

func TestMonitor_SlowSubscriberReportsLag(t *testing.T) {
	r := New[string]()
	sub := r.Monitor()
	defer sub.Close()

	// Overflow the buffer without draining it.
	for i := 0; i < changeBufferSize+10; i++ {
		r.Add(properties.New("x"), "X")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var sawLag bool
	for i := 0; i < changeBufferSize+10; i++ {
		change, err := sub.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		if change.Kind == Lag {
			sawLag = true
			break
		}
	}
	if !sawLag {
		t.Fatal("expected a Lag event after overflowing the subscriber buffer")
	}
}

func TestRecv_ContextCancelled(t *testing.T) {
	r := New[string]()
	sub := r.Monitor()
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sub.Recv(ctx); err == nil {
		t.Fatal("expected error from Recv with a cancelled context")
	}
}
