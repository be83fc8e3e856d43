package flicker

import "testing"

// TestQueueFIFO mirrors spec.md §8's "Queue FIFO" invariant.
func TestQueueFIFO(t *testing.T) {
	q := NewMessageQueue(10)
	for i := 0; i < 5; i++ {
		q.Enqueue(RootComponentID, i)
	}
	got := q.Drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(got))
	}
	for i, rm := range got {
		if rm.Msg != i {
			t.Fatalf("message %d: got %v want %v", i, rm.Msg, i)
		}
	}
}

func TestQueueOverflowDropsAndCounts(t *testing.T) {
	q := NewMessageQueue(2)
	q.Enqueue(RootComponentID, 1)
	q.Enqueue(RootComponentID, 2)
	q.Enqueue(RootComponentID, 3) // dropped

	if q.Overflowed() != 1 {
		t.Fatalf("expected 1 overflow, got %d", q.Overflowed())
	}
	got := q.Drain()
	if len(got) != 2 {
		t.Fatalf("expected 2 messages retained, got %d", len(got))
	}
}

func TestQueueDrainEmptiesQueue(t *testing.T) {
	q := NewMessageQueue(4)
	q.Enqueue(RootComponentID, "x")
	q.Drain()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after drain, got len %d", q.Len())
	}
}
