package pubsub

import (
	"fmt"
	"testing"
	"time"
)

func TestPolicyDropOldestEvicts(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, &Options{BufferSize: 2, Policy: PolicyDropOldest})

	sub, _ := mux.Subscribe("busy")

	// Publish more than the buffer holds without draining.
	for i := 0; i < 5; i++ {
		conn.publish("busy", []byte(fmt.Sprintf("m%d", i)))
	}

	// The two newest messages survive, in order.
	if got := recvTimeout(t, sub); string(got) != "m3" {
		t.Errorf("first surviving message = %q, want %q", got, "m3")
	}
	if got := recvTimeout(t, sub); string(got) != "m4" {
		t.Errorf("second surviving message = %q, want %q", got, "m4")
	}
}

func TestPolicyBlockBlocksUntilDrained(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, &Options{BufferSize: 1, Policy: PolicyBlock})

	sub, _ := mux.Subscribe("busy")

	conn.publish("busy", []byte("first"))

	// The second publish must block until the consumer drains.
	delivered := make(chan struct{})
	go func() {
		conn.publish("busy", []byte("second"))
		close(delivered)
	}()

	select {
	case <-delivered:
		t.Fatal("publish returned while the consumer buffer was full")
	case <-time.After(50 * time.Millisecond):
	}

	if got := recvTimeout(t, sub); string(got) != "first" {
		t.Fatalf("first message = %q, want %q", got, "first")
	}

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("publish still blocked after the consumer drained")
	}

	if got := recvTimeout(t, sub); string(got) != "second" {
		t.Errorf("second message = %q, want %q", got, "second")
	}
}

func TestCloseUnblocksPendingDelivery(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, &Options{BufferSize: 1, Policy: PolicyBlock})

	sub, _ := mux.Subscribe("busy")

	conn.publish("busy", []byte("fill"))

	delivered := make(chan struct{})
	go func() {
		conn.publish("busy", []byte("stuck"))
		close(delivered)
	}()

	// Give the delivery a moment to block on the full buffer.
	time.Sleep(20 * time.Millisecond)

	// Closing the consumer must release the blocked delivery.
	if err := sub.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery still blocked after the consumer closed")
	}
}

func TestSlowConsumerDoesNotStarveOthersWithDropOldest(t *testing.T) {
	conn := newFakeConn()
	mux := NewMux(conn, &Options{BufferSize: 1, Policy: PolicyDropOldest})

	slow, _ := mux.Subscribe("mixed")
	fast, _ := mux.Subscribe("mixed")

	for i := 0; i < 3; i++ {
		conn.publish("mixed", []byte(fmt.Sprintf("m%d", i)))
		// The fast consumer drains every message despite the slow one never
		// reading.
		if got := recvTimeout(t, fast); string(got) != fmt.Sprintf("m%d", i) {
			t.Fatalf("fast consumer message %d = %q", i, got)
		}
	}

	// The slow consumer is left with only the newest message.
	if got := recvTimeout(t, slow); string(got) != "m2" {
		t.Errorf("slow consumer message = %q, want %q", got, "m2")
	}
}
