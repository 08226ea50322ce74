package base

import (
	"bytes"
	"net"
	"testing"
)

// frameResult carries one side of a framing round-trip across goroutines.
type frameResult struct {
	requestID uint64
	data      []byte
	err       error
}

func roundTrip(t *testing.T, requestID uint64, payload []byte, buf []byte) (uint64, []byte) {
	t.Helper()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	results := make(chan frameResult, 1)
	go func() {
		id, data, err := readFrame(server, buf)
		// readFrame may return a slice into the shared buffer, copy it
		// before handing it to another goroutine
		results <- frameResult{requestID: id, data: bytes.Clone(data), err: err}
	}()

	if err := writeFrame(client, requestID, payload); err != nil {
		t.Fatalf("writeFrame failed: %v", err)
	}

	res := <-results
	if res.err != nil {
		t.Fatalf("readFrame failed: %v", res.err)
	}
	return res.requestID, res.data
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		requestID uint64
		payload   []byte
	}{
		{name: "simple payload", requestID: 1, payload: []byte("hello")},
		{name: "empty payload", requestID: 42, payload: nil},
		{name: "push frame id", requestID: pushRequestID, payload: []byte("channel update")},
		{name: "large request id", requestID: 1<<63 + 17, payload: []byte{0x00, 0xff, 0x7f}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, data := roundTrip(t, tc.requestID, tc.payload, make([]byte, 64))

			if id != tc.requestID {
				t.Errorf("requestID = %d, want %d", id, tc.requestID)
			}
			if !bytes.Equal(data, tc.payload) {
				t.Errorf("payload = %q, want %q", data, tc.payload)
			}
		})
	}
}

func TestReadFrameGrowsBuffer(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1024)

	// Buffer only fits the header, readFrame must allocate for the payload
	id, data := roundTrip(t, 7, payload, make([]byte, 12))

	if id != 7 {
		t.Errorf("requestID = %d, want 7", id)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("payload length = %d, want %d", len(data), len(payload))
	}
}

func TestReadFrameNilBuffer(t *testing.T) {
	id, data := roundTrip(t, 3, []byte("no buffer"), nil)

	if id != 3 {
		t.Errorf("requestID = %d, want 3", id)
	}
	if string(data) != "no buffer" {
		t.Errorf("payload = %q, want %q", data, "no buffer")
	}
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		client.Write([]byte{0x00, 0x01, 0x02}) // partial header
		client.Close()
	}()

	if _, _, err := readFrame(server, nil); err == nil {
		t.Error("expected error for truncated header, got nil")
	}
}
