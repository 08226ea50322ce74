package serializer

import (
	"encoding/binary"
	"github.com/birchkv/birch/rpc/common"
	"reflect"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Set request
		{
			MsgType: common.MsgTKVSet,
			Key:     "test-key",
			Value:   []byte("test-value"),
		},

		// Get response
		{
			MsgType: common.MsgTKVGet,
			Key:     "test-key",
			Value:   []byte("test-value"),
			Ok:      true,
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// Publish push
		{
			MsgType: common.MsgTPublish,
			Key:     "test-channel",
			Value:   []byte("payload"),
		},

		// Aborted transaction response
		{
			MsgType: common.MsgTTxAborted,
			Err:     "watched key changed",
		},

		// Commit request with a nested command batch
		{
			MsgType: common.MsgTTxCommit,
			Batch: []common.Message{
				{MsgType: common.MsgTKVSet, Key: "k1", Value: []byte("v1")},
				{MsgType: common.MsgTKVGet, Key: "k1"},
				{MsgType: common.MsgTKVDelete, Key: "k2"},
			},
		},

		// Commit response with positional replies
		{
			MsgType: common.MsgTTxCommit,
			Batch: []common.Message{
				{MsgType: common.MsgTKVSet},
				{MsgType: common.MsgTKVGet, Value: []byte("v1"), Ok: true},
				{MsgType: common.MsgTKVDelete},
			},
		},

		// Message with all scalar fields filled
		{
			MsgType:  common.MsgTKVSetE,
			Key:      "test-key",
			ExpireIn: 60,
			DeleteIn: 300,
			Value:    []byte("test-value"),
			Ok:       true,
			Err:      "",
			Meta:     []byte("test-meta-data"),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestBinaryTruncatedInput tests that the binary serializer rejects malformed data
func TestBinaryTruncatedInput(t *testing.T) {
	serializer := NewBinarySerializer()

	msg := common.Message{
		MsgType: common.MsgTTxCommit,
		Batch: []common.Message{
			{MsgType: common.MsgTKVSet, Key: "k", Value: []byte("v")},
		},
	}

	data, err := serializer.Serialize(msg)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	// Every strict prefix of a valid encoding must fail, not panic
	// (except the 2 byte header of a message with no fields set).
	for cut := 0; cut < len(data); cut++ {
		var result common.Message
		if err := serializer.Deserialize(data[:cut], &result); err == nil {
			t.Errorf("Deserialize accepted truncated input of %d/%d bytes", cut, len(data))
		}
	}
}

// TestNestedBatchDepth tests round-tripping a batch nested inside a batch
func TestNestedBatchDepth(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			msg := common.Message{
				MsgType: common.MsgTTxCommit,
				Batch: []common.Message{
					{
						MsgType: common.MsgTTxCommit,
						Batch: []common.Message{
							{MsgType: common.MsgTKVGet, Key: "inner"},
						},
					},
				},
			}

			data, err := serializer.Serialize(msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(msg, result) {
				t.Errorf("Nested batch doesn't match after round trip:\nOriginal: %+v\nResult: %+v", msg, result)
			}
		})
	}
}

// TestBinaryBatchCountBound tests that a frame claiming a huge nested batch
// count is rejected up front instead of allocating for it
func TestBinaryBatchCountBound(t *testing.T) {
	serializer := NewBinarySerializer()

	tests := []struct {
		name  string
		count uint32
	}{
		{name: "count one over remaining input", count: 1},
		{name: "count twenty million", count: 20_000_000},
		{name: "count max uint32", count: 0xFFFFFFFF},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// 2 byte header with only the batch flag set, then the count
			// and no item data at all
			data := make([]byte, 6)
			data[0] = byte(common.MsgTTxCommit)
			data[1] = hasBatch
			binary.BigEndian.PutUint32(data[2:6], tc.count)

			var result common.Message
			if err := serializer.Deserialize(data, &result); err == nil {
				t.Fatalf("Deserialize accepted batch count %d with no item data", tc.count)
			}
			if result.Batch != nil {
				t.Errorf("Batch was allocated (%d entries) despite the bogus count", len(result.Batch))
			}
		})
	}
}
