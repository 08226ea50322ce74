package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key      string `json:"key,omitempty"`      // Used for: Set, Get, Has, Expire, Delete; carries the channel name for pub/sub messages
	ExpireIn uint64 `json:"expireIn,omitempty"` // Used for: Set operations
	DeleteIn uint64 `json:"deleteIn,omitempty"` // Used for: Set operations
	Value    []byte `json:"value,omitempty"`    // Used for: Set (request), Get (response), Publish payload

	// Transaction fields
	Batch []Message `json:"batch,omitempty"` // Used for: Commit request (queued commands) and Commit response (positional replies)

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Used for: Get, Has responses
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// --------------------------------------------------------------------------
// Message Factory Functions (key-value commands)
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTKVSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVSet,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSetERequest creates a new SetE request
func NewSetERequest(key string, value []byte, expireIn, deleteIn uint64) *Message {
	return &Message{
		MsgType:  MsgTKVSetE,
		Key:      key,
		Value:    value,
		ExpireIn: expireIn,
		DeleteIn: deleteIn,
	}
}

// NewSetEResponse creates a new SetE response
func NewSetEResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVSetE,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSetEIfUnsetRequest creates a new SetEIfUnset request
func NewSetEIfUnsetRequest(key string, value []byte, expireIn, deleteIn uint64) *Message {
	return &Message{
		MsgType:  MsgTKVSetEIfUnset,
		Key:      key,
		Value:    value,
		ExpireIn: expireIn,
		DeleteIn: deleteIn,
	}
}

// NewSetEIfUnsetResponse creates a new SetEIfUnset response
func NewSetEIfUnsetResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVSetEIfUnset,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewExpireRequest creates a new Expire request
func NewExpireRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVExpire,
		Key:     key,
	}
}

// NewExpireResponse creates a new Expire response
func NewExpireResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVExpire,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVDelete,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVGet,
		Ok:      ok,
		Value:   value,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewHasRequest creates a new Has request
func NewHasRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVHas,
		Key:     key,
	}
}

// NewHasResponse creates a new Has response
func NewHasResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVHas,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// --------------------------------------------------------------------------
// Message Factory Functions (transactions)
// --------------------------------------------------------------------------

// NewCommitRequest creates a commit request carrying all queued commands of
// one transaction in submission order
func NewCommitRequest(batch []Message) *Message {
	return &Message{
		MsgType: MsgTTxCommit,
		Batch:   batch,
	}
}

// NewCommitResponse creates a commit response carrying one positional reply
// per queued command
func NewCommitResponse(replies []Message) *Message {
	return &Message{
		MsgType: MsgTTxCommit,
		Batch:   replies,
	}
}

// NewAbortedResponse creates a response signalling that the server refused or
// rolled back the transaction
func NewAbortedResponse(reason string) *Message {
	return &Message{
		MsgType: MsgTTxAborted,
		Err:     reason,
	}
}

// --------------------------------------------------------------------------
// Message Factory Functions (pub/sub)
// --------------------------------------------------------------------------

// NewSubscribeRequest creates a subscribe request for a channel
func NewSubscribeRequest(channel string) *Message {
	return &Message{
		MsgType: MsgTSubscribe,
		Key:     channel,
	}
}

// NewSubscribeResponse creates a subscribe response
func NewSubscribeResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTSubscribe,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewUnsubscribeRequest creates an unsubscribe request for a channel
func NewUnsubscribeRequest(channel string) *Message {
	return &Message{
		MsgType: MsgTUnsubscribe,
		Key:     channel,
	}
}

// NewUnsubscribeResponse creates an unsubscribe response
func NewUnsubscribeResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTUnsubscribe,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPublishRequest creates a publish request. The same message form is used
// as the server push delivering a published payload to a subscriber.
func NewPublishRequest(channel string, payload []byte) *Message {
	return &Message{
		MsgType: MsgTPublish,
		Key:     channel,
		Value:   payload,
	}
}

// NewPublishResponse creates a publish acknowledgment
func NewPublishResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTPublish,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTKVSet:
		return "set"
	case MsgTKVSetE:
		return "setE"
	case MsgTKVSetEIfUnset:
		return "setEIfUnset"
	case MsgTKVExpire:
		return "expire"
	case MsgTKVDelete:
		return "delete"
	case MsgTKVGet:
		return "get"
	case MsgTKVHas:
		return "has"
	case MsgTTxCommit:
		return "txCommit"
	case MsgTTxAborted:
		return "txAborted"
	case MsgTSubscribe:
		return "subscribe"
	case MsgTUnsubscribe:
		return "unsubscribe"
	case MsgTPublish:
		return "publish"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "set":
		*t = MsgTKVSet
	case "setE":
		*t = MsgTKVSetE
	case "setEIfUnset":
		*t = MsgTKVSetEIfUnset
	case "expire":
		*t = MsgTKVExpire
	case "delete":
		*t = MsgTKVDelete
	case "get":
		*t = MsgTKVGet
	case "has":
		*t = MsgTKVHas
	case "txCommit":
		*t = MsgTTxCommit
	case "txAborted":
		*t = MsgTTxAborted
	case "subscribe":
		*t = MsgTSubscribe
	case "unsubscribe":
		*t = MsgTUnsubscribe
	case "publish":
		*t = MsgTPublish
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Key-value operations

	MsgTKVSet         // Set a key-value pair
	MsgTKVSetE        // Set a key-value pair with expiration
	MsgTKVSetEIfUnset // Set a key-value pair if not already set
	MsgTKVExpire      // Expire a key
	MsgTKVDelete      // Delete a key-value pair
	MsgTKVGet         // Get a value by key
	MsgTKVHas         // Check if a key exists

	// Transaction operations

	MsgTTxCommit  // Commit a queued command batch atomically
	MsgTTxAborted // Transaction refused or rolled back by the server

	// Pub/sub operations

	MsgTSubscribe   // Subscribe to a channel
	MsgTUnsubscribe // Unsubscribe from a channel
	MsgTPublish     // Publish a payload to a channel (request and server push)
)
