package tx

import (
	"github.com/birchkv/birch/lib/hseq"
	"github.com/birchkv/birch/rpc/common"
)

// Command couples a wire request with the result kind its reply decodes to.
// The kind is fixed by the constructor, so a batch's result shape is known
// before anything is sent.
type Command struct {
	req  *common.Message
	kind hseq.Kind
}

// Kind returns the declared result kind of the command.
func (c Command) Kind() hseq.Kind {
	return c.kind
}

// --------------------------------------------------------------------------
// Command Constructors
// --------------------------------------------------------------------------

// Set stores a key-value pair. Acknowledgment only.
func Set(key string, value []byte) Command {
	return Command{req: common.NewSetRequest(key, value), kind: hseq.KindVoid}
}

// SetE stores a key-value pair with expire/delete deadlines in seconds.
// Acknowledgment only.
func SetE(key string, value []byte, expireIn, deleteIn uint64) Command {
	return Command{req: common.NewSetERequest(key, value, expireIn, deleteIn), kind: hseq.KindVoid}
}

// SetEIfUnset stores a key-value pair with deadlines only if the key is not
// already set. Acknowledgment only.
func SetEIfUnset(key string, value []byte, expireIn, deleteIn uint64) Command {
	return Command{req: common.NewSetEIfUnsetRequest(key, value, expireIn, deleteIn), kind: hseq.KindVoid}
}

// Expire marks a key as expired. Acknowledgment only.
func Expire(key string) Command {
	return Command{req: common.NewExpireRequest(key), kind: hseq.KindVoid}
}

// Delete removes a key. Acknowledgment only.
func Delete(key string) Command {
	return Command{req: common.NewDeleteRequest(key), kind: hseq.KindVoid}
}

// Get reads a key's value. Decodes to an optional byte slice: absent and
// expired keys yield no value.
func Get(key string) Command {
	return Command{req: common.NewGetRequest(key), kind: hseq.KindBytes}
}

// Has checks whether a key is set. Decodes to a bool; an expired key still
// counts as set.
func Has(key string) Command {
	return Command{req: common.NewHasRequest(key), kind: hseq.KindBool}
}

// --------------------------------------------------------------------------
// Batch
// --------------------------------------------------------------------------

// Batch is an ordered sequence of commands applied atomically on commit.
type Batch []Command

// Shape derives the positional result shape of the batch.
func (b Batch) Shape() hseq.Shape {
	shape := make(hseq.Shape, len(b))
	for i, c := range b {
		shape[i] = c.kind
	}
	return shape
}
