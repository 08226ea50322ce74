package tx

import (
	"errors"
	"fmt"

	"github.com/birchkv/birch/rpc/common"
)

// Handle identifies one open transaction at the executor. Handles are opaque
// to the coordinator; it only threads them through.
type Handle uint64

// IExecutor is the execution capability the coordinator consumes. The wire
// client provides the production implementation; tests substitute fakes.
type IExecutor interface {
	// BeginTransaction opens a new transaction and returns its handle.
	BeginTransaction() (Handle, error)

	// Enqueue appends one command to the transaction's batch. Commands are
	// applied in enqueue order on commit.
	Enqueue(handle Handle, req *common.Message) error

	// Commit atomically applies the batch and returns one positional reply
	// per enqueued command. On refusal it returns ErrTransactionAborted, on
	// a missed commit deadline ErrTimeout.
	Commit(handle Handle) ([]common.Message, error)
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrTransactionAborted signals that the server refused or rolled back
	// the transaction. No command of the batch was applied and no partial
	// results exist.
	ErrTransactionAborted = errors.New("transaction aborted")

	// ErrTimeout signals that no commit acknowledgment arrived within the
	// deadline. The batch may or may not have been applied; the coordinator
	// never retries on its own.
	ErrTimeout = errors.New("transaction timed out")
)

// DecodeError reports a commit reply that cannot be decoded against the
// batch's declared result kinds: wrong reply count, mismatched reply type or
// a per-command error from the server.
type DecodeError struct {
	Position int
	Reason   string
}

func (e *DecodeError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("decode commit reply: %s", e.Reason)
	}
	return fmt.Sprintf("decode commit reply at position %d: %s", e.Position, e.Reason)
}
