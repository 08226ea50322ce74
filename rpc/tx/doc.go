// Package tx implements the client-side transaction engine: commands are
// collected into an ordered batch, committed atomically in one round trip
// and decoded into a positionally typed result sequence.
//
// Each command constructor fixes the result kind of its reply (Set, SetE,
// SetEIfUnset, Expire, Delete are acknowledgment-only; Get yields an optional
// byte slice; Has yields a bool), so a batch's result shape is known before
// anything hits the wire. Acknowledgment-only entries are removed from the
// returned sequence; the caller only sees the positions that carry data,
// in batch order.
//
// Key Components:
//
//   - Command / Batch: A wire request paired with its declared result kind,
//     and the ordered collection committed as one unit.
//
//   - IExecutor: The consumed execution capability (begin, enqueue, commit).
//     The rpc/client package provides the wire implementation.
//
//   - Coordinator: Drives a batch through an executor and decodes the
//     positional replies into an hseq.Seq.
//
// Error Semantics:
//
//   - ErrTransactionAborted: the server refused or rolled back the batch,
//     nothing was applied and no partial results exist.
//
//   - ErrTimeout: no commit acknowledgment arrived in time. The outcome is
//     unknown and the coordinator never retries, since a retry could apply
//     the batch twice.
//
//   - DecodeError: the commit reply does not match the batch's declared
//     shape, or an individual command failed server-side.
//
// Thread Safety: a Coordinator is stateless apart from its executor and is
// safe for concurrent use if the executor is.
package tx
