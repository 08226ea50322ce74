// Package hseq provides an ordered, fixed-length, per-position-typed value
// sequence and its void-filtering projection.
//
// A transaction batch produces one positional reply per command, and some
// commands (acknowledgment-only writes) carry no result. This package models
// the reply as a Seq: a sequence of tagged Values validated against a Shape
// (the ordered kind sequence) at construction time. Since Go has no
// compile-time heterogeneous lists, the per-position type discipline is
// enforced when a Seq is built rather than by the type system - kind-specific
// Value constructors plus shape validation in NewSeq.
//
// Projection removes every void position while preserving the relative order
// of the rest. The projected shape depends only on the input shape, never on
// runtime values; the non-void index set is memoized per distinct shape
// signature so repeated batches of the same form pay for the computation once.
//
// Key Components:
//
//   - Kind/Value: tagged variant results (void, optional bytes, bool, int)
//   - Shape: ordered kind sequence of a batch, with a memoized projection
//   - Seq: shape-validated value sequence with void-filtering Project()
//
// Thread Safety:
//
//	Values, Shapes and Seqs are immutable after construction and safe for
//	concurrent use. The projection memo cache is concurrency-safe.
package hseq
