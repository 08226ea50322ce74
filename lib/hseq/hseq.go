package hseq

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Result Kinds
// --------------------------------------------------------------------------

// Kind describes the statically declared result type of one batch position.
type Kind uint8

const (
	// KindVoid marks an acknowledgment-only result carrying no information.
	// Void positions are removed by projection.
	KindVoid Kind = iota
	// KindBytes marks an optional byte-slice result (value plus found flag).
	KindBytes
	// KindBool marks a boolean result.
	KindBool
	// KindInt marks a signed integer result.
	KindInt
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBytes:
		return "bytes"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Tagged Value
// --------------------------------------------------------------------------

// Value is a tagged variant holding exactly one result of a known Kind.
// Values are immutable once constructed; the kind-specific constructors are
// the only way to create them, so a Value can never disagree with its Kind.
type Value struct {
	kind  Kind
	bytes []byte
	ok    bool
	i     int64
}

// Void creates a value for an acknowledgment-only result.
func Void() Value {
	return Value{kind: KindVoid}
}

// Bytes creates an optional byte-slice value. The found flag distinguishes
// "present but empty" from "absent".
func Bytes(b []byte, found bool) Value {
	return Value{kind: KindBytes, bytes: b, ok: found}
}

// Bool creates a boolean value.
func Bool(v bool) Value {
	return Value{kind: KindBool, ok: v}
}

// Int creates an integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Bytes returns the byte-slice payload and whether a value was found.
// It must only be called on KindBytes values.
func (v Value) Bytes() ([]byte, bool) {
	return v.bytes, v.ok
}

// Bool returns the boolean payload. It must only be called on KindBool values.
func (v Value) Bool() bool {
	return v.ok
}

// Int returns the integer payload. It must only be called on KindInt values.
func (v Value) Int() int64 {
	return v.i
}

// String returns a human-readable representation of the value.
func (v Value) String() string {
	switch v.kind {
	case KindVoid:
		return "void"
	case KindBytes:
		if !v.ok {
			return "none"
		}
		return fmt.Sprintf("some(%s)", v.bytes)
	case KindBool:
		return fmt.Sprintf("%t", v.ok)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Shape
// --------------------------------------------------------------------------

// Shape is the ordered sequence of result kinds of a batch. It fully
// determines the shape of the projected (void-filtered) result - the
// projection depends only on the kinds, never on runtime values.
type Shape []Kind

// Signature returns a compact string identifying the shape. Two shapes have
// the same signature iff they have the same kinds in the same order.
func (s Shape) Signature() string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, k := range s {
		switch k {
		case KindVoid:
			sb.WriteByte('v')
		case KindBytes:
			sb.WriteByte('b')
		case KindBool:
			sb.WriteByte('o')
		case KindInt:
			sb.WriteByte('i')
		default:
			sb.WriteByte('?')
		}
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Heterogeneous Sequence
// --------------------------------------------------------------------------

// Seq is an ordered, fixed-length sequence of Values validated against a
// Shape at construction. It represents both the raw (pre-projection) and the
// filtered (post-projection) reply of a batch.
type Seq struct {
	shape  Shape
	values []Value
}

// NewSeq creates a sequence from a shape and its positional values. It fails
// if the lengths differ or any value's kind disagrees with the shape. This is
// where the per-position type discipline is enforced.
func NewSeq(shape Shape, values []Value) (Seq, error) {
	if len(shape) != len(values) {
		return Seq{}, fmt.Errorf("hseq: shape has %d positions but %d values given", len(shape), len(values))
	}
	for i, v := range values {
		if v.kind != shape[i] {
			return Seq{}, fmt.Errorf("hseq: position %d declared %s but value is %s", i, shape[i], v.kind)
		}
	}
	return Seq{shape: shape, values: values}, nil
}

// Len returns the number of positions in the sequence.
func (s Seq) Len() int {
	return len(s.values)
}

// At returns the value at position i.
func (s Seq) At(i int) Value {
	return s.values[i]
}

// Shape returns the shape of the sequence.
func (s Seq) Shape() Shape {
	return s.shape
}

// Values returns the positional values of the sequence.
func (s Seq) Values() []Value {
	return s.values
}

// String returns a human-readable representation of the sequence.
func (s Seq) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
