// Package serializer provides implementations for serializing and
// deserializing RPC messages in different formats.
//
// Three serializers are available:
//
//   - JSON: human readable, useful for debugging and interoperability
//   - GOB: Go's native binary encoding
//   - Binary: a custom binary format optimized for speed and payload size
//
// All serializers handle the full Message structure, including the nested
// command batch used by transaction commit messages. The binary format
// encodes the batch as a count followed by length prefixed, recursively
// encoded items.
//
// The serializer is chosen once per client and must match the server's
// expectation; the wire framing is transport concern and lives in the
// transport package.
package serializer
