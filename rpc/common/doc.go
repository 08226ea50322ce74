// Package common contains the shared protocol definitions and configuration
// types used by the RPC client, serializers and transports.
//
// The central type is Message: a single struct used for every request and
// response on the wire, discriminated by MsgType. Factory functions construct
// well-formed messages for each operation, including the transaction commit
// message (which nests the queued command batch) and the pub/sub messages
// (where the channel name rides the Key field and the payload the Value
// field).
//
// The package also provides the client configuration structs and the custom
// logger factory used across the module.
package common
