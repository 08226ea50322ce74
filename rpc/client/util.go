package client

import (
	"fmt"

	"github.com/birchkv/birch/rpc/common"
	"github.com/birchkv/birch/rpc/serializer"
	"github.com/birchkv/birch/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter stores all data needed for an implementation of an RPC
// client. Used by the executor, the pub/sub connection and the single-command
// helpers via composition.
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// roundTrip serializes the request, sends it and deserializes the response
// without interpreting it. Callers that accept more than one response type
// (commit, which may come back aborted) use this directly.
func (a *rpcClientAdapter) roundTrip(req *common.Message) (*common.Message, error) {
	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := a.transport.Send(reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("rpc client - error: %s", err)
	}
	return resp, nil
}

// invoke sends a request and checks the response: error responses become
// errors and the response type must match the request type.
func (a *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	resp, err := a.roundTrip(req)
	if err != nil {
		return nil, err
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("rpc client - error: %s", resp.Err)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("rpc client - unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}
