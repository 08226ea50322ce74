package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/birchkv/birch/rpc/common"
	"github.com/birchkv/birch/rpc/transport"
	"github.com/birchkv/birch/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return fmt.Errorf("expected TCP connection, got %T", conn)
	}

	conf := config.Transport

	if conf.SocketConf.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(conf.SocketConf.WriteBufferSize); err != nil {
			return err
		}
	}
	if conf.SocketConf.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(conf.SocketConf.ReadBufferSize); err != nil {
			return err
		}
	}

	if err := tcpConn.SetNoDelay(conf.TCPConf.TCPNoDelay); err != nil {
		return err
	}
	if conf.TCPConf.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(conf.TCPConf.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}
	if conf.TCPConf.TCPLingerSec > 0 {
		if err := tcpConn.SetLinger(conf.TCPConf.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
