package client

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/banterhq/banter/pkg/protocol"
)

// ErrConnect is returned when the initial dial fails
var ErrConnect = errors.New("Unable to connect to host. Check the host and port then try again.")

// Connection is the client side of one chat session. Receives happen from a
// single reader goroutine; sends are serialized with a mutex so a message is
// never interleaved mid-frame on the stream.
type Connection struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// Dial connects to a chat server
func Dial(host, port string) (*Connection, error) {
	conn, err := net.Dial("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return NewConnection(conn), nil
}

// NewConnection wraps an established connection
func NewConnection(conn net.Conn) *Connection {
	return &Connection{conn: conn}
}

// Login sends a Connect message and blocks for exactly one reply
func (c *Connection) Login(username string) (protocol.Message, error) {
	if err := c.Send(&protocol.ConnectMessage{Username: username}); err != nil {
		return nil, err
	}
	return c.Receive()
}

// Send encodes one message onto the stream
func (c *Connection) Send(m protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.Encode(c.conn, m)
}

// Receive decodes one message from the stream
func (c *Connection) Receive() (protocol.Message, error) {
	return protocol.Decode(c.conn)
}

// Close closes the underlying connection
func (c *Connection) Close() error {
	return c.conn.Close()
}
