package server

import (
	"net"
	"sync"

	"github.com/banterhq/banter/pkg/protocol"
)

// SafeConn wraps a connection with write synchronization so that the
// session's own replies and broadcasts from other sessions never interleave
// on the wire. Reads are not locked; each session has a single reader.
type SafeConn struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// NewSafeConn wraps a net.Conn
func NewSafeConn(conn net.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// Send encodes one message to the connection, serialized against concurrent writers
func (c *SafeConn) Send(m protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.Encode(c.conn, m)
}

// Read implements io.Reader for the session's decode loop
func (c *SafeConn) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

// Close closes the underlying connection
func (c *SafeConn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the peer address
func (c *SafeConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
