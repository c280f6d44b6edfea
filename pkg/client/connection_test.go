package client

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banterhq/banter/pkg/protocol"
)

// fakeServer runs a scripted peer on the far end of a pipe
func fakeServer(t *testing.T, script func(conn net.Conn)) *Connection {
	t.Helper()

	clientSide, serverSide := net.Pipe()
	t.Cleanup(func() {
		clientSide.Close()
		serverSide.Close()
	})

	go script(serverSide)
	return NewConnection(clientSide)
}

func TestLoginSuccess(t *testing.T) {
	conn := fakeServer(t, func(peer net.Conn) {
		msg, err := protocol.Decode(peer)
		require.NoError(t, err)
		require.Equal(t, &protocol.ConnectMessage{Username: "alice"}, msg)

		require.NoError(t, protocol.Encode(peer, &protocol.ConnectResponse{
			Success: true,
			Message: "There are 0 other connected clients.",
		}))
	})

	reply, err := conn.Login("alice")
	require.NoError(t, err)
	assert.Equal(t, &protocol.ConnectResponse{
		Success: true,
		Message: "There are 0 other connected clients.",
	}, reply)
}

func TestLoginFailureReply(t *testing.T) {
	conn := fakeServer(t, func(peer net.Conn) {
		_, err := protocol.Decode(peer)
		require.NoError(t, err)
		require.NoError(t, protocol.Encode(peer, &protocol.ConnectResponse{
			Success: false,
			Message: "Username is already taken.",
		}))
	})

	reply, err := conn.Login("alice")
	require.NoError(t, err)

	resp := reply.(*protocol.ConnectResponse)
	assert.False(t, resp.Success)
}

func TestLoginStreamError(t *testing.T) {
	conn := fakeServer(t, func(peer net.Conn) {
		_, _ = protocol.Decode(peer)
		peer.Close()
	})

	_, err := conn.Login("alice")
	assert.Error(t, err)
}

func TestSendReceiveRoundTrip(t *testing.T) {
	echoed := make(chan protocol.Message, 1)
	conn := fakeServer(t, func(peer net.Conn) {
		msg, err := protocol.Decode(peer)
		require.NoError(t, err)
		echoed <- msg
		require.NoError(t, protocol.Encode(peer, msg))
	})

	sent := &protocol.BroadcastMessage{Sender: "alice", Message: "hello"}
	require.NoError(t, conn.Send(sent))

	select {
	case got := <-echoed:
		assert.Equal(t, sent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the peer")
	}

	back, err := conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, sent, back)
}

func TestDialFailure(t *testing.T) {
	// A listener that is immediately closed gives us a port nobody serves
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	_, err = Dial(host, port)
	assert.ErrorIs(t, err, ErrConnect)
}
