package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banterhq/banter/pkg/protocol"
)

func dialWebSocket(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	return ws
}

func sendWS(t *testing.T, ws *websocket.Conn, m protocol.Message) {
	t.Helper()

	data, err := protocol.EncodeBytes(m)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, data))
}

func recvWS(t *testing.T, ws *websocket.Conn) protocol.Message {
	t.Helper()

	messageType, data, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, messageType)

	msg, err := protocol.DecodeBytes(data)
	require.NoError(t, err)
	return msg
}

func TestWebSocketLogin(t *testing.T) {
	srv := newTestServer(10)
	ws := dialWebSocket(t, srv)

	sendWS(t, ws, &protocol.ConnectMessage{Username: "alice"})
	resp := recvWS(t, ws).(*protocol.ConnectResponse)
	assert.True(t, resp.Success)
	assert.Equal(t, "There are 0 other connected clients.", resp.Message)
}

func TestWebSocketAndTCPShareTheRoom(t *testing.T) {
	srv := startTestServer(t, 10)

	alice := dialServer(t, srv)
	login(t, alice, "alice")

	ws := dialWebSocket(t, srv)
	sendWS(t, ws, &protocol.ConnectMessage{Username: "bob"})
	resp := recvWS(t, ws).(*protocol.ConnectResponse)
	require.True(t, resp.Success)

	// alice sees bob join even though bob came in over WebSocket
	join := recvMsg(t, alice).(*protocol.BroadcastMessage)
	assert.Equal(t, "bob has joined the chat", join.Message)

	sendWS(t, ws, &protocol.BroadcastMessage{Sender: "bob", Message: "hi from the browser"})
	assert.Equal(t,
		&protocol.BroadcastMessage{Sender: "bob", Message: "hi from the browser"},
		recvMsg(t, alice))
	recvWS(t, ws) // bob's own broadcast echo

	sendMsg(t, alice, &protocol.DirectMessage{Sender: "alice", Recipient: "bob", Message: "welcome"})
	assert.Equal(t,
		&protocol.DirectMessage{Sender: "alice", Recipient: "bob", Message: "welcome"},
		recvWS(t, ws))
}

func TestWebSocketRespectsCapacity(t *testing.T) {
	srv := startTestServer(t, 1)

	conn := dialServer(t, srv)
	login(t, conn, "alice")

	ws := dialWebSocket(t, srv)
	resp := recvWS(t, ws).(*protocol.ConnectResponse)
	assert.False(t, resp.Success)
	assert.Equal(t, "Server is full. Try again later.", resp.Message)
}
