package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, m Message) Message {
	t.Helper()

	data, err := EncodeBytes(m)
	require.NoError(t, err)

	decoded, err := DecodeBytes(data)
	require.NoError(t, err)
	return decoded
}

func TestConnectMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  ConnectMessage
	}{
		{"simple username", ConnectMessage{Username: "alice"}},
		{"empty username", ConnectMessage{Username: ""}},
		{"unicode username", ConnectMessage{Username: "ålice_山"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := roundTrip(t, &tt.msg)
			assert.Equal(t, &tt.msg, decoded)
		})
	}
}

func TestConnectResponse(t *testing.T) {
	tests := []struct {
		name string
		msg  ConnectResponse
	}{
		{"success", ConnectResponse{Success: true, Message: "There are 2 other connected clients."}},
		{"failure", ConnectResponse{Success: false, Message: "Server is full. Try again later."}},
		{"empty message", ConnectResponse{Success: true, Message: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := roundTrip(t, &tt.msg)
			assert.Equal(t, &tt.msg, decoded)
		})
	}
}

func TestDisconnectMessage(t *testing.T) {
	decoded := roundTrip(t, &DisconnectMessage{Username: "bob"})
	assert.Equal(t, &DisconnectMessage{Username: "bob"}, decoded)
}

func TestQueryUsersMessage(t *testing.T) {
	decoded := roundTrip(t, &QueryUsersMessage{Username: "carol"})
	assert.Equal(t, &QueryUsersMessage{Username: "carol"}, decoded)
}

func TestQueryUsersResponse(t *testing.T) {
	tests := []struct {
		name string
		msg  QueryUsersResponse
	}{
		{"several users", QueryUsersResponse{Users: []string{"alice", "bob", "carol"}}},
		{"single user", QueryUsersResponse{Users: []string{"alice"}}},
		{"empty list", QueryUsersResponse{Users: []string{}}},
		{"empty entry", QueryUsersResponse{Users: []string{"alice", "", "bob"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := roundTrip(t, &tt.msg)
			resp := decoded.(*QueryUsersResponse)
			assert.Equal(t, tt.msg.Users, resp.Users)
		})
	}
}

func TestQueryUsersResponseOrderPreserved(t *testing.T) {
	msg := &QueryUsersResponse{Users: []string{"zed", "alice", "mike"}}
	decoded := roundTrip(t, msg).(*QueryUsersResponse)
	assert.Equal(t, []string{"zed", "alice", "mike"}, decoded.Users)
}

func TestBroadcastMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  BroadcastMessage
	}{
		{"chat text", BroadcastMessage{Sender: "alice", Message: "hello everyone"}},
		{"server message", BroadcastMessage{Sender: "SERVER", Message: "alice has joined the chat"}},
		{"empty body", BroadcastMessage{Sender: "alice", Message: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := roundTrip(t, &tt.msg)
			assert.Equal(t, &tt.msg, decoded)
		})
	}
}

func TestDirectMessage(t *testing.T) {
	msg := &DirectMessage{Sender: "alice", Recipient: "bob", Message: "psst"}
	decoded := roundTrip(t, msg)
	assert.Equal(t, msg, decoded)
}

func TestFailedMessage(t *testing.T) {
	msg := &FailedMessage{Message: "Invalid recipient"}
	decoded := roundTrip(t, msg)
	assert.Equal(t, msg, decoded)
}

func TestSendInsultMessage(t *testing.T) {
	msg := &SendInsultMessage{Sender: "alice", Recipient: "bob"}
	decoded := roundTrip(t, msg)
	assert.Equal(t, msg, decoded)
}

func TestMessageTypeTags(t *testing.T) {
	// Tag values are part of the wire contract
	assert.Equal(t, MessageType(19), (&ConnectMessage{}).Type())
	assert.Equal(t, MessageType(20), (&ConnectResponse{}).Type())
	assert.Equal(t, MessageType(21), (&DisconnectMessage{}).Type())
	assert.Equal(t, MessageType(22), (&QueryUsersMessage{}).Type())
	assert.Equal(t, MessageType(23), (&QueryUsersResponse{}).Type())
	assert.Equal(t, MessageType(24), (&BroadcastMessage{}).Type())
	assert.Equal(t, MessageType(25), (&DirectMessage{}).Type())
	assert.Equal(t, MessageType(26), (&FailedMessage{}).Type())
	assert.Equal(t, MessageType(27), (&SendInsultMessage{}).Type())
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "CONNECT", TypeConnect.String())
	assert.Equal(t, "SEND_INSULT", TypeSendInsult.String())
	assert.Equal(t, "UNKNOWN", MessageType(99).String())
}

func TestEncodedLayout(t *testing.T) {
	// Connect("hi") = tag 19 (int32 BE) + length 2 (int32 BE) + "hi"
	data, err := EncodeBytes(&ConnectMessage{Username: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 19, 0, 0, 0, 2, 'h', 'i'}, data)

	// ConnectResponse(true, "") = tag 20 + 0x01 + length 0
	data, err = EncodeBytes(&ConnectResponse{Success: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 20, 0x01, 0, 0, 0, 0}, data)
}
