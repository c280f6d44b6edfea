package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MessageType identifies one of the nine wire message variants
type MessageType int32

// Message type constants
const (
	TypeConnect            MessageType = 19
	TypeConnectResponse    MessageType = 20
	TypeDisconnect         MessageType = 21
	TypeQueryUsers         MessageType = 22
	TypeQueryUsersResponse MessageType = 23
	TypeBroadcast          MessageType = 24
	TypeDirect             MessageType = 25
	TypeFailed             MessageType = 26
	TypeSendInsult         MessageType = 27
)

// String returns the wire name of the message type, used for metrics labels
// and debug logging.
func (t MessageType) String() string {
	switch t {
	case TypeConnect:
		return "CONNECT"
	case TypeConnectResponse:
		return "CONNECT_RESPONSE"
	case TypeDisconnect:
		return "DISCONNECT"
	case TypeQueryUsers:
		return "QUERY_USERS"
	case TypeQueryUsersResponse:
		return "QUERY_USERS_RESPONSE"
	case TypeBroadcast:
		return "BROADCAST"
	case TypeDirect:
		return "DIRECT"
	case TypeFailed:
		return "FAILED"
	case TypeSendInsult:
		return "SEND_INSULT"
	default:
		return "UNKNOWN"
	}
}

// Message is one unit of wire communication. A complete frame on the wire is
// the int32 type tag followed by the variant body; EncodeTo and DecodeFrom
// handle the body only, Encode and Decode handle the full frame.
type Message interface {
	Type() MessageType
	EncodeTo(w io.Writer) error
	DecodeFrom(r io.Reader) error
}

// Encode writes one complete frame (tag + body) to the writer
func Encode(w io.Writer, m Message) error {
	if err := WriteInt32(w, int32(m.Type())); err != nil {
		return err
	}
	return m.EncodeTo(w)
}

// EncodeBytes encodes one complete frame to a byte slice
func EncodeBytes(m Message) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := Encode(buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads exactly one frame from the stream: the type tag, then the body
// of that variant. It consumes exactly the bytes the matching Encode would
// have produced and never over-reads. A clean end of stream before any tag
// byte surfaces as io.EOF; a partial tag is ErrTruncatedStream.
func Decode(r io.Reader) (Message, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedStream, err)
		}
		return nil, err
	}
	tag := int32(binary.BigEndian.Uint32(buf))

	m, err := newMessage(MessageType(tag))
	if err != nil {
		return nil, err
	}
	if err := m.DecodeFrom(r); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeBytes decodes one frame from a byte slice
func DecodeBytes(data []byte) (Message, error) {
	return Decode(bytes.NewReader(data))
}

// newMessage returns an empty instance of the variant for a type tag
func newMessage(t MessageType) (Message, error) {
	switch t {
	case TypeConnect:
		return &ConnectMessage{}, nil
	case TypeConnectResponse:
		return &ConnectResponse{}, nil
	case TypeDisconnect:
		return &DisconnectMessage{}, nil
	case TypeQueryUsers:
		return &QueryUsersMessage{}, nil
	case TypeQueryUsersResponse:
		return &QueryUsersResponse{}, nil
	case TypeBroadcast:
		return &BroadcastMessage{}, nil
	case TypeDirect:
		return &DirectMessage{}, nil
	case TypeFailed:
		return &FailedMessage{}, nil
	case TypeSendInsult:
		return &SendInsultMessage{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown message type %d", ErrMalformedMessage, t)
	}
}

// ConnectMessage (19) - Client requests to join the chat under a username
type ConnectMessage struct {
	Username string
}

func (m *ConnectMessage) Type() MessageType { return TypeConnect }

func (m *ConnectMessage) EncodeTo(w io.Writer) error {
	return WriteString(w, m.Username)
}

func (m *ConnectMessage) DecodeFrom(r io.Reader) error {
	username, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Username = username
	return nil
}

// ConnectResponse (20) - Server result for connect and disconnect requests
type ConnectResponse struct {
	Success bool
	Message string
}

func (m *ConnectResponse) Type() MessageType { return TypeConnectResponse }

func (m *ConnectResponse) EncodeTo(w io.Writer) error {
	if err := WriteBool(w, m.Success); err != nil {
		return err
	}
	return WriteString(w, m.Message)
}

func (m *ConnectResponse) DecodeFrom(r io.Reader) error {
	success, err := ReadBool(r)
	if err != nil {
		return err
	}
	message, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Success = success
	m.Message = message
	return nil
}

// DisconnectMessage (21) - Client requests to leave the chat
type DisconnectMessage struct {
	Username string
}

func (m *DisconnectMessage) Type() MessageType { return TypeDisconnect }

func (m *DisconnectMessage) EncodeTo(w io.Writer) error {
	return WriteString(w, m.Username)
}

func (m *DisconnectMessage) DecodeFrom(r io.Reader) error {
	username, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Username = username
	return nil
}

// QueryUsersMessage (22) - Client asks who else is connected
type QueryUsersMessage struct {
	Username string
}

func (m *QueryUsersMessage) Type() MessageType { return TypeQueryUsers }

func (m *QueryUsersMessage) EncodeTo(w io.Writer) error {
	return WriteString(w, m.Username)
}

func (m *QueryUsersMessage) DecodeFrom(r io.Reader) error {
	username, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Username = username
	return nil
}

// QueryUsersResponse (23) - Connected usernames, order preserved on the wire
type QueryUsersResponse struct {
	Users []string
}

func (m *QueryUsersResponse) Type() MessageType { return TypeQueryUsersResponse }

func (m *QueryUsersResponse) EncodeTo(w io.Writer) error {
	return WriteStringList(w, m.Users)
}

func (m *QueryUsersResponse) DecodeFrom(r io.Reader) error {
	users, err := ReadStringList(r)
	if err != nil {
		return err
	}
	m.Users = users
	return nil
}

// BroadcastMessage (24) - Chat text for every user in the room
type BroadcastMessage struct {
	Sender  string
	Message string
}

func (m *BroadcastMessage) Type() MessageType { return TypeBroadcast }

func (m *BroadcastMessage) EncodeTo(w io.Writer) error {
	if err := WriteString(w, m.Sender); err != nil {
		return err
	}
	return WriteString(w, m.Message)
}

func (m *BroadcastMessage) DecodeFrom(r io.Reader) error {
	sender, err := ReadString(r)
	if err != nil {
		return err
	}
	message, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Sender = sender
	m.Message = message
	return nil
}

// DirectMessage (25) - Chat text for a single recipient
type DirectMessage struct {
	Sender    string
	Recipient string
	Message   string
}

func (m *DirectMessage) Type() MessageType { return TypeDirect }

func (m *DirectMessage) EncodeTo(w io.Writer) error {
	if err := WriteString(w, m.Sender); err != nil {
		return err
	}
	if err := WriteString(w, m.Recipient); err != nil {
		return err
	}
	return WriteString(w, m.Message)
}

func (m *DirectMessage) DecodeFrom(r io.Reader) error {
	sender, err := ReadString(r)
	if err != nil {
		return err
	}
	recipient, err := ReadString(r)
	if err != nil {
		return err
	}
	message, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Sender = sender
	m.Recipient = recipient
	m.Message = message
	return nil
}

// FailedMessage (26) - Server-side application error report
type FailedMessage struct {
	Message string
}

func (m *FailedMessage) Type() MessageType { return TypeFailed }

func (m *FailedMessage) EncodeTo(w io.Writer) error {
	return WriteString(w, m.Message)
}

func (m *FailedMessage) DecodeFrom(r io.Reader) error {
	message, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Message = message
	return nil
}

// SendInsultMessage (27) - Client asks the server to insult another user
type SendInsultMessage struct {
	Sender    string
	Recipient string
}

func (m *SendInsultMessage) Type() MessageType { return TypeSendInsult }

func (m *SendInsultMessage) EncodeTo(w io.Writer) error {
	if err := WriteString(w, m.Sender); err != nil {
		return err
	}
	return WriteString(w, m.Recipient)
}

func (m *SendInsultMessage) DecodeFrom(r io.Reader) error {
	sender, err := ReadString(r)
	if err != nil {
		return err
	}
	recipient, err := ReadString(r)
	if err != nil {
		return err
	}
	m.Sender = sender
	m.Recipient = recipient
	return nil
}
