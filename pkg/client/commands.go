package client

import (
	"errors"
	"regexp"
	"strings"

	"github.com/banterhq/banter/pkg/protocol"
)

// Command parse failures shown to the user locally; nothing goes on the wire
var (
	ErrEmptyMessage   = errors.New("Error. Message cannot be empty.")
	ErrUnknownCommand = errors.New("Unknown command.")
)

// HelpMessage lists the chat commands
const HelpMessage = "Help instructions: \n" +
	"logoff: exit the chat room\n" +
	"who: find out who else in the chat\n" +
	"@<username>: sends a private message to the specified user\n" +
	"@all: sends a broadcast message to all users\n" +
	"!<username>: sends a random insult message to the specified user\n" +
	"?: shows this help message\n"

var (
	insultPattern    = regexp.MustCompile(`^!(\S+)$`)
	broadcastPattern = regexp.MustCompile(`^@all\s?(.*)$`)
	directPattern    = regexp.MustCompile(`@(\S+)\s?(.*)`)
)

// ParseInput maps one line of console input to an outbound message. A nil
// message with a nil error means the input was the help command, handled
// locally.
//
// The whole line is lowercased before matching, message bodies included, so
// outgoing chat text is always lowercase. Deliberate: it keeps command
// matching and recipient lookup case-insensitive at the cost of shouting.
func ParseInput(username, input string) (protocol.Message, error) {
	input = strings.TrimSpace(strings.ToLower(input))

	switch input {
	case "?":
		return nil, nil
	case "logoff":
		return &protocol.DisconnectMessage{Username: username}, nil
	case "who":
		return &protocol.QueryUsersMessage{Username: username}, nil
	}

	if m := insultPattern.FindStringSubmatch(input); m != nil {
		return &protocol.SendInsultMessage{Sender: username, Recipient: m[1]}, nil
	}

	if m := broadcastPattern.FindStringSubmatch(input); m != nil {
		if m[1] == "" {
			return nil, ErrEmptyMessage
		}
		return &protocol.BroadcastMessage{Sender: username, Message: m[1]}, nil
	}

	// Unanchored: "@bob hi" matches anywhere in the line
	if m := directPattern.FindStringSubmatch(input); m != nil {
		if m[2] == "" {
			return nil, ErrEmptyMessage
		}
		return &protocol.DirectMessage{Sender: username, Recipient: m[1], Message: m[2]}, nil
	}

	return nil, ErrUnknownCommand
}
