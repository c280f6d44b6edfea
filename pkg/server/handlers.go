package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/banterhq/banter/pkg/protocol"
)

// Name the server signs synthesized broadcasts with
const ServerName = "SERVER"

// User-visible protocol error and status text
const (
	invalidMessageText        = "Invalid message."
	invalidRecipientText      = "Invalid recipient"
	invalidConnectMessageText = "Invalid connect message"
	invalidUsernameText       = "Invalid username. Please send a connect message with a valid username"
	usernameTakenText         = "Username is already taken."
	disconnectedText          = "You are no longer connected."
	cantDisconnectOthersText  = "Can't disconnect other users."
	joinedChatSuffix          = " has joined the chat"
)

// handleLogin processes one message from a session awaiting login. Only a
// Connect message with a non-empty, untaken username moves the session
// forward; everything else leaves it awaiting login.
func (s *Server) handleLogin(sess *Session, msg protocol.Message) error {
	connect, ok := msg.(*protocol.ConnectMessage)
	if !ok {
		return s.send(sess, &protocol.FailedMessage{Message: invalidConnectMessageText})
	}

	username := strings.TrimSpace(connect.Username)
	if username == "" {
		return s.send(sess, &protocol.ConnectResponse{Success: false, Message: invalidUsernameText})
	}
	if _, taken := s.registry.FindByUsername(username); taken {
		return s.send(sess, &protocol.ConnectResponse{Success: false, Message: usernameTakenText})
	}

	if err := sess.SetUsername(username); err != nil {
		return err
	}

	others := s.registry.Count() - 1
	resp := &protocol.ConnectResponse{
		Success: true,
		Message: fmt.Sprintf("There are %d other connected clients.", others),
	}
	if err := s.send(sess, resp); err != nil {
		return err
	}

	debugLog.Printf("session %s: logged in as %q", sess.ID, username)
	s.broadcast(&protocol.BroadcastMessage{Sender: ServerName, Message: username + joinedChatSuffix})
	return nil
}

// handleMessage dispatches one in-room message. The variant set is closed;
// any server-to-client variant arriving here is an invalid message.
func (s *Server) handleMessage(sess *Session, msg protocol.Message) error {
	switch m := msg.(type) {
	case *protocol.BroadcastMessage:
		s.broadcast(m)
		return nil
	case *protocol.DirectMessage:
		return s.handleDirect(sess, m)
	case *protocol.QueryUsersMessage:
		return s.handleQueryUsers(sess, m)
	case *protocol.DisconnectMessage:
		return s.handleDisconnect(sess, m)
	case *protocol.SendInsultMessage:
		return s.handleSendInsult(sess, m)
	default:
		return s.send(sess, &protocol.FailedMessage{Message: invalidMessageText})
	}
}

// handleDirect forwards the message verbatim to the recipient only
func (s *Server) handleDirect(sess *Session, m *protocol.DirectMessage) error {
	recipient, ok := s.registry.FindByUsername(m.Recipient)
	if !ok {
		return s.send(sess, &protocol.FailedMessage{Message: invalidRecipientText})
	}
	return s.send(recipient, m)
}

// handleQueryUsers replies with every logged-in username except the requester's
func (s *Server) handleQueryUsers(sess *Session, m *protocol.QueryUsersMessage) error {
	users := s.registry.Usernames(m.Username)
	return s.send(sess, &protocol.QueryUsersResponse{Users: users})
}

// handleDisconnect lets a session disconnect itself, and only itself
func (s *Server) handleDisconnect(sess *Session, m *protocol.DisconnectMessage) error {
	if m.Username != sess.Username() {
		return s.send(sess, &protocol.ConnectResponse{Success: false, Message: cantDisconnectOthersText})
	}

	if err := s.send(sess, &protocol.ConnectResponse{Success: true, Message: disconnectedText}); err != nil {
		return err
	}
	sess.LeaveRoom()
	return nil
}

// handleSendInsult broadcasts a random insult on the sender's behalf,
// signed by the server
func (s *Server) handleSendInsult(sess *Session, m *protocol.SendInsultMessage) error {
	if _, ok := s.registry.FindByUsername(m.Recipient); !ok {
		return s.send(sess, &protocol.FailedMessage{Message: invalidRecipientText})
	}

	text := fmt.Sprintf("%s -> %s: %s", m.Sender, m.Recipient, RandomInsult())
	s.broadcast(&protocol.BroadcastMessage{Sender: ServerName, Message: text})
	return nil
}

// send delivers one message to a single session
func (s *Server) send(sess *Session, m protocol.Message) error {
	if s.metrics != nil {
		s.metrics.RecordMessageSent(m.Type().String())
	}
	return sess.Conn.Send(m)
}

// broadcast fans a message out to every in-room session
func (s *Server) broadcast(m protocol.Message) {
	start := time.Now()
	delivered := s.registry.Broadcast(m)

	if s.metrics != nil {
		s.metrics.RecordMessageBroadcast()
		s.metrics.RecordBroadcastFanout(delivered)
		s.metrics.RecordBroadcastDuration(time.Since(start).Seconds())
	}
}
