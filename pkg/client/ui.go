package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/banterhq/banter/pkg/protocol"
)

// Connection defaults offered at the prompts
const (
	DefaultHost = "localhost"
	DefaultPort = "12345"
)

const (
	inputPromptSuffix = ": > "

	welcomeText             = "Connected to the chat!"
	generalInstructionsText = `Enter messages or type "?" for help.`
	connectedText           = "Successfully Connected"
	exitingText             = "Exiting..."
	noOtherUsersText        = "No other connected users"
	connectedUsersPrefix    = "Connected Users: "
	chatDisconnectedText    = "Chat disconnected. Enter a non-empty message to exit."
	helpSuffix              = "Use ? for the help instructions"

	broadcastPrefix   = "\n(broadcast) "
	privatePrefix     = "\n(private) "
	serverPrefix      = "\nSERVER: "
	serverErrorPrefix = "\nSERVER ERROR: "
)

// Console reads user input line by line and renders chat traffic. All output
// goes through out and errOut so tests can capture it.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

// NewConsole creates a console over the given streams
func NewConsole(in io.Reader, out, errOut io.Writer) *Console {
	return &Console{
		scanner: bufio.NewScanner(in),
		out:     out,
		errOut:  errOut,
	}
}

// PromptHost asks for the server host, falling back to the default on an
// empty line
func (c *Console) PromptHost(defaultHost string) string {
	fmt.Fprintf(c.out, "Enter IP address of server to connect to (default: %s)%s", defaultHost, inputPromptSuffix)
	return c.readLineWithDefault(defaultHost)
}

// PromptPort asks for the server port, falling back to the default on an
// empty line
func (c *Console) PromptPort(defaultPort string) string {
	fmt.Fprintf(c.out, "Enter Server Port (default: %s)%s", defaultPort, inputPromptSuffix)
	return c.readLineWithDefault(defaultPort)
}

// PromptUsername asks for a username until a non-empty one is entered
func (c *Console) PromptUsername() string {
	return c.readNonEmpty("Enter username" + inputPromptSuffix)
}

// PromptInput reads one non-empty chat input line
func (c *Console) PromptInput(username string) string {
	return c.readNonEmpty(username + inputPromptSuffix)
}

func (c *Console) readLineWithDefault(defaultValue string) string {
	if !c.scanner.Scan() {
		return defaultValue
	}
	line := c.scanner.Text()
	if line == "" {
		return defaultValue
	}
	return line
}

func (c *Console) readNonEmpty(prompt string) string {
	for {
		fmt.Fprint(c.out, prompt)
		if !c.scanner.Scan() {
			return ""
		}
		if line := strings.TrimSpace(c.scanner.Text()); line != "" {
			return line
		}
	}
}

// ShowMessage prints one line to the output stream
func (c *Console) ShowMessage(message string) {
	fmt.Fprintln(c.out, message)
}

// ShowError prints one line to the error stream
func (c *Console) ShowError(message string) {
	fmt.Fprintln(c.errOut, message)
}

// ShowErrorWithHelp prints an error with a pointer at the help command
func (c *Console) ShowErrorWithHelp(message string) {
	fmt.Fprintln(c.errOut, message+" "+helpSuffix)
}

// ShowWelcome prints the post-login greeting and usage hint
func (c *Console) ShowWelcome() {
	c.ShowMessage(welcomeText)
	c.ShowMessage(generalInstructionsText)
}

// ShowConnected reports a successful login
func (c *Console) ShowConnected() {
	c.ShowMessage(connectedText)
}

// ShowExiting prints the shutdown notice
func (c *Console) ShowExiting() {
	c.ShowMessage(exitingText)
}

// ShowServerMessage prints server-originated text
func (c *Console) ShowServerMessage(message string) {
	c.ShowMessage(serverPrefix + message)
}

// ShowServerError prints server-originated error text
func (c *Console) ShowServerError(message string) {
	c.ShowError(serverErrorPrefix + message)
}

// Render displays one inbound message. It returns false when the message is
// the server's disconnect acknowledgement, which ends the receive loop.
func (c *Console) Render(msg protocol.Message) bool {
	switch m := msg.(type) {
	case *protocol.BroadcastMessage:
		c.ShowMessage(broadcastPrefix + m.Sender + ": " + m.Message)
	case *protocol.DirectMessage:
		c.ShowMessage(privatePrefix + m.Sender + ": " + m.Message)
	case *protocol.FailedMessage:
		c.ShowServerError(m.Message)
	case *protocol.QueryUsersResponse:
		c.renderUserList(m.Users)
	case *protocol.ConnectResponse:
		// Only disconnect acknowledgements arrive in-room
		c.ShowServerMessage(m.Message)
		c.ShowMessage(chatDisconnectedText)
		return false
	default:
		c.ShowError("Unknown message type.")
	}
	return true
}

func (c *Console) renderUserList(users []string) {
	if len(users) == 0 {
		c.ShowServerMessage(noOtherUsersText)
		return
	}
	c.ShowServerMessage(connectedUsersPrefix + strings.Join(users, ", "))
}

// RenderLogin displays the reply to a Connect message and reports whether
// login succeeded
func (c *Console) RenderLogin(msg protocol.Message) bool {
	resp, ok := msg.(*protocol.ConnectResponse)
	if !ok {
		c.ShowServerError("Can't log in. Unexpected response from server.")
		return false
	}
	if !resp.Success {
		c.ShowServerError(resp.Message)
		return false
	}

	c.ShowConnected()
	c.ShowServerMessage(resp.Message)
	return true
}
