package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/banterhq/banter/pkg/client"
)

func main() {
	host := flag.String("host", "", "Server host (skips the prompt)")
	port := flag.String("port", "", "Server port (skips the prompt)")
	statePath := flag.String("state", "", "Path to state database (default: ~/.banter-client/state.db)")
	flag.Parse()

	// Default state path
	if *statePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		*statePath = filepath.Join(homeDir, ".banter-client", "state.db")
	}

	console := client.NewConsole(os.Stdin, os.Stdout, os.Stderr)

	// Client state is a convenience; run without it if it fails to open
	state, err := client.OpenState(*statePath)
	if err != nil {
		console.ShowError("Warning: state database unavailable: " + err.Error())
		state = nil
	} else {
		defer state.Close()
	}

	run(console, state, *host, *port)
}

func run(console *client.Console, state *client.State, host, port string) {
	defaultHost, defaultPort := client.DefaultHost, client.DefaultPort
	if state != nil {
		if last := state.LastHost(); last != "" {
			defaultHost = last
		}
		if last := state.LastPort(); last != "" {
			defaultPort = last
		}
	}

	if host == "" {
		host = console.PromptHost(defaultHost)
	}
	if port == "" {
		port = console.PromptPort(defaultPort)
	}

	conn, err := client.Dial(host, port)
	if err != nil {
		console.ShowError(err.Error())
		return
	}
	defer conn.Close()

	// Login loop: retry until the server accepts a username
	var username string
	for {
		username = console.PromptUsername()
		if username == "" {
			// Input stream closed mid-login
			console.ShowExiting()
			return
		}

		reply, err := conn.Login(username)
		if err != nil {
			console.ShowError("Connection error. " + err.Error())
			console.ShowExiting()
			return
		}
		if console.RenderLogin(reply) {
			break
		}
	}

	if state != nil {
		state.SetLastHost(host)
		state.SetLastPort(port)
		state.SetLastUsername(username)
	}

	console.ShowWelcome()

	var connected atomic.Bool
	connected.Store(true)

	g := new(errgroup.Group)
	g.Go(func() error {
		for {
			msg, err := conn.Receive()
			if err != nil {
				if connected.Load() {
					console.ShowError("Invalid response from server")
					console.ShowError("Chat disconnected. Enter a non-empty message to exit.")
				}
				connected.Store(false)
				return nil
			}
			if !console.Render(msg) {
				connected.Store(false)
				return nil
			}
		}
	})

	for {
		input := console.PromptInput(username)
		if input == "" || !connected.Load() {
			break
		}

		msg, err := client.ParseInput(username, input)
		switch {
		case errors.Is(err, client.ErrEmptyMessage), errors.Is(err, client.ErrUnknownCommand):
			console.ShowErrorWithHelp(err.Error())
			continue
		case err != nil:
			console.ShowError(err.Error())
			continue
		}

		if msg == nil {
			console.ShowMessage(client.HelpMessage)
			continue
		}

		if err := conn.Send(msg); err != nil {
			console.ShowError("Connection error. " + err.Error())
			break
		}
	}

	connected.Store(false)
	conn.Close()
	g.Wait()
	console.ShowExiting()
}
