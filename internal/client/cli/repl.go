package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	SetMode(ctx context.Context, args []string) error
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
	Status(ctx context.Context) error
	Translate(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Upload(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Languages(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, languages, exit"
	helpLoggedIn  = "Available commands: mode <live|traditional>, start, stop, status, translate <lang> [id], " +
		"history [query], show <id>, delete <id>, rename <id> <title>, upload, export <file>, languages, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the TalkScribe client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Commands that need a session are refused until the user logs in. The loop
// exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and otherwise ignored, so
// one failing command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ts %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "languages", "langs":
			cmdErr = a.Languages(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "logout", "mode", "start", "stop", "status", "translate", "history", "h",
			"show", "delete", "rename", "upload", "export":
			if !a.isLoggedIn() {
				printlnFn("Please login first.")
				continue
			}
			cmdErr = dispatchSession(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}

func dispatchSession(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "mode":
		return a.SetMode(ctx, args)
	case "start":
		return a.StartRecording(ctx)
	case "stop":
		return a.StopRecording(ctx)
	case "status":
		return a.Status(ctx)
	case "translate":
		return a.Translate(ctx, args)
	case "history", "h":
		return a.History(ctx, args)
	case "show":
		return a.Show(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "rename":
		return a.Rename(ctx, args)
	case "upload":
		return a.Upload(ctx)
	case "export":
		return a.Export(ctx, args)
	}
	return nil
}
