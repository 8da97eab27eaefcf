// Package cli provides the interactive TalkScribe terminal client.
//
// It wires configuration, the local store, the server client and the
// recording orchestrator behind a line-oriented REPL. Typical flow: log in
// (or resume the previous session), pick a mode, start and stop recordings,
// translate, and browse the history.
package cli
