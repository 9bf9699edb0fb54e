// Package repl implements the line-oriented chat CLI from spec §1/§6:
// "view" / "post <text>" / "exit". Styled after
// sfurman3-chatroom/src/server/server.go's handleMaster command loop —
// a bufio scanner, strings.TrimSpace, and a switch over the first token
// — adapted from a master-process protocol to an interactive terminal.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatclient"
	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
	"github.com/sincronizacion-distribuida/chat-dme/internal/dme"
)

// CS is the subset of dme.Node the REPL drives (spec §6: "Core API
// consumed by the chat CLI": acquire()/release()).
type CS interface {
	Acquire()
	Release()
}

var _ CS = (*dme.Node)(nil)

// REPL reads commands from in and writes responses to out.
type REPL struct {
	node   CS
	client *chatclient.Client
	in     *bufio.Scanner
	out    io.Writer
	log    *chatlog.Logger
}

// New returns a REPL wired to node (the local DME controller) and client
// (the file server connection).
func New(node CS, client *chatclient.Client, in io.Reader, out io.Writer, log *chatlog.Logger) *REPL {
	return &REPL{node: node, client: client, in: bufio.NewScanner(in), out: out, log: log}
}

// Run processes commands until "exit" or the input is exhausted.
func (r *REPL) Run() error {
	for r.in.Scan() {
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "exit":
			return nil
		case line == "view":
			r.handleView()
		case strings.HasPrefix(line, "post "):
			r.handlePost(strings.TrimPrefix(line, "post "))
		default:
			fmt.Fprintf(r.out, "unrecognized command: %q\n", line)
		}
	}
	return r.in.Err()
}

// handleView performs a pure VIEW against the file server with no DME
// involvement (spec §8 S5: "View does not block post").
func (r *REPL) handleView() {
	entries, err := r.client.View()
	if err != nil {
		fmt.Fprintf(r.out, "view failed: %v\n", err)
		return
	}
	for _, e := range entries {
		fmt.Fprintln(r.out, e)
	}
}

// handlePost acquires the critical section, posts to the file server,
// and releases — spec §6: "between them, the CLI issues a POST".
func (r *REPL) handlePost(text string) {
	r.node.Acquire()
	defer r.node.Release()

	if err := r.client.Commit(text); err != nil {
		fmt.Fprintf(r.out, "post failed: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "posted")
}
