// Package dmeproto implements the Ricart-Agrawala wire protocol: the two
// message kinds exchanged between peers and the line-based codec that
// serializes them to and from the bit-exact format in spec §6.
package dmeproto

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/sincronizacion-distribuida/chat-dme/internal/logical"
)

// Kind identifies a protocol message's verb.
type Kind string

const (
	KindRequest Kind = "REQUEST"
	KindReply   Kind = "REPLY"
)

// MaxNodeIDLength is the wire limit on node_id length (§6).
const MaxNodeIDLength = 64

// Message is a single REQUEST or REPLY exchanged between peers.
type Message struct {
	Kind      Kind
	Timestamp logical.Timestamp
	NodeID    string
}

// Encode renders m as a single line (including the trailing "\n")
// per §6: "<VERB> <ts> <node_id>\n".
func (m Message) Encode() string {
	return fmt.Sprintf("%s %d %s\n", m.Kind, m.Timestamp, m.NodeID)
}

// ParseLine parses a single wire line (without requiring the trailing
// newline) into a Message. Returns an error for malformed verbs,
// non-integer timestamps, or node ids that violate §6's constraints.
func ParseLine(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Message{}, fmt.Errorf("dmeproto: malformed line %q: expected 3 fields, got %d", line, len(fields))
	}

	kind := Kind(fields[0])
	if kind != KindRequest && kind != KindReply {
		return Message{}, fmt.Errorf("dmeproto: unknown verb %q", fields[0])
	}

	ts, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("dmeproto: bad timestamp %q: %w", fields[1], err)
	}

	nodeID := fields[2]
	if len(nodeID) > MaxNodeIDLength {
		return Message{}, fmt.Errorf("dmeproto: node_id %q exceeds %d characters", nodeID, MaxNodeIDLength)
	}
	if !isPrintableASCII(nodeID) {
		return Message{}, fmt.Errorf("dmeproto: node_id %q is not printable ASCII", nodeID)
	}

	return Message{Kind: kind, Timestamp: logical.Timestamp(ts), NodeID: nodeID}, nil
}

func isPrintableASCII(s string) bool {
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// ReadMessage reads and parses the next complete line from r. A short
// read (connection closed mid-line) is surfaced as the underlying error
// rather than an attempt to parse a partial line.
func ReadMessage(r *bufio.Reader) (Message, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return Message{}, err
	}
	return ParseLine(line)
}
