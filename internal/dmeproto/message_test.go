package dmeproto

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincronizacion-distribuida/chat-dme/internal/logical"
)

func TestRoundTrip(t *testing.T) {
	original := Message{Kind: KindRequest, Timestamp: 42, NodeID: "a"}
	parsed, err := ParseLine(original.Encode())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestEncodeMatchesWireFormat(t *testing.T) {
	m := Message{Kind: KindReply, Timestamp: logical.Timestamp(7), NodeID: "server2"}
	assert.Equal(t, "REPLY 7 server2\n", m.Encode())
}

func TestParseLineRejectsUnknownVerb(t *testing.T) {
	_, err := ParseLine("PING 1 a\n")
	assert.Error(t, err)
}

func TestParseLineRejectsNonIntegerTimestamp(t *testing.T) {
	_, err := ParseLine("REQUEST abc a\n")
	assert.Error(t, err)
}

func TestParseLineRejectsTooManyFields(t *testing.T) {
	_, err := ParseLine("REQUEST 1 a extra\n")
	assert.Error(t, err)
}

func TestParseLineRejectsOverlongNodeID(t *testing.T) {
	longID := strings.Repeat("x", MaxNodeIDLength+1)
	_, err := ParseLine("REQUEST 1 " + longID + "\n")
	assert.Error(t, err)
}

func TestReadMessageFromReader(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("REQUEST 3 b\nREPLY 4 a\n"))
	m1, err := ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, Message{Kind: KindRequest, Timestamp: 3, NodeID: "b"}, m1)

	m2, err := ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, Message{Kind: KindReply, Timestamp: 4, NodeID: "a"}, m2)
}

func TestReadMessageShortReadSurfacesError(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("REQUEST 3 b"))
	_, err := ReadMessage(r)
	assert.Error(t, err)
}
