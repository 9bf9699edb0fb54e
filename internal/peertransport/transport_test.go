package peertransport

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
	"github.com/sincronizacion-distribuida/chat-dme/internal/dmeproto"
)

func dialRaw(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

type recordingDispatcher struct {
	mu       sync.Mutex
	requests []dmeproto.Message
	replies  []dmeproto.Message
	seen     chan struct{}
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{seen: make(chan struct{}, 16)}
}

func (d *recordingDispatcher) OnRequest(msg dmeproto.Message) {
	d.mu.Lock()
	d.requests = append(d.requests, msg)
	d.mu.Unlock()
	d.seen <- struct{}{}
}

func (d *recordingDispatcher) OnReply(msg dmeproto.Message) {
	d.mu.Lock()
	d.replies = append(d.replies, msg)
	d.mu.Unlock()
	d.seen <- struct{}{}
}

func mustPort(t *testing.T, addr string) int {
	t.Helper()
	_, portStr, err := splitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func splitHostPort(addr string) (string, string, error) {
	idx := strings.LastIndex(addr, ":")
	return addr[:idx], addr[idx+1:], nil
}

func TestSendAndReceiveOverTCP(t *testing.T) {
	log := chatlog.NewDefault("b")
	dispatcher := newRecordingDispatcher()
	ln, err := Listen("127.0.0.1:0", dispatcher, log)
	require.NoError(t, err)
	defer ln.Close()
	go ln.Serve()

	port := mustPort(t, ln.Addr().String())
	transport := NewTCPTransport("a", []PeerAddr{{NodeID: "b", Host: "127.0.0.1", Port: port}}, DefaultConfig(), chatlog.NewDefault("a"))

	err = transport.Send("b", dmeproto.Message{Kind: dmeproto.KindRequest, Timestamp: 7, NodeID: "a"})
	require.NoError(t, err)

	select {
	case <-dispatcher.seen:
	case <-time.After(time.Second):
		t.Fatal("dispatcher never saw the message")
	}

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	require.Len(t, dispatcher.requests, 1)
	assert.Equal(t, dmeproto.Message{Kind: dmeproto.KindRequest, Timestamp: 7, NodeID: "a"}, dispatcher.requests[0])
}

func TestSendToUnknownPeerErrors(t *testing.T) {
	transport := NewTCPTransport("a", nil, DefaultConfig(), chatlog.NewDefault("a"))
	err := transport.Send("ghost", dmeproto.Message{Kind: dmeproto.KindRequest, Timestamp: 1, NodeID: "a"})
	assert.Error(t, err)
}

func TestSendToDeadPeerRetriesThenErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.DialTimeout = 50 * time.Millisecond

	transport := NewTCPTransport("a", []PeerAddr{{NodeID: "down", Host: "127.0.0.1", Port: 1}}, cfg, chatlog.NewDefault("a"))
	err := transport.Send("down", dmeproto.Message{Kind: dmeproto.KindRequest, Timestamp: 1, NodeID: "a"})
	assert.Error(t, err)
}

func TestListenerClosesConnectionOnMalformedLine(t *testing.T) {
	log := chatlog.NewDefault("b")
	dispatcher := newRecordingDispatcher()
	ln, err := Listen("127.0.0.1:0", dispatcher, log)
	require.NoError(t, err)
	defer ln.Close()
	go ln.Serve()

	conn, err := dialRaw(ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GARBAGE not a message\n"))
	require.NoError(t, err)

	// The connection should be closed by the listener; a subsequent
	// read returns EOF rather than hanging.
	buf := make([]byte, 1)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(buf)
	assert.Error(t, err)
}
