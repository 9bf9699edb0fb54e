package fileserver

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
)

func startTestServer(t *testing.T) (*Server, net.Conn) {
	t.Helper()
	store := NewMemoryStore()
	srv, err := Listen("127.0.0.1:0", store, chatlog.NewDefault("fs"))
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return srv, conn
}

func TestPostThenView(t *testing.T) {
	_, conn := startTestServer(t)
	r := bufio.NewReader(conn)

	conn.SetDeadline(time.Now().Add(2 * time.Second))
	_, err := conn.Write([]byte("POST hello world\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "OK\n", line)

	_, err = conn.Write([]byte("VIEW\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "MESSAGES hello world\n", line)
}

func TestViewOnEmptyLog(t *testing.T) {
	_, conn := startTestServer(t)
	r := bufio.NewReader(conn)

	conn.SetDeadline(time.Now().Add(2 * time.Second))
	_, err := conn.Write([]byte("VIEW\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "MESSAGES \n", line)
}
