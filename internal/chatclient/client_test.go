package chatclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
	"github.com/sincronizacion-distribuida/chat-dme/internal/fileserver"
)

func TestCommitAndView(t *testing.T) {
	store := fileserver.NewMemoryStore()
	srv, err := fileserver.Listen("127.0.0.1:0", store, chatlog.NewDefault("fs"))
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	client := New(srv.Addr().String())
	require.NoError(t, client.Commit("hello"))
	require.NoError(t, client.Commit("world"))

	entries, err := client.View()
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, entries)
}
