package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `{
		"node_id": "a",
		"listen_port": 9001,
		"peers": [{"node_id": "b", "host": "127.0.0.1", "port": 9002}],
		"file_server_addr": "127.0.0.1:9100"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.NodeID)
	assert.Len(t, cfg.Peers, 1)
}

func TestValidateRejectsMissingNodeID(t *testing.T) {
	cfg := Config{ListenPort: 1, Peers: []PeerConfig{{NodeID: "b", Host: "h", Port: 1}}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyPeers(t *testing.T) {
	cfg := Config{NodeID: "a", ListenPort: 1}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsSelfInPeers(t *testing.T) {
	cfg := Config{
		NodeID:     "a",
		ListenPort: 1,
		Peers:      []PeerConfig{{NodeID: "a", Host: "h", Port: 1}},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicatePeers(t *testing.T) {
	cfg := Config{
		NodeID:     "a",
		ListenPort: 1,
		Peers: []PeerConfig{
			{NodeID: "b", Host: "h1", Port: 1},
			{NodeID: "b", Host: "h2", Port: 2},
		},
	}
	assert.Error(t, cfg.Validate())
}
