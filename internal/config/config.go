// Package config parses and validates the startup configuration
// enumerated in spec §6: node_id, listen_port, peers. Grounded on the
// teacher's env-var parsing (main.go: SERVER_ID/PEERS/PORT, rejecting a
// missing value) and sfurman3-chatroom/server.go's flag-based positional
// parsing with a "missing argument" checklist — this repo's version
// reads a JSON file (to carry a structured peer list) whose path is
// selected by a flag, rather than ad hoc positional arguments.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

// PeerConfig is one entry of the peers list (spec §3: peer descriptor).
type PeerConfig struct {
	NodeID string `json:"node_id"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
}

// Config is the full startup configuration for a DME node.
type Config struct {
	NodeID     string       `json:"node_id"`
	ListenPort int          `json:"listen_port"`
	Peers      []PeerConfig `json:"peers"`
	FileServer string       `json:"file_server_addr"`
	AdminAddr  string       `json:"admin_addr"`
}

// Load reads and validates a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces spec §6's startup constraints: node_id set, peers
// set, peers must not contain node_id, and peer ids must be unique.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("config: node_id must be set")
	}
	if c.ListenPort <= 0 {
		return fmt.Errorf("config: listen_port must be set")
	}
	if len(c.Peers) == 0 {
		return fmt.Errorf("config: peers must be set")
	}

	seen := make(map[string]struct{}, len(c.Peers))
	for _, p := range c.Peers {
		if p.NodeID == c.NodeID {
			return fmt.Errorf("config: peers must not contain node_id %q", c.NodeID)
		}
		if _, dup := seen[p.NodeID]; dup {
			return fmt.Errorf("config: duplicate peer node_id %q", p.NodeID)
		}
		seen[p.NodeID] = struct{}{}
	}
	return nil
}

// ParseFlags parses the -config flag (path to a JSON config file) from
// args and loads it. Kept separate from Load so tests can exercise
// Load/Validate without touching the process's real argv.
func ParseFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("dme-node", flag.ContinueOnError)
	path := fs.String("config", "", "path to a JSON config file (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("config: -config is required")
	}
	return Load(*path)
}
