// Command dme-node runs a single participant in the Ricart-Agrawala
// mutual-exclusion ring: it holds the DME core, listens for peer
// REQUEST/REPLY traffic, serves a health/status admin endpoint, and
// drives an interactive post/view CLI against the file server.
// Grounded on the teacher's main.go (MiltonAngamarca-Distribuidos/
// 03-lock-distribuido/server/main.go), which wires the same pieces
// (gorilla/mux admin router + the Node + peer dialing) from env vars
// instead of a JSON config file.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatclient"
	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
	"github.com/sincronizacion-distribuida/chat-dme/internal/config"
	"github.com/sincronizacion-distribuida/chat-dme/internal/dme"
	"github.com/sincronizacion-distribuida/chat-dme/internal/peertransport"
	"github.com/sincronizacion-distribuida/chat-dme/internal/repl"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := chatlog.NewDefault(cfg.NodeID)
	if err := run(cfg, log); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(cfg *config.Config, log *chatlog.Logger) error {
	peerAddrs := make([]peertransport.PeerAddr, 0, len(cfg.Peers))
	peerIDs := make([]string, 0, len(cfg.Peers))
	for _, p := range cfg.Peers {
		peerAddrs = append(peerAddrs, peertransport.PeerAddr{NodeID: p.NodeID, Host: p.Host, Port: p.Port})
		peerIDs = append(peerIDs, p.NodeID)
	}

	transport := peertransport.NewTCPTransport(cfg.NodeID, peerAddrs, peertransport.DefaultConfig(), log)
	node := dme.NewNode(cfg.NodeID, peerIDs, transport, log)

	listenAddr := fmt.Sprintf("0.0.0.0:%d", cfg.ListenPort)
	listener, err := peertransport.Listen(listenAddr, node, log)
	if err != nil {
		return fmt.Errorf("dme-node: binding peer listener on %s: %w", listenAddr, err)
	}
	defer listener.Close()
	go func() {
		if err := listener.Serve(); err != nil {
			log.Errorf("peer listener stopped: %v", err)
		}
	}()
	log.Infof("listening for peers on %s", listenAddr)

	if cfg.AdminAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.AdminAddr, dme.AdminRouter(node)); err != nil {
				log.Errorf("admin server stopped: %v", err)
			}
		}()
		log.Infof("admin surface listening on %s", cfg.AdminAddr)
	}

	client := chatclient.New(cfg.FileServer)
	cli := repl.New(node, client, os.Stdin, os.Stdout, log)
	return cli.Run()
}
