package fileserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
)

// Server serves the line-delimited TCP protocol from spec §6:
// "POST <message>\n" and "VIEW\n". Grounded on
// sfurman3-chatroom/src/server/server.go's handleMaster command loop
// (bufio.NewReadWriter, strings.TrimSpace, a switch over the first
// token).
type Server struct {
	store Store
	log   *chatlog.Logger
	ln    net.Listener
}

// Listen binds addr and returns a Server ready to Serve.
func Listen(addr string, store Store, log *chatlog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{store: store, log: log, ln: ln}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close stops accepting new connections.
func (s *Server) Close() error { return s.ln.Close() }

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Errorf("accept failed: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warnf("closing connection from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		command := strings.TrimSpace(line)
		switch {
		case command == "VIEW":
			s.handleView(rw)
		case strings.HasPrefix(command, "POST "):
			s.handlePost(rw, strings.TrimPrefix(command, "POST "))
		default:
			s.log.Warnf("unrecognized command %q from %s", command, conn.RemoteAddr())
			return
		}

		if err := rw.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) handleView(rw *bufio.ReadWriter) {
	entries, err := s.store.View(context.Background())
	if err != nil {
		s.log.Errorf("VIEW failed: %v", err)
		rw.WriteString("ERROR\n")
		return
	}

	rw.WriteString("MESSAGES ")
	for i, e := range entries {
		if i > 0 {
			rw.WriteString(",")
		}
		rw.WriteString(strings.ReplaceAll(e.Content, ",", "\\,"))
	}
	rw.WriteString("\n")
}

func (s *Server) handlePost(rw *bufio.ReadWriter, content string) {
	if _, err := s.store.Append(context.Background(), content); err != nil {
		s.log.Errorf("POST failed: %v", err)
		rw.WriteString("ERROR\n")
		return
	}
	rw.WriteString("OK\n")
}
