package peertransport

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
	"github.com/sincronizacion-distribuida/chat-dme/internal/dmeproto"
)

// Dispatcher is the inbound half of the protocol engine (spec §4.3),
// implemented by dme.Node.
type Dispatcher interface {
	OnRequest(msg dmeproto.Message)
	OnReply(msg dmeproto.Message)
}

// Listener binds the configured TCP port and accepts peer connections
// (spec §4.5). A parse failure or short read closes only the offending
// connection; the listener itself keeps accepting.
type Listener struct {
	dispatcher Dispatcher
	log        *chatlog.Logger
	ln         net.Listener
}

// Listen binds addr and returns a Listener ready to Serve.
func Listen(addr string, dispatcher Dispatcher, log *chatlog.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{dispatcher: dispatcher, log: log, ln: ln}, nil
}

// Addr returns the bound address, useful when addr was ":0" in tests.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.ln.Close() }

// Serve accepts connections until the listener is closed.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Errorf("accept failed: %v", err)
			continue
		}
		go l.handleConn(conn)
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		msg, err := dmeproto.ReadMessage(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.log.Warnf("closing connection from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
		switch msg.Kind {
		case dmeproto.KindRequest:
			l.dispatcher.OnRequest(msg)
		case dmeproto.KindReply:
			l.dispatcher.OnReply(msg)
		}
	}
}
