// Package chatclient is the only thing the chat CLI needs from the file
// server (spec §1: "the core consumes only a commit(message) call
// against it"). Grounded on sfurman3-chatroom/src/server/server.go's
// broadcast() dialer and the teacher's sendMessage, applied here to the
// file server's own POST/VIEW line protocol (spec §6) instead of the DME
// REQUEST/REPLY protocol. Each call dials once; failures are returned
// without a retry.
package chatclient

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// Client talks the file server's line protocol: "POST <message>\n" and
// "VIEW\n".
type Client struct {
	addr    string
	timeout time.Duration
}

// New returns a Client dialing addr on demand for each call.
func New(addr string) *Client {
	return &Client{addr: addr, timeout: 5 * time.Second}
}

// Commit posts message to the file server's log. The caller is expected
// to already hold the DME critical section (spec §6: "between them, the
// CLI issues a POST to the file server").
func (c *Client) Commit(message string) error {
	conn, rw, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := rw.WriteString("POST " + message + "\n"); err != nil {
		return fmt.Errorf("chatclient: writing POST: %w", err)
	}
	if err := rw.Flush(); err != nil {
		return fmt.Errorf("chatclient: flushing POST: %w", err)
	}

	reply, err := rw.ReadString('\n')
	if err != nil {
		return fmt.Errorf("chatclient: reading POST reply: %w", err)
	}
	if strings.TrimSpace(reply) != "OK" {
		return fmt.Errorf("chatclient: file server rejected POST: %s", strings.TrimSpace(reply))
	}
	return nil
}

// View returns the file server's current log, split on the comma
// delimiter the server uses to join entries; an escaped "\," inside an
// entry is turned back into a comma. View never touches the DME
// core (spec §8 S5: "View does not block post").
func (c *Client) View() ([]string, error) {
	conn, rw, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := rw.WriteString("VIEW\n"); err != nil {
		return nil, fmt.Errorf("chatclient: writing VIEW: %w", err)
	}
	if err := rw.Flush(); err != nil {
		return nil, fmt.Errorf("chatclient: flushing VIEW: %w", err)
	}

	reply, err := rw.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("chatclient: reading VIEW reply: %w", err)
	}
	reply = strings.TrimRight(reply, "\r\n")
	reply = strings.TrimPrefix(reply, "MESSAGES ")
	if reply == "" {
		return nil, nil
	}
	var entries []string
	var cur strings.Builder
	for i := 0; i < len(reply); i++ {
		switch {
		case reply[i] == '\\' && i+1 < len(reply) && reply[i+1] == ',':
			cur.WriteByte(',')
			i++
		case reply[i] == ',':
			entries = append(entries, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(reply[i])
		}
	}
	return append(entries, cur.String()), nil
}

func (c *Client) dial() (net.Conn, *bufio.ReadWriter, error) {
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("chatclient: dialing %s: %w", c.addr, err)
	}
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	return conn, rw, nil
}
