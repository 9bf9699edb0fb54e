// Package dme implements the Ricart-Agrawala critical-section controller:
// per-node state, the protocol engine's decision logic on inbound
// REQUEST/REPLY, and the acquire()/release() API consumed by the chat
// CLI. The CS state, request key, reply set and deferred set live behind
// the single mutex mu. The logical clock carries its own mutex: OnRequest
// and OnReply observe incoming timestamps, and sendReply ticks for each
// REPLY, without holding mu. This is grounded directly on
// the teacher's Node type (MiltonAngamarca-Distribuidos/
// 03-lock-distribuido/server/ricart_agrawala.go), generalized from HTTP
// broadcast to the spec's raw TCP REQUEST/REPLY transport and from a
// channel-signaled gate to the condition variable spec §4.4 calls for.
package dme

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
	"github.com/sincronizacion-distribuida/chat-dme/internal/dmeproto"
	"github.com/sincronizacion-distribuida/chat-dme/internal/logical"
)

// Sender delivers a single message to a named peer. Implementations
// (internal/peertransport) own retry/backoff per spec §4.2; Node never
// calls Sender while mu is held (spec §5).
type Sender interface {
	Send(peerID string, msg dmeproto.Message) error
}

// Snapshot is a read-only view of a Node's state, used by the admin
// surface (SPEC_FULL §"Health/status introspection"). It is never used
// to drive protocol decisions.
type Snapshot struct {
	NodeID         string
	State          State
	Clock          logical.Timestamp
	RequestKey     RequestKey
	DeferredCount  int
	RepliesWaiting int
}

// Node holds the per-node DME variables and implements acquire()/
// release() (spec §4.4) and the inbound REQUEST/REPLY decision logic
// (spec §4.3).
type Node struct {
	id     string
	peers  []string
	clock  *logical.Clock
	sender Sender
	log    *chatlog.Logger

	mu   sync.Mutex
	cond *sync.Cond

	state           State
	myRequestKey    RequestKey
	repliesReceived map[string]struct{}
	deferred        map[string]struct{}
}

// NewNode creates a Node for id with the given fixed peer set. peers must
// not contain id (spec §6, "startup misconfiguration" is rejected by the
// config loader before a Node is ever constructed).
func NewNode(id string, peers []string, sender Sender, log *chatlog.Logger) *Node {
	n := &Node{
		id:              id,
		peers:           append([]string(nil), peers...),
		clock:           logical.NewClock(),
		sender:          sender,
		log:             log,
		state:           Released,
		repliesReceived: make(map[string]struct{}),
		deferred:        make(map[string]struct{}),
	}
	n.cond = sync.NewCond(&n.mu)
	return n
}

// Clock exposes the node's logical clock. Its methods are safe for
// concurrent use.
func (n *Node) Clock() *logical.Clock { return n.clock }

// Acquire blocks the caller until the node has collected a REPLY from
// every peer, then enters HELD. Panics with ErrDoubleAcquire if called
// while not RELEASED (spec §4.4, §7).
func (n *Node) Acquire() {
	n.mu.Lock()
	if n.state != Released {
		n.mu.Unlock()
		panic(ErrDoubleAcquire)
	}

	ts := n.clock.TickForSend()
	n.myRequestKey = RequestKey{Timestamp: ts, NodeID: n.id}
	n.state = Requested
	n.repliesReceived = make(map[string]struct{}, len(n.peers))
	peers := append([]string(nil), n.peers...)
	n.mu.Unlock()

	if len(peers) == 0 {
		n.mu.Lock()
		n.state = Held
		n.mu.Unlock()
		return
	}

	req := dmeproto.Message{Kind: dmeproto.KindRequest, Timestamp: ts, NodeID: n.id}
	n.fanout(peers, req)

	n.mu.Lock()
	for len(n.repliesReceived) < len(n.peers) {
		n.cond.Wait()
	}
	n.state = Held
	n.mu.Unlock()
}

// Release flushes every deferred REPLY and returns the node to RELEASED.
// Panics with ErrReleaseWithoutAcquire if called while not HELD (spec
// §4.4, §7).
func (n *Node) Release() {
	n.mu.Lock()
	if n.state != Held {
		n.mu.Unlock()
		panic(ErrReleaseWithoutAcquire)
	}
	n.state = Released
	n.myRequestKey = RequestKey{}

	toNotify := make([]string, 0, len(n.deferred))
	for peerID := range n.deferred {
		toNotify = append(toNotify, peerID)
	}
	n.deferred = make(map[string]struct{})
	n.mu.Unlock()

	for _, peerID := range toNotify {
		n.sendReply(peerID)
	}
}

// OnRequest implements the inbound REQUEST decision rule (spec §4.3).
func (n *Node) OnRequest(msg dmeproto.Message) {
	n.clock.Observe(msg.Timestamp)
	incoming := RequestKey{Timestamp: msg.Timestamp, NodeID: msg.NodeID}

	n.mu.Lock()
	shouldDefer := n.state == Held || (n.state == Requested && n.myRequestKey.Less(incoming))
	if shouldDefer {
		n.deferred[msg.NodeID] = struct{}{}
	}
	n.mu.Unlock()

	if !shouldDefer {
		n.sendReply(msg.NodeID)
	}
}

// OnReply implements the inbound REPLY accounting rule (spec §4.3). A
// REPLY arriving while not REQUESTED is a protocol anomaly: logged and
// discarded.
func (n *Node) OnReply(msg dmeproto.Message) {
	n.clock.Observe(msg.Timestamp)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != Requested {
		n.log.Warnf("discarding late REPLY from %s while state=%s", msg.NodeID, n.state)
		return
	}
	n.repliesReceived[msg.NodeID] = struct{}{}
	if len(n.repliesReceived) >= len(n.peers) {
		n.cond.Broadcast()
	}
}

// Status returns a consistent snapshot for the admin surface.
func (n *Node) Status() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Snapshot{
		NodeID:         n.id,
		State:          n.state,
		Clock:          n.clock.Read(),
		RequestKey:     n.myRequestKey,
		DeferredCount:  len(n.deferred),
		RepliesWaiting: len(n.peers) - len(n.repliesReceived),
	}
}

// fanout sends msg to every peer concurrently, outside mu (spec §5: "the
// correctness proof is unaffected because the messages carry the
// timestamp captured under M"). Send failures are logged; a permanently
// unreachable peer simply never contributes a REPLY, which is the
// accepted degradation spec §4.2/§7 describe for the fixed-membership
// model — it does not abort the in-flight acquire().
func (n *Node) fanout(peers []string, msg dmeproto.Message) {
	var g errgroup.Group
	for _, peerID := range peers {
		peerID := peerID
		g.Go(func() error {
			if err := n.sender.Send(peerID, msg); err != nil {
				n.log.Errorf("failed to send %s to %s: %v", msg.Kind, peerID, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (n *Node) sendReply(peerID string) {
	ts := n.clock.TickForSend()
	reply := dmeproto.Message{Kind: dmeproto.KindReply, Timestamp: ts, NodeID: n.id}
	if err := n.sender.Send(peerID, reply); err != nil {
		n.log.Errorf("failed to send REPLY to %s: %v", peerID, err)
	}
}
