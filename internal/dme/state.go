package dme

import (
	"fmt"

	"github.com/sincronizacion-distribuida/chat-dme/internal/logical"
)

// State is the per-node critical-section state (spec §3).
type State int

const (
	Released State = iota
	Requested
	Held
)

func (s State) String() string {
	switch s {
	case Released:
		return "RELEASED"
	case Requested:
		return "REQUESTED"
	case Held:
		return "HELD"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// RequestKey is the (timestamp, node_id) pair that totally orders
// outstanding requests (spec §3). The zero value is not a valid key;
// it is only meaningful while State is Requested or Held.
type RequestKey struct {
	Timestamp logical.Timestamp
	NodeID    string
}

// Less implements the priority order: (t1,n1) < (t2,n2) iff t1 < t2, or
// t1 == t2 and n1 < n2 lexicographically.
func (k RequestKey) Less(other RequestKey) bool {
	if k.Timestamp != other.Timestamp {
		return k.Timestamp < other.Timestamp
	}
	return k.NodeID < other.NodeID
}
