package dme

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// AdminRouter exposes read-only health/status introspection
// (SPEC_FULL.md "Health/status introspection"), generalizing the
// teacher's handleHealthCheck (MiltonAngamarca-Distribuidos/
// 03-lock-distribuido/server/main.go), which reported status, server_id,
// and the Lamport clock value. Status() takes the node's single mutex
// for a consistent read but is never called from acquire()/release()'s
// hot path.
func AdminRouter(node *Node) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		snap := node.Status()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"node_id":         snap.NodeID,
			"state":           snap.State.String(),
			"clock":           snap.Clock,
			"request_ts":      snap.RequestKey.Timestamp,
			"deferred_count":  snap.DeferredCount,
			"replies_waiting": snap.RepliesWaiting,
		})
	}).Methods(http.MethodGet)

	return r
}
