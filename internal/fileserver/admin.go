package fileserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
)

// AdminRouter exposes a read-only HTTP mirror of the log
// (SUPPLEMENTED FEATURES: "File server VIEW over HTTP") plus a health
// check, styled after the teacher's gorilla/mux router and CORS
// middleware (MiltonAngamarca-Distribuidos/03-lock-distribuido/server/
// main.go: handleGetAsientos, handleHealthCheck).
func AdminRouter(store Store, log *chatlog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/log", func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.View(context.Background())
		if err != nil {
			log.Errorf("admin /log failed: %v", err)
			http.Error(w, "failed to read log", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"entries": entries})
	}).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
