// Command fileserver runs the out-of-scope chat log service: a TCP
// VIEW/POST endpoint (spec §6) plus an HTTP admin mirror, backed by
// MongoDB when -mongo-uri is set and an in-process store otherwise.
// Grounded on the teacher's main.go (MiltonAngamarca-Distribuidos/
// 03-lock-distribuido/server/main.go: mongo.Connect + gorilla/mux
// wiring from env vars), generalized to flag-based configuration and
// the spec's own line protocol rather than HTTP CRUD.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/sincronizacion-distribuida/chat-dme/internal/chatlog"
	"github.com/sincronizacion-distribuida/chat-dme/internal/fileserver"
)

func main() {
	listenAddr := flag.String("listen", "0.0.0.0:9000", "address to serve the POST/VIEW protocol on")
	adminAddr := flag.String("admin", "0.0.0.0:9001", "address to serve the HTTP admin mirror on")
	mongoURI := flag.String("mongo-uri", "", "MongoDB connection URI (empty uses an in-process store)")
	mongoDB := flag.String("mongo-db", "chatdme", "MongoDB database name")
	mongoCollection := flag.String("mongo-collection", "messages", "MongoDB collection name")
	flag.Parse()

	log := chatlog.NewDefault("fileserver")
	if err := run(log, *listenAddr, *adminAddr, *mongoURI, *mongoDB, *mongoCollection); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(log *chatlog.Logger, listenAddr, adminAddr, mongoURI, mongoDB, mongoCollection string) error {
	store, err := openStore(log, mongoURI, mongoDB, mongoCollection)
	if err != nil {
		return err
	}

	srv, err := fileserver.Listen(listenAddr, store, log)
	if err != nil {
		return fmt.Errorf("fileserver: binding %s: %w", listenAddr, err)
	}
	defer srv.Close()

	go func() {
		if err := http.ListenAndServe(adminAddr, fileserver.AdminRouter(store, log)); err != nil {
			log.Errorf("admin server stopped: %v", err)
		}
	}()
	log.Infof("admin mirror listening on %s", adminAddr)

	log.Infof("serving POST/VIEW on %s", listenAddr)
	return srv.Serve()
}

func openStore(log *chatlog.Logger, mongoURI, database, collection string) (fileserver.Store, error) {
	if mongoURI == "" {
		log.Infof("no -mongo-uri given, using an in-process store")
		return fileserver.NewMemoryStore(), nil
	}
	store, err := fileserver.NewMongoStore(context.Background(), mongoURI, database, collection)
	if err != nil {
		return nil, fmt.Errorf("fileserver: connecting to mongo: %w", err)
	}
	return store, nil
}
