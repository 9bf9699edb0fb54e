// Package fileserver implements the out-of-scope file server described
// in spec §1/§6: a trivial TCP request/response service exposing
// VIEW/POST against an append-only chat log. The DME core only ever
// calls a "commit(message)" against it (via internal/chatclient); this
// package is the server side the core never imports, built here for
// completeness per SPEC_FULL.md.
//
// Persistence is grounded on the teacher's MongoDB usage
// (MiltonAngamarca-Distribuidos/03-lock-distribuido/server/main.go:
// mongo.Connect + options.Client().ApplyURI), and the Store interface
// shape on chaitanyaphalak-go-mcast/pkg/mcast/types/storage.go's
// Set/Get pair.
package fileserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry is one appended chat line.
type Entry struct {
	Seq       int64     `bson:"seq" json:"seq"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Store is the append-only log backing VIEW/POST.
type Store interface {
	Append(ctx context.Context, content string) (Entry, error)
	View(ctx context.Context) ([]Entry, error)
}

// MongoStore persists the log in MongoDB, mirroring the teacher's
// collection-per-resource pattern (their "seats" collection becomes a
// "messages" collection here).
type MongoStore struct {
	collection *mongo.Collection
	mu         sync.Mutex
	nextSeq    int64
}

// NewMongoStore connects to mongoURI and returns a Store backed by
// database/collection.
func NewMongoStore(ctx context.Context, mongoURI, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("fileserver: connecting to mongo: %w", err)
	}
	col := client.Database(database).Collection(collection)

	store := &MongoStore{collection: col}
	count, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("fileserver: counting existing entries: %w", err)
	}
	store.nextSeq = count
	return store, nil
}

// Append inserts a new entry at the tail of the log.
func (s *MongoStore) Append(ctx context.Context, content string) (Entry, error) {
	s.mu.Lock()
	seq := s.nextSeq
	s.nextSeq++
	s.mu.Unlock()

	entry := Entry{Seq: seq, Content: content, CreatedAt: time.Now()}
	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("fileserver: appending entry: %w", err)
	}
	return entry, nil
}

// View returns every entry in append order.
func (s *MongoStore) View(ctx context.Context) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("fileserver: querying entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("fileserver: decoding entries: %w", err)
	}
	return entries, nil
}

// MemoryStore is an in-process Store used by tests, and as a
// quick-start mode that does not require a MongoDB instance.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, content string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := Entry{Seq: int64(len(s.entries)), Content: content, CreatedAt: time.Now()}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *MemoryStore) View(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
