package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/psulibraries/rmdlink/pkg/httputil"
)

// Default MongoDB locations used by [DialMongo] when none are given.
const (
	DefaultMongoDatabase   = "rmdlink"
	DefaultMongoCollection = "cache"
)

// MongoStore keeps entries as documents in one MongoDB collection:
//
//	{_id: key, data: <bytes>, expires_at: <date>, tags: [...]}
//
// A TTL index on expires_at lets the server reap expired documents; reads also
// filter on expires_at because the TTL monitor only runs once a minute.
type MongoStore struct {
	coll   *mongo.Collection
	client *mongo.Client // set when the store owns the connection
	now    func() time.Time
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	Tags      []string   `bson:"tags,omitempty"`
}

// NewMongoStore wraps an existing collection. Call [MongoStore.EnsureIndexes]
// once before use.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll, now: time.Now}
}

// DialMongo connects to uri, verifies the connection with retries, and
// prepares database.collection for use. Empty names select the defaults.
func DialMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not configure mongo cache: %w", err)
	}
	err = httputil.RetryWithBackoff(ctx, func() error {
		return httputil.Retryable(client.Ping(ctx, readpref.Primary()))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("could not connect to mongo cache: %w", err)
	}

	s := NewMongoStore(client.Database(database).Collection(collection))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the expiry TTL index and the tag index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create mongo cache indexes: %w", err)
	}
	return nil
}

// Get retrieves a value from MongoDB.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoEntry
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if doc.ExpiresAt != nil && s.now().After(*doc.ExpiresAt) {
		return nil, false, nil
	}
	return doc.Data, true, nil
}

// Set upserts the document for key.
func (s *MongoStore) Set(ctx context.Context, key string, data []byte, expiresAt time.Time, tags []string) error {
	doc := mongoEntry{
		Key:  key,
		Data: data,
		Tags: normalizeTags(tags),
	}
	if !expiresAt.IsZero() {
		exp := expiresAt.UTC()
		doc.ExpiresAt = &exp
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete removes the document for key.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}

// InvalidateTags deletes every document whose tags intersect tags.
func (s *MongoStore) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return 0, nil
	}
	res, err := s.coll.DeleteMany(ctx, bson.D{
		{Key: "tags", Value: bson.D{{Key: "$in", Value: tags}}},
	})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// Close disconnects the client if the store opened it.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
