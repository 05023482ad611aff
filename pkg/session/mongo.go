package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI         string
	Database    string // default "sketchstack"
	Collection  string // default "sessions"
	TTL         time.Duration
	MaxSessions int
}

// mongoDoc is the stored form of a session. The session itself is kept as
// its JSON encoding so plan types need no BSON mapping.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// MongoStore keeps sessions in a MongoDB collection. A TTL index on
// expiresAt lets the server delete expired documents on its own.
type MongoStore struct {
	client *mongo.Client
	owned  bool
	coll   *mongo.Collection
	ttl    time.Duration
	max    int
	now    func() time.Time
}

// NewMongoStore connects to MongoDB, pings it and ensures the indexes.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s, err := NewMongoStoreFromClient(ctx, client, cfg)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. Close leaves the client
// connected.
func NewMongoStoreFromClient(ctx context.Context, client *mongo.Client, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "sketchstack"
	}
	if cfg.Collection == "" {
		cfg.Collection = "sessions"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	s := &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		ttl:    cfg.TTL,
		max:    cfg.MaxSessions,
		now:    time.Now,
	}
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "updatedAt", Value: 1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create session indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Session, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get session: %w", err)
	}
	// The TTL monitor runs about once a minute, so expiry is checked here too.
	if s.now().After(doc.ExpiresAt) {
		return nil, nil
	}
	return decode(doc.Data)
}

// Set upserts sess and evicts the least recently updated sessions beyond
// the size cap.
func (s *MongoStore) Set(ctx context.Context, sess *Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	now := s.now()
	expires := now.Add(s.ttl)
	if !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(expires) {
		expires = sess.ExpiresAt
	}
	doc := mongoDoc{ID: sess.ID, Data: data, UpdatedAt: now, ExpiresAt: expires}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": sess.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo set session: %w", err)
	}
	return s.trim(ctx)
}

func (s *MongoStore) trim(ctx context.Context) error {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("mongo count sessions: %w", err)
	}
	over := n - int64(s.max)
	if over <= 0 {
		return nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: 1}}).
		SetLimit(over).
		SetProjection(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("mongo find oldest sessions: %w", err)
	}
	var oldest []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &oldest); err != nil {
		return fmt.Errorf("mongo read oldest sessions: %w", err)
	}
	ids := make([]string, len(oldest))
	for i, d := range oldest {
		ids[i] = d.ID
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("mongo evict sessions: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete session: %w", err)
	}
	return nil
}

// Cleanup deletes expired documents the TTL monitor has not reached yet.
func (s *MongoStore) Cleanup(ctx context.Context) (int, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": s.now()}})
	if err != nil {
		return 0, fmt.Errorf("mongo cleanup sessions: %w", err)
	}
	return int(res.DeletedCount), nil
}

// Close disconnects if the store opened the connection.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
