package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoKV backs the stores with a MongoDB collection, one document per
// key. Expired entries are filtered on read; the TTL index created by
// EnsureIndexes reaps them in the background.
type MongoKV struct {
	col *mongo.Collection
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func NewMongoKV(db *mongo.Database) *MongoKV {
	return &MongoKV{col: db.Collection("kv_entries")}
}

// EnsureIndexes creates the TTL index on expires_at. Safe to call on
// every startup.
func (m *MongoKV) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

func (m *MongoKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// The TTL reaper runs periodically, so an expired document may still
	// be present; treat it as gone.
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (m *MongoKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	fields := bson.M{"value": value, "updated_at": now}
	if ttl > 0 {
		fields["expires_at"] = now.Add(ttl)
	} else {
		fields["expires_at"] = nil
	}
	filter := bson.M{"_id": key}
	update := bson.M{"$set": fields}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoKV) Delete(ctx context.Context, key string) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
