package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/authenticator/pkg/registry"
)

var _ registry.KV = (*KV)(nil)

// KV implements registry.KV with one document per key: {_id: key, value: <binary>}.
type KV struct {
	coll *mongo.Collection
}

func NewKV(coll *mongo.Collection) *KV {
	return &KV{coll: coll}
}

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Get returns (nil, nil) when no document has the key.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToGetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return doc.Value, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "value", Value: value},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	_, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: key}}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrFailedToSetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return errors.Join(ErrFailedToDeleteValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}
