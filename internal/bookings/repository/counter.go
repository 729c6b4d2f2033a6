package repository

import (
	"context"
	"fmt"

	"tourbook/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterRepository hands out sequential numbers per key. Booking numbers use
// one counter per calendar month so sequences restart each period.
type CounterRepository interface {
	Next(ctx context.Context, key string) (int64, error)
}

type mongoCounterRepository struct {
	collection *mongo.Collection
}

func NewMongoCounterRepository(cfg *config.Config) CounterRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCounterRepository{
		collection: db.Collection("Counters"),
	}
}

// Next atomically increments and returns the counter for key, creating it at
// 1 on first use.
func (r *mongoCounterRepository) Next(ctx context.Context, key string) (int64, error) {
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": key}, update, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", key, err)
	}
	return counter.Seq, nil
}
