package health

import (
	"context"
	"errors"
	"time"

	"tourbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Service_health"

// MongoStore persists health records so the circuit state is shared across
// processes. Every mutation is a single findOneAndUpdate, which keeps
// concurrent reporters from losing increments.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection(CollectionName),
	}
}

func (s *MongoStore) RecordFailure(ctx context.Context, name string, at time.Time) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var rec model.ServiceHealthRecord
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{
			"$inc": bson.M{"consecutive_failures": 1},
			"$set": bson.M{"last_failure_at": at},
		},
		opts,
	).Decode(&rec)
	if err != nil {
		return 0, err
	}
	return rec.ConsecutiveFailures, nil
}

func (s *MongoStore) RecordSuccess(ctx context.Context, name string, at time.Time) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{
			"$set": bson.M{
				"consecutive_failures": 0,
				"last_success_at":      at,
			},
		},
		opts,
	)
	return err
}

func (s *MongoStore) Failures(ctx context.Context, name string) (int, error) {
	var rec model.ServiceHealthRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return rec.ConsecutiveFailures, nil
}

func (s *MongoStore) All(ctx context.Context) ([]model.ServiceHealthRecord, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.ServiceHealthRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
