package queue

import (
	"context"
	"fmt"
	"time"

	"tourbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const operationsCollection = "Queued_operations"

// MongoRepository stores queued operations in MongoDB. Status transitions use
// a status-guarded replace so concurrent workers cannot both claim or both
// finish the same operation.
type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(operationsCollection),
	}
}

func (r *MongoRepository) Insert(ctx context.Context, op *model.QueuedOperation) error {
	if _, err := r.collection.InsertOne(ctx, op); err != nil {
		return fmt.Errorf("inserting queued operation: %w", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*model.QueuedOperation, error) {
	var op model.QueuedOperation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&op)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding queued operation: %w", err)
	}
	return &op, nil
}

// UpdateIfStatus replaces the document only while its stored status still
// matches expect. A miss means another worker transitioned it first.
func (r *MongoRepository) UpdateIfStatus(ctx context.Context, id string, expect model.OperationStatus, op *model.QueuedOperation) error {
	filter := bson.M{
		"_id":    id,
		"status": expect,
	}

	result, err := r.collection.ReplaceOne(ctx, filter, op)
	if err != nil {
		return fmt.Errorf("updating queued operation: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a lost race from a missing document.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

// Due lists pending operations whose next_retry_at has passed, oldest first
// so starved operations drain before fresh ones.
func (r *MongoRepository) Due(ctx context.Context, now time.Time, limit int) ([]*model.QueuedOperation, error) {
	filter := bson.M{
		"status":        model.OperationPending,
		"next_retry_at": bson.M{"$lte": now},
	}

	opts := options.Find().SetSort(bson.D{{Key: "next_retry_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing due operations: %w", err)
	}
	defer cursor.Close(ctx)

	var ops []*model.QueuedOperation
	if err := cursor.All(ctx, &ops); err != nil {
		return nil, fmt.Errorf("decoding due operations: %w", err)
	}
	return ops, nil
}

func (r *MongoRepository) Counts(ctx context.Context) (map[model.OperationStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("counting operations: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status model.OperationStatus `bson:"_id"`
		Count  int64                 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding operation counts: %w", err)
	}

	counts := make(map[model.OperationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
