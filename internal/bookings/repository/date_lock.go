package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "tourbook/internal/bookings/errors"
	"tourbook/pkg/config"
	"tourbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DateLockRepository provides the advisory lock serializing booking creation
// per tour date. Acquisition is a unique-keyed insert; a TTL index on
// expires_at reclaims locks left behind by crashed processes.
type DateLockRepository interface {
	Acquire(ctx context.Context, lock *model.DateLock) error
	Release(ctx context.Context, lockID string) error
}

type mongoDateLockRepository struct {
	collection *mongo.Collection
}

func NewMongoDateLockRepository(cfg *config.Config) DateLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDateLockRepository{
		collection: db.Collection("Date_locks"),
	}
}

func (r *mongoDateLockRepository) Acquire(ctx context.Context, lock *model.DateLock) error {
	lock.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire date lock: %w", err)
	}
	return nil
}

func (r *mongoDateLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
