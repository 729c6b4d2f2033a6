package repository

import (
	"context"
	"fmt"
	"time"

	"tourbook/pkg/config"
	"tourbook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TimelineRepository is the append-only audit trail per booking.
type TimelineRepository interface {
	Append(ctx context.Context, event *model.TimelineEvent) error
	FindByBooking(ctx context.Context, bookingID string) ([]*model.TimelineEvent, error)
}

type mongoTimelineRepository struct {
	collection *mongo.Collection
}

func NewMongoTimelineRepository(cfg *config.Config) TimelineRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTimelineRepository{
		collection: db.Collection("Booking_timeline"),
	}
}

func (r *mongoTimelineRepository) Append(ctx context.Context, event *model.TimelineEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to append timeline event: %w", err)
	}
	return nil
}

func (r *mongoTimelineRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.TimelineEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find timeline events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.TimelineEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode timeline events: %w", err)
	}
	return events, nil
}
