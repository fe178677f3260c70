package repositories

import (
	"context"
	"fmt"

	"tokoshop/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityCollection = "order_activity"

// MongoActivityRepository keeps the order event feed in MongoDB.
type MongoActivityRepository struct {
	coll *mongo.Collection
}

func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{coll: db.Collection(activityCollection)}
}

func (r *MongoActivityRepository) Record(ctx context.Context, activity *models.OrderActivity) error {
	res, err := r.coll.InsertOne(ctx, activity)
	if err != nil {
		return fmt.Errorf("failed to record order activity: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		activity.ID = id
	}
	return nil
}

func (r *MongoActivityRepository) Recent(ctx context.Context, limit int) ([]models.OrderActivity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list order activity: %w", err)
	}
	activity := []models.OrderActivity{}
	if err := cur.All(ctx, &activity); err != nil {
		return nil, fmt.Errorf("failed to decode order activity: %w", err)
	}
	return activity, nil
}
