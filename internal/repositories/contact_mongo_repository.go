package repositories

import (
	"context"
	"fmt"
	"time"

	"tokoshop/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const contactsCollection = "contact_messages"

// MongoContactRepository keeps contact-form messages in MongoDB.
type MongoContactRepository struct {
	coll *mongo.Collection
}

func NewMongoContactRepository(db *mongo.Database) *MongoContactRepository {
	return &MongoContactRepository{coll: db.Collection(contactsCollection)}
}

func (r *MongoContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to store contact message: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return nil
}

func (r *MongoContactRepository) List(ctx context.Context, unreadOnly bool, page models.Page) ([]models.ContactMessage, int64, error) {
	page = page.Normalize()
	filter := bson.M{}
	if unreadOnly {
		filter["is_read"] = false
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contact messages: %w", err)
	}
	messages := []models.ContactMessage{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, 0, fmt.Errorf("failed to decode contact messages: %w", err)
	}
	return messages, total, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return oid, nil
}

func (r *MongoContactRepository) MarkRead(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark contact message read: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("contact message %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoContactRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete contact message: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("contact message %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoContactRepository) CountUnread(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"is_read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}
