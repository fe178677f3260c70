package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokoshop/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const favoritesCollection = "favorites"

// MongoFavoriteRepository keeps favorites in a MongoDB collection.
type MongoFavoriteRepository struct {
	coll *mongo.Collection
}

func NewMongoFavoriteRepository(db *mongo.Database) *MongoFavoriteRepository {
	return &MongoFavoriteRepository{coll: db.Collection(favoritesCollection)}
}

// EnsureIndexes creates the unique (user_id, product_id) index.
func (r *MongoFavoriteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_product_unique"),
		},
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create favorite indexes: %w", err)
	}
	return nil
}

func (r *MongoFavoriteRepository) Add(ctx context.Context, fav *models.Favorite) error {
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, fav)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("favorite %s/%s: %w", fav.UserID, fav.ProductID, ErrDuplicate)
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		fav.ID = id
	}
	return nil
}

func (r *MongoFavoriteRepository) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("favorite %s/%s: %w", userID, productID, ErrNotFound)
	}
	return nil
}

func (r *MongoFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	favorites := []models.Favorite{}
	if err := cur.All(ctx, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	return favorites, nil
}

func (r *MongoFavoriteRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up favorite: %w", err)
	}
	return true, nil
}

// TopProducts returns the most favorited products, highest count first.
func (r *MongoFavoriteRepository) TopProducts(ctx context.Context, limit int) ([]models.ProductFavoriteCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$product_id"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate favorites: %w", err)
	}
	counts := []models.ProductFavoriteCount{}
	if err := cur.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode favorite counts: %w", err)
	}
	return counts, nil
}
