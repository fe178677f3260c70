package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite is a user-to-product bookmark stored in MongoDB.
type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	ProductID string             `bson:"product_id" json:"product_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// FavoriteWithProduct pairs a favorite with its product.
type FavoriteWithProduct struct {
	Favorite
	Product Product `json:"product"`
}

// ProductFavoriteCount is how many users favorited a product.
type ProductFavoriteCount struct {
	ProductID string `bson:"_id" json:"product_id"`
	Count     int64  `bson:"count" json:"count"`
}

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Subject   string             `bson:"subject" json:"subject" validate:"required,min=3,max=200"`
	Message   string             `bson:"message" json:"message" validate:"required,min=10,max=5000"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// OrderActivity is one entry of the order event feed.
type OrderActivity struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID    string             `bson:"order_id" json:"order_id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	Type       string             `bson:"type" json:"type"`
	Status     string             `bson:"status" json:"status"`
	Total      string             `bson:"total" json:"total"`
	OccurredAt time.Time          `bson:"occurred_at" json:"occurred_at"`
}
