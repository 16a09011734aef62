package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user" validate:"required"`
	Author    *UserSummary       `json:"author,omitempty" bson:"author,omitempty"`
	Post      primitive.ObjectID `json:"post" bson:"post" validate:"required"`
	Text      string             `json:"text" bson:"text" validate:"required,max=2000"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RevokedToken marks a token as logged out until ExpiresAt. ID is the
// SHA-256 hex digest of the raw token.
type RevokedToken struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expiresAt"`
}
