package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileType string

const (
	ProfilePublic  ProfileType = "Public"
	ProfilePrivate ProfileType = "Private"
)

func (p ProfileType) Valid() bool {
	return p == ProfilePublic || p == ProfilePrivate
}

const DefaultRole = "user"

type User struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	FirstName   string               `json:"firstName" bson:"firstName"`
	LastName    string               `json:"lastName" bson:"lastName"`
	Email       string               `json:"email" bson:"email"`
	Password    string               `json:"-" bson:"password"`
	ProfileType ProfileType          `json:"profileType" bson:"profileType"`
	Role        string               `json:"role" bson:"role"`
	IsActive    bool                 `json:"isActive" bson:"isActive"`
	Following   []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Summary is the populated form of a user reference.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		ProfileType: u.ProfileType,
	}
}

// UserSummary is what a post or comment carries after its user reference
// is expanded.
type UserSummary struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	FirstName   string             `json:"firstName" bson:"firstName"`
	LastName    string             `json:"lastName" bson:"lastName"`
	Email       string             `json:"email,omitempty" bson:"email,omitempty"`
	ProfileType ProfileType        `json:"profileType,omitempty" bson:"profileType,omitempty"`
}
