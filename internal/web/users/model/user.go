package model

import (
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that owns files and sessions.
type User struct {
	// ID unique identifier for the user
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// CreatedAt registration time
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	// Email login account, unique across the collection
	Email string `bson:"email" json:"email"`
	// Password hashed password
	//
	//  `gcrypto.VerifyHashedPassword`
	Password string `bson:"password" json:"-"`
}

// GetID get id
func (u *User) GetID() string {
	return u.ID.Hex()
}

// NewUser create a new user
func NewUser() *User {
	return &User{
		ID:        primitive.NewObjectID(),
		CreatedAt: gutils.Clock.GetUTCNow(),
	}
}
