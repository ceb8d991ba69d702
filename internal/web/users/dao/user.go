package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/files-manager/internal/web/users/model"
	"github.com/Laisky/files-manager/library/db/mongo"
)

// SetupIndexes creates the unique index on email. Uniqueness lives in the
// store's write path so concurrent registrations of the same email cannot
// both pass a pre-check.
func (d *Users) SetupIndexes(ctx context.Context) error {
	if _, err := d.GetUsersCol().Indexes().CreateOne(ctx, mongoLib.IndexModel{
		Keys: bson.M{
			"email": 1,
		},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "create index for email")
	}

	return nil
}

// CreateUser inserts a new user. A duplicate email is reported as
// model.ErrEmailTaken.
func (d *Users) CreateUser(ctx context.Context, user *model.User) error {
	if _, err := d.GetUsersCol().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKey(err) {
			return errors.WithStack(model.ErrEmailTaken)
		}

		return errors.Wrapf(err, "insert user %q", user.Email)
	}

	d.logger.Info("insert new user", zap.String("email", user.Email))
	return nil
}

// GetUserByEmail loads a user by login email.
func (d *Users) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := new(model.User)
	if err := d.GetUsersCol().
		FindOne(ctx, bson.D{{Key: "email", Value: email}}).
		Decode(user); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrUserNotFound)
		}

		return nil, errors.Wrapf(err, "find user %q", email)
	}

	return user, nil
}

// GetUserByID loads a user by object id.
func (d *Users) GetUserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user := new(model.User)
	if err := d.GetUsersCol().
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}).
		Decode(user); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrUserNotFound)
		}

		return nil, errors.Wrapf(err, "find user %q", id.Hex())
	}

	return user, nil
}

// CountUsers returns the number of registered users.
func (d *Users) CountUsers(ctx context.Context) (int64, error) {
	cnt, err := d.GetUsersCol().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "count users")
	}

	return cnt, nil
}
