// Package service implements registration, credential verification and
// session tokens.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	gcrypto "github.com/Laisky/go-utils/v6/crypto"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/users/model"
)

// UserDao persists user records.
type UserDao interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// SessionStore is the TTL-bound token -> userID mapping.
type SessionStore interface {
	SetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	GetToken(ctx context.Context, token string) (userID string, err error)
	DelToken(ctx context.Context, token string) error
}

// TaskQueue accepts background work for external consumers.
type TaskQueue interface {
	AddUserEmailTask(ctx context.Context, userID string) (taskID string, err error)
}

// Users service type
type Users struct {
	logger   glog.Logger
	dao      UserDao
	sessions SessionStore
	queue    TaskQueue
	tokenTTL time.Duration
}

// New create new service
func New(logger glog.Logger,
	dao UserDao,
	sessions SessionStore,
	queue TaskQueue,
	tokenTTL time.Duration,
) *Users {
	return &Users{
		logger:   logger,
		dao:      dao,
		sessions: sessions,
		queue:    queue,
		tokenTTL: tokenTTL,
	}
}

// Register creates a new user. Duplicate emails are rejected by the
// store's unique index, not by a pre-check.
func (s *Users) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.WithStack(model.ErrMissingEmail)
	}
	if password == "" {
		return nil, errors.WithStack(model.ErrMissingPassword)
	}

	pwd, err := gcrypto.PasswordHash([]byte(password), gutils.HashTypeSha256)
	if err != nil {
		return nil, errors.Wrapf(err, "generate password hash for %q", email)
	}

	user := model.NewUser()
	user.Email = email
	user.Password = pwd

	if err = s.dao.CreateUser(ctx, user); err != nil {
		return nil, errors.WithStack(err)
	}

	// welcome email is best-effort, the registration already succeeded
	if _, err := s.queue.AddUserEmailTask(ctx, user.GetID()); err != nil {
		s.logger.Error("enqueue user email task",
			zap.Error(err), zap.String("user", user.GetID()))
	}

	return user, nil
}

// Authenticate verifies the email/password pair. The stored hash never
// leaves this method.
func (s *Users) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.dao.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, errors.WithStack(model.ErrInvalidCredentials)
		}

		return nil, errors.WithStack(err)
	}

	if err = gcrypto.VerifyHashedPassword([]byte(password), user.Password); err != nil {
		return nil, errors.WithStack(model.ErrInvalidCredentials)
	}

	return user, nil
}

// GetUser loads a user by its hex id.
func (s *Users) GetUser(ctx context.Context, idHex string) (*model.User, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, errors.WithStack(model.ErrUserNotFound)
	}

	return s.dao.GetUserByID(ctx, id)
}

// Count returns the number of registered users.
func (s *Users) Count(ctx context.Context) (int64, error) {
	return s.dao.CountUsers(ctx)
}
