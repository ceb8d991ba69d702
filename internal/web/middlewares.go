package web

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/files-manager/internal/web/ctxkeys"
	usersModel "github.com/Laisky/files-manager/internal/web/users/model"
	usersService "github.com/Laisky/files-manager/internal/web/users/service"
	redisLib "github.com/Laisky/files-manager/library/db/redis"
	"github.com/Laisky/files-manager/library/log"
)

// TokenAuth resolves the X-Token header to a user and attaches it to the
// request context. A missing, expired or revoked token aborts with 401;
// an unreachable session store is a 500, never a silent 401.
func TokenAuth(users *usersService.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveRequestUser(c, users)
		if err != nil {
			if errors.Is(err, errUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}

			log.Logger.Error("resolve token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		c.Set(ctxkeys.User, user)
		c.Next()
	}
}

// OptionalTokenAuth attaches the user when a valid token is presented and
// lets the request through anonymously otherwise.
func OptionalTokenAuth(users *usersService.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveRequestUser(c, users); err == nil {
			c.Set(ctxkeys.User, user)
		}

		c.Next()
	}
}

var errUnauthorized = errors.New("unauthorized")

func resolveRequestUser(c *gin.Context, users *usersService.Users) (*usersModel.User, error) {
	ctx := c.Request.Context()

	userID, err := users.ResolveToken(ctx, c.GetHeader("X-Token"))
	if err != nil {
		if errors.Is(err, redisLib.ErrTokenNotFound) {
			return nil, errors.WithStack(errUnauthorized)
		}

		return nil, errors.Wrap(err, "resolve token")
	}

	user, err := users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, usersModel.ErrUserNotFound) {
			// the token outlived its user record
			return nil, errors.WithStack(errUnauthorized)
		}

		return nil, errors.Wrap(err, "load user")
	}

	return user, nil
}
