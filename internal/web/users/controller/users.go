// Package controller exposes the user and session endpoints.
package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/files-manager/internal/web/ctxkeys"
	"github.com/Laisky/files-manager/internal/web/users/model"
	"github.com/Laisky/files-manager/internal/web/users/service"
	redisLib "github.com/Laisky/files-manager/library/db/redis"
)

// Users controller type
type Users struct {
	logger glog.Logger
	svc    *service.Users
}

// New create new controller
func New(logger glog.Logger, svc *service.Users) *Users {
	return &Users{
		logger: logger,
		svc:    svc,
	}
}

type newUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PostNew handles POST /users.
func (ctl *Users) PostNew(c *gin.Context) {
	req := new(newUserRequest)
	// an absent or malformed body reads as empty fields, validation
	// produces the client-facing message
	_ = c.ShouldBindJSON(req)

	user, err := ctl.svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.GetID(),
		"email": user.Email,
	})
}

// GetMe handles GET /users/me for the authenticated user.
func (ctl *Users) GetMe(c *gin.Context) {
	user := c.MustGet(ctxkeys.User).(*model.User)

	c.JSON(http.StatusOK, gin.H{
		"id":    user.GetID(),
		"email": user.Email,
	})
}

// GetConnect handles GET /connect: verifies the basic-auth credential
// pair and issues a session token.
func (ctl *Users) GetConnect(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := ctl.svc.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	token, err := ctl.svc.IssueToken(c.Request.Context(), user.GetID())
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetDisconnect handles GET /disconnect: revokes the presented token.
func (ctl *Users) GetDisconnect(c *gin.Context) {
	if err := ctl.svc.RevokeToken(c.Request.Context(), c.GetHeader("X-Token")); err != nil {
		ctl.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// handleError maps domain errors to the stable HTTP contract.
func (ctl *Users) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMissingEmail),
		errors.Is(err, model.ErrMissingPassword),
		errors.Is(err, model.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errors.Cause(err).Error()})
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, redisLib.ErrTokenNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		ctl.logger.Error("users api", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
