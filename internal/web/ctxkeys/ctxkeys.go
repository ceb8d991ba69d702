// Package ctxkeys holds the gin context keys shared between middlewares
// and controllers.
package ctxkeys

const (
	// User is the authenticated *users/model.User attached by the token
	// middleware.
	User = "user"
)
