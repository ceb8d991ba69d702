// Package web gin server
package web

import (
	"context"
	"fmt"
	"net/http"

	ginMw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	filesController "github.com/Laisky/files-manager/internal/web/files/controller"
	filesService "github.com/Laisky/files-manager/internal/web/files/service"
	usersController "github.com/Laisky/files-manager/internal/web/users/controller"
	usersService "github.com/Laisky/files-manager/internal/web/users/service"
	"github.com/Laisky/files-manager/library/log"
)

// Pinger reports whether a backing store is currently reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the connected backends and services the HTTP layer serves.
type Deps struct {
	Users *usersService.Users
	Files *filesService.Files
	Mongo Pinger
	Redis Pinger
}

// NewRouter builds the gin engine with all routes installed.
func NewRouter(deps Deps) *gin.Engine {
	server := gin.New()
	server.Use(
		gin.Recovery(),
		ginMw.NewLoggerMiddleware(
			ginMw.WithLoggerMwColored(),
			ginMw.WithLevel(log.Logger.Level().String()),
			ginMw.WithLogger(log.Logger.Named("gin")),
		),
	)

	usersCtl := usersController.New(log.Logger, deps.Users)
	filesCtl := filesController.New(log.Logger, deps.Files)

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	server.GET("/status", statusHandler(deps))
	server.GET("/stats", statsHandler(deps))

	server.POST("/users", usersCtl.PostNew)
	server.GET("/connect", usersCtl.GetConnect)

	authed := server.Group("/", TokenAuth(deps.Users))
	authed.GET("/disconnect", usersCtl.GetDisconnect)
	authed.GET("/users/me", usersCtl.GetMe)
	authed.POST("/files", filesCtl.PostUpload)
	authed.GET("/files", filesCtl.GetIndex)
	authed.GET("/files/:id", filesCtl.GetShow)
	authed.PUT("/files/:id/publish", filesCtl.PutPublish)
	authed.PUT("/files/:id/unpublish", filesCtl.PutUnpublish)

	// the public read path carries its own visibility rules
	server.GET("/files/:id/data", OptionalTokenAuth(deps.Users), filesCtl.GetData)

	server.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	return server
}

// RunServer runs the API server until it exits.
func RunServer(addr string, deps Deps) {
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	server := NewRouter(deps)

	log.Logger.Info("listening on http", zap.String("addr", addr))
	log.Logger.Panic("httpServer exit", zap.Error(server.Run(addr)))
}

// statusHandler reports reachability of the backing stores.
func statusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		redisAlive := deps.Redis.Ping(ctx) == nil
		dbAlive := deps.Mongo.Ping(ctx) == nil

		status := http.StatusOK
		if !redisAlive || !dbAlive {
			status = http.StatusInternalServerError
		}

		c.JSON(status, gin.H{"redis": redisAlive, "db": dbAlive})
	}
}

// statsHandler reports user and file counts.
func statsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var nUsers, nFiles int64
		var pool errgroup.Group
		pool.Go(func() (err error) {
			nUsers, err = deps.Users.Count(ctx)
			return err
		})
		pool.Go(func() (err error) {
			nFiles, err = deps.Files.Count(ctx)
			return err
		})

		if err := pool.Wait(); err != nil {
			log.Logger.Error("load stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"users": nUsers, "files": nFiles})
	}
}
