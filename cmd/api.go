package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Laisky/files-manager/internal/web"
	filesDao "github.com/Laisky/files-manager/internal/web/files/dao"
	filesService "github.com/Laisky/files-manager/internal/web/files/service"
	usersDao "github.com/Laisky/files-manager/internal/web/users/dao"
	usersService "github.com/Laisky/files-manager/internal/web/users/service"
	mongoLib "github.com/Laisky/files-manager/library/db/mongo"
	redisLib "github.com/Laisky/files-manager/library/db/redis"
	"github.com/Laisky/files-manager/library/log"
	"github.com/Laisky/files-manager/library/storage"
)

const defaultTokenTTL = 24 * time.Hour

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `HTTP API of the file storage service`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		runAPI(context.Background())
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}

func runAPI(ctx context.Context) {
	mongoDB, err := mongoLib.NewDB(ctx, mongoLib.DialInfo{
		Addr:   settingOr("settings.db.addr", "localhost:27017"),
		DBName: settingOr("settings.db.db", "files_manager"),
		User:   gconfig.Shared.GetString("settings.db.user"),
		Pwd:    gconfig.Shared.GetString("settings.db.pwd"),
	})
	if err != nil {
		log.Logger.Panic("connect to mongodb", zap.Error(err))
	}

	redisDB := redisLib.NewDB(&redis.Options{
		Addr:     settingOr("settings.redis.addr", "localhost:6379"),
		DB:       gconfig.Shared.GetInt("settings.redis.db"),
		Password: gconfig.Shared.GetString("settings.redis.password"),
	})
	if err = redisDB.Ping(ctx); err != nil {
		log.Logger.Panic("connect to redis", zap.Error(err))
	}

	store := newContentStore()

	udao := usersDao.New(log.Logger.Named("users"), mongoDB)
	if err = udao.SetupIndexes(ctx); err != nil {
		log.Logger.Panic("setup user indexes", zap.Error(err))
	}

	tokenTTL := defaultTokenTTL
	if hours := gconfig.Shared.GetInt("settings.auth.token_ttl_hours"); hours > 0 {
		tokenTTL = time.Duration(hours) * time.Hour
	}

	usersSvc := usersService.New(log.Logger.Named("users"), udao, redisDB, redisDB, tokenTTL)

	fdao := filesDao.New(log.Logger.Named("files"), mongoDB)
	filesSvc := filesService.New(log.Logger.Named("files"), fdao, store, redisDB)

	web.RunServer(gconfig.Shared.GetString("listen"), web.Deps{
		Users: usersSvc,
		Files: filesSvc,
		Mongo: mongoDB,
		Redis: redisDB,
	})
}

// newContentStore selects the content backend from the configuration.
func newContentStore() storage.Store {
	switch backend := gconfig.Shared.GetString("settings.storage.backend"); backend {
	case "s3":
		cli, err := minio.New(
			gconfig.Shared.GetString("settings.storage.s3.endpoint"),
			&minio.Options{
				Creds: credentials.NewStaticV4(
					gconfig.Shared.GetString("settings.storage.s3.access_key"),
					gconfig.Shared.GetString("settings.storage.s3.secret"),
					"",
				),
				Secure: gconfig.Shared.GetBool("settings.storage.s3.secure"),
			},
		)
		if err != nil {
			log.Logger.Panic("connect to s3", zap.Error(err))
		}

		return storage.NewMinio(cli,
			gconfig.Shared.GetString("settings.storage.s3.bucket"),
			gconfig.Shared.GetString("settings.storage.s3.prefix"),
		)
	case "", "fs":
		folder := gconfig.Shared.GetString("settings.storage.folder_path")
		if folder == "" {
			folder = filepath.Join(os.TempDir(), "files_manager")
		}

		store, err := storage.NewFS(folder)
		if err != nil {
			log.Logger.Panic("create content dir", zap.Error(err))
		}

		return store
	default:
		log.Logger.Panic("unknown storage backend",
			zap.String("backend", backend))
		return nil
	}
}

func settingOr(key, fallback string) string {
	if v := gconfig.Shared.GetString(key); v != "" {
		return v
	}

	return fallback
}
