// Package api contains all endpoints available
package api

import (
	"cryptvault/file-api/db"
	"cryptvault/file-api/middleware"
	"cryptvault/file-api/security"
	"cryptvault/file-api/storage"
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Store  storage.BlobStore
	Argon  *security.ArgonHash
}

func NewRouter() (*API, error) {
	a := &API{
		Argon: security.New(),
	}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Share-Password"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	s3, err := storage.NewS3()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}
	a.Store = s3

	a.registerRoutes()

	return a, nil
}

func (a *API) registerRoutes() {
	auth := middleware.NewAuthMiddleware(a.DB)
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := a.Router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates an auth token
		main.HEAD("/validate", auth, a.Validate)
	}

	files := main.Group("/files")
	{
		// GET /api/files			-> Lists the caller's files
		files.GET("", auth, a.FileList)

		// POST /api/files			-> Encrypts and uploads one or more files
		files.POST("", auth, middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files/size		-> Total bytes stored by the caller
		files.GET("/size", auth, a.FileTotalSize)

		// GET /api/files/stats		-> Top file types across all users (admin)
		files.GET("/stats", auth, middleware.AdminOnly(), cacheFor(30), a.FileTypeStats)

		// GET /api/files/:id/download	-> Decrypts a file and streams it back
		files.GET("/:id/download", auth, a.FileDownload)

		// DELETE /api/files/:id	-> Deletes a file owned by the caller
		files.DELETE("/:id", auth, a.FileDelete)

		// POST /api/files/share	-> Shares a file with another user
		files.POST("/share", auth, a.ShareCreate)

		// GET /api/files/shared	-> Lists files shared with the caller
		files.GET("/shared", auth, a.SharedWithMe)

		// GET /api/files/shared-by-me	-> Lists grants the caller handed out
		files.GET("/shared-by-me", auth, a.SharedByMe)

		// DELETE /api/files/shared/:id	-> Revokes a grant the caller received
		files.DELETE("/shared/:id", auth, a.ShareRevoke)

		// POST /api/files/link-share	-> Creates a bearer link for a file
		files.POST("/link-share", auth, a.LinkShareCreate)

		// GET /api/files/shared-link/:token	-> Downloads through a share link
		files.GET("/shared-link/:token", a.LinkDownload)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
