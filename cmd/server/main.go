// Package main runs the social-posting HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pulso-social/backend/config"
	"github.com/pulso-social/backend/internal/comments"
	"github.com/pulso-social/backend/internal/images"
	"github.com/pulso-social/backend/internal/middleware"
	"github.com/pulso-social/backend/internal/posts"
	"github.com/pulso-social/backend/internal/reactions"
	"github.com/pulso-social/backend/internal/survey"
	"github.com/pulso-social/backend/pkg/database"
	"github.com/pulso-social/backend/pkg/response"
	"github.com/pulso-social/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			ImagesBucket:    cfg.AWS.ImagesBucket,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	postRepo := posts.NewRepository(pool)
	postHandler := posts.NewHandler(postRepo, logger)

	surveyRepo := survey.NewRepository(pool)
	surveyHandler := survey.NewHandler(surveyRepo, logger)

	reactionRepo := reactions.NewRepository(pool)
	reactionHandler := reactions.NewHandler(reactionRepo, logger)

	commentRepo := comments.NewRepository(pool)
	commentHandler := comments.NewHandler(commentRepo, logger)

	imageRepo := images.NewRepository(pool)
	imageHandler := images.NewHandler(imageRepo, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		var now time.Time
		if err := pool.QueryRow(c.Request.Context(), "SELECT NOW()").Scan(&now); err != nil {
			logger.Error("health check failed", zap.Error(err))
			response.Internal(c, "database unreachable")
			return
		}
		response.OK(c, gin.H{"ok": true, "time": now})
	})

	router.POST("/posts", postHandler.Create)
	router.GET("/posts", postHandler.List)
	router.GET("/posts/latest", postHandler.Latest)
	router.GET("/posts/next/:userId", surveyHandler.Next)

	router.POST("/survey", surveyHandler.Submit)
	router.GET("/admin/responses", surveyHandler.AdminResponses)

	router.POST("/reactions", reactionHandler.Increment)
	router.GET("/reactions/:postId", reactionHandler.ListByPost)

	router.POST("/comments", commentHandler.Create)
	router.GET("/comments/:postId", commentHandler.ListByPost)

	router.POST("/upload-image", imageHandler.Upload)
	router.GET("/images/:postId", imageHandler.ListByPost)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
