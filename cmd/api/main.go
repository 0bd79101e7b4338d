package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mkurosawa/marketplace-backend/internal/cache"
	"github.com/mkurosawa/marketplace-backend/internal/config"
	"github.com/mkurosawa/marketplace-backend/internal/db"
	"github.com/mkurosawa/marketplace-backend/internal/mailer"
	"github.com/mkurosawa/marketplace-backend/internal/middleware"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/server"
	"github.com/mkurosawa/marketplace-backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := conn.AutoMigrate(
		&model.User{},
		&model.Listing{},
		&model.Conversation{},
		&model.Message{},
		&model.SiteStats{},
	); err != nil {
		return err
	}

	authMw, err := middleware.New(ctx, cfg.JWTSecret, cfg.FirebaseProjectID)
	if err != nil {
		return err
	}

	c := cache.New(cfg.RedisAddr)
	defer c.Close()

	var uploader storage.Uploader
	if cfg.StorageBucket != "" {
		gcsUploader, err := storage.NewGCSUploader(ctx, cfg.StorageBucket, cfg.CredentialsFile)
		if err != nil {
			return err
		}
		defer gcsUploader.Close()
		uploader = gcsUploader
	} else {
		log.Printf("STORAGE_BUCKET not set; uploads disabled")
	}

	m := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.OperatorEmail)

	srv := server.New(conn, cfg, authMw, c, uploader, m)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
