package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resto-backend/internal/auth"
	"resto-backend/internal/config"
	"resto-backend/internal/database"
	"resto-backend/internal/logging"
	"resto-backend/internal/server"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DatabaseDSN, logging.GormLogger(log))
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authSvc := auth.NewService(auth.NewGormRepository(db), cfg.SessionSecret, cfg.SessionTTL, log)
	if err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("admin bootstrap failed")
	}
	if cfg.SeedSampleMenu {
		if err := database.SeedSampleMenu(ctx, db, log); err != nil {
			log.WithError(err).Fatal("menu seeding failed")
		}
	}

	app := server.New(server.Deps{Config: cfg, DB: db, Log: log, Auth: authSvc})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	addr := ":" + cfg.HTTPPort
	log.WithField("addr", addr).Info("server listening")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
