package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/database"
	"github.com/hoadb/memberwall/internal/logger"
	"github.com/hoadb/memberwall/internal/server"
	"github.com/hoadb/memberwall/internal/services"
	"github.com/hoadb/memberwall/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	setupLogging(cfg)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			log.Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
		auth, err := services.NewAuthService(services.NewUserService(db), services.NewBcryptHasher(services.DefaultBcryptCost), nil)
		if err != nil {
			log.Fatalf("prepare auth service: %v", err)
		}
		if err := auth.ResetPassword(os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("reset password: %v", err)
		}
		log.Printf("Password updated successfully for user %s", os.Args[2])
		return
	}

	logger.Log().WithField("version", version.Full()).Infof("starting %s", version.Name)
	if cfg.GeneratedSecret {
		logger.Log().Warn("SESSION_SECRET not set; generated a random one, sessions will not survive a restart")
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	created, generated, err := srv.App.Auth.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if created {
		logger.Log().WithField("email", cfg.AdminEmail).Info("admin account created")
	}
	if generated != "" {
		// Printed once to the console only; never written to the log files.
		fmt.Fprintf(os.Stderr, "initial admin password for %s: %s\n", cfg.AdminEmail, generated)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Log().Info("server stopped")
}

// setupLogging sends info and above to stdout and a rotated info.log, and
// mirrors errors to a rotated error.log.
func setupLogging(cfg config.Config) {
	logDir := cfg.LogDir
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("log directory %s unavailable, logging to stdout only: %v", logDir, err)
		logger.Init(cfg.Debug, os.Stdout)
		return
	}

	infoLog := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "info.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	errorLog := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "error.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	mw := io.MultiWriter(os.Stdout, infoLog)
	log.SetOutput(mw)
	logger.Init(cfg.Debug, mw)
	logger.AddErrorOutput(errorLog)
}
