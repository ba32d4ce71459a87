package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerpro/internal/auth"
	"ledgerpro/internal/config"
	"ledgerpro/internal/db"
	httpx "ledgerpro/internal/http"
	"ledgerpro/internal/ledger"
	"ledgerpro/internal/logging"
	"ledgerpro/internal/mailer"
	"ledgerpro/internal/reminder"
)

func main() {
	cfg, _ := config.Load()
	log := logging.New(cfg.LogLevel)

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	svc := &ledger.Service{DB: gdb, Log: log}
	mail := mailer.NewZepto(cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	disp := &reminder.Dispatcher{
		DB:        gdb,
		Ledger:    svc,
		Mailer:    mail,
		Log:       log,
		Cooldown:  cfg.ReminderCooldown,
		SendDelay: cfg.ReminderSendDelay,
		BaseURL:   cfg.AppBaseURL,
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(cfg, svc, disp, jwtSvc, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
