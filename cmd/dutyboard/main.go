package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/dutyboard/internal/database"
	"github.com/dukerupert/dutyboard/internal/logging"
	"github.com/dukerupert/dutyboard/internal/schedule"
	"github.com/dukerupert/dutyboard/internal/server"
)

func main() {
	port := os.Getenv("DUTYBOARD_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DUTYBOARD_DB_PATH")
	if dbPath == "" {
		dbPath = "dutyboard.db"
	}

	logger := logging.Setup(os.Getenv("DUTYBOARD_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := schedule.DefaultConfig()
	if v := os.Getenv("DUTYBOARD_COOLDOWN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.CooldownDays = n
		}
	}
	if os.Getenv("DUTYBOARD_WEEKDAY_OVERASSIGN") == "true" {
		cfg.AllowWeekdayOverassign = true
	}
	if v := os.Getenv("DUTYBOARD_WEEKEND_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.WeekendDailyCap = n
		}
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("dutyboard listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
