package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"campusattend/internal/attendance"
	"campusattend/internal/config"
	"campusattend/internal/course"
	"campusattend/internal/feedback"
	"campusattend/internal/httpapi"
	"campusattend/internal/store"
	"campusattend/internal/user"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	userRepo := user.NewRepository(db.Client)
	courseRepo := course.NewRepository(db.Client)
	attendanceRepo := attendance.NewRepository(db.Client)
	feedbackRepo := feedback.NewRepository(db.Client)

	users := user.NewService(userRepo)
	courses := course.NewService(courseRepo, userRepo)
	att := attendance.NewService(courseRepo, attendanceRepo, redisClient, cfg.SummaryCacheTTL, cfg.LateGrace)
	fb := feedback.NewService(feedbackRepo, courseRepo)

	handler := httpapi.New(httpapi.Config{
		JWTIssuer:     cfg.JWTIssuer,
		JWTSigningKey: cfg.JWTSigningKey,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}, users, courses, att, fb, db, redisClient)

	r := handler.NewRouter(httpapi.RouterOptions{
		RateLimitPerMin: cfg.RateLimitPerMin,
		Revoker:         redisClient,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
