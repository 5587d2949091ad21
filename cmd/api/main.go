package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/motionhq/motion-go/internal/config"
	"github.com/motionhq/motion-go/internal/handler"
	"github.com/motionhq/motion-go/internal/mailer"
	"github.com/motionhq/motion-go/internal/middleware"
	"github.com/motionhq/motion-go/internal/repository"
	"github.com/motionhq/motion-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	cancel()
	if err != nil {
		slog.Error("database initialization failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, mailer.NewLogSender(), service.TokenConfig{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		ResetTTL:      cfg.ResetTTL,
	})
	projectService := service.NewProjectService(projectRepo)
	taskService := service.NewTaskService(taskRepo, projectRepo)

	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.RateLimit(10, 20))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":{"status":"ok","environment":"` + cfg.Env + `"}}`))
	})

	// Stricter limits on credential-bearing endpoints.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(1, 5))
		r.Post("/api/v1/auth/register", authHandler.HandleRegister)
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
		r.Post("/api/v1/auth/refresh", authHandler.HandleRefresh)
		r.Post("/api/v1/auth/forgot-password", authHandler.HandleForgotPassword)
		r.Post("/api/v1/auth/reset-password", authHandler.HandleResetPassword)
	})

	r.Post("/api/v1/auth/logout", authHandler.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.AccessSecret))
		r.Get("/api/v1/auth/me", authHandler.HandleMe)

		r.Post("/api/v1/projects", projectHandler.HandleCreate)
		r.Get("/api/v1/projects", projectHandler.HandleList)
		r.Get("/api/v1/projects/{projectID}", projectHandler.HandleGet)
		r.Put("/api/v1/projects/{projectID}", projectHandler.HandleUpdate)
		r.Delete("/api/v1/projects/{projectID}", projectHandler.HandleDelete)
		r.Get("/api/v1/projects/{projectID}/tasks", taskHandler.HandleListByProject)

		r.Post("/api/v1/tasks", taskHandler.HandleCreate)
		r.Get("/api/v1/tasks/{taskID}", taskHandler.HandleGet)
		r.Put("/api/v1/tasks/{taskID}", taskHandler.HandleUpdate)
		r.Patch("/api/v1/tasks/{taskID}/status", taskHandler.HandleUpdateStatus)
		r.Delete("/api/v1/tasks/{taskID}", taskHandler.HandleDelete)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
