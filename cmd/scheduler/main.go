package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/cache"
	"github.com/example/classroom-scheduler/internal/config"
	httpapi "github.com/example/classroom-scheduler/internal/http"
	"github.com/example/classroom-scheduler/internal/persistence/sqlite"
	"github.com/example/classroom-scheduler/internal/recurrence"
	"github.com/example/classroom-scheduler/internal/seed"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := sqlite.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.InfoContext(ctx, "database ready", "dsn", cfg.SQLiteDSN)

	scheduleRepo := sqlite.NewScheduleRepository(store)
	roomRepo := sqlite.NewRoomRepository(store)
	userRepo := sqlite.NewUserRepository(store)
	courseRepo := sqlite.NewCourseRepository(store)
	catalogRepo := sqlite.NewCatalogRepository(store)
	sessionRepo := sqlite.NewSessionRepository(store)

	if cfg.SeedData {
		err := seed.Run(ctx, seed.Repositories{
			Users:   userRepo,
			Rooms:   roomRepo,
			Courses: courseRepo,
			Catalog: catalogRepo,
		}, cfg.AdminPassword, cfg.FacultyPassword, logger)
		if err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	expander := recurrence.NewExpander(cfg.MaxOccurrences)
	scheduleService := application.NewScheduleServiceWithLogger(
		scheduleRepo, roomRepo, courseRepo, userRepo, expander, time.Now, logger)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WarnContext(ctx, "redis unreachable, schedule cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			scheduleService.WithCache(cache.NewScheduleCache(client, cfg.CacheTTL, logger))
			logger.InfoContext(ctx, "schedule cache enabled", "addr", cfg.RedisAddr)
		}
	}

	roomService := application.NewRoomServiceWithLogger(roomRepo, catalogRepo, logger)
	courseService := application.NewCourseServiceWithLogger(courseRepo, catalogRepo, logger)
	catalogService := application.NewCatalogServiceWithLogger(catalogRepo, logger)
	userService := application.NewUserServiceWithLogger(userRepo, logger)
	authService := application.NewAuthServiceWithLogger(userRepo, sessionRepo, application.AuthConfig{
		JWTSecret:       []byte(cfg.JWTSecret),
		Issuer:          cfg.JWTIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}, time.Now, logger)

	go purgeSessionsLoop(ctx, authService, logger)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodPut, stdhttp.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := httpapi.NewRouter(httpapi.RouterConfig{
		Auth:         httpapi.NewAuthHandler(authService, logger),
		Schedules:    httpapi.NewScheduleHandler(scheduleService, logger),
		Rooms:        httpapi.NewRoomHandler(roomService, logger),
		Courses:      httpapi.NewCourseHandler(courseService, logger),
		Catalog:      httpapi.NewCatalogHandler(catalogService, logger),
		Users:        httpapi.NewUserHandler(userService, logger),
		Authenticate: httpapi.RequireAuth(authService, logger),
		Middleware: []func(stdhttp.Handler) stdhttp.Handler{
			httpapi.RequestLogger(logger),
			httpapi.RateLimit(cfg.RateLimit, cfg.RateBurst, logger),
			corsMiddleware.Handler,
		},
	})

	server := &stdhttp.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

// purgeSessionsLoop deletes expired refresh sessions hourly so the sessions
// table does not grow without bound.
func purgeSessionsLoop(ctx context.Context, auth *application.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				logger.WarnContext(ctx, "failed to purge expired sessions", "error", err)
			}
		}
	}
}
