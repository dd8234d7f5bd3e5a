package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"growapi/internal/clock"
	"growapi/internal/db"
	"growapi/internal/engine"
	"growapi/internal/handlers"
	"growapi/internal/leaderboard"
	mw "growapi/internal/middleware"
	"growapi/internal/services"
	"growapi/internal/store"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Error("missing required key", slog.String("env", name))
		os.Exit(1)
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		slog.Error("key is not valid base64", slog.String("env", name), slog.Any("err", err))
		os.Exit(1)
	}
	return key
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	encryptionKey := mustKey("ENCRYPTION_KEY")
	blindIndexKey := mustKey("BLIND_INDEX_KEY")
	port := mustGetenv("PORT", "8080")

	undoWindow := engine.DefaultUndoWindow
	if raw := os.Getenv("UNDO_WINDOW"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			slog.Error("invalid UNDO_WINDOW", slog.Any("err", err))
			os.Exit(1)
		}
		undoWindow = d
	}

	dbConn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		slog.Error("failed to ping db", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.RunMigrations(dbConn); err != nil {
		slog.Error("failed migrations", slog.Any("err", err))
		os.Exit(1)
	}

	enc, err := services.NewEncryptionService(encryptionKey, blindIndexKey)
	if err != nil {
		slog.Error("failed to init encryption", slog.Any("err", err))
		os.Exit(1)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		slog.Error("failed to init request logger", slog.Any("err", err))
		os.Exit(1)
	}
	defer zapLogger.Sync()

	clk := clock.NewSystem(time.Local)
	sessions := engine.NewManager(store.NewPostgres(dbConn, clk), clk, undoWindow)
	lb := leaderboard.NewService(dbConn, clk)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.ZapRequestLogger(zapLogger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(dbConn, []byte(jwtSecret), enc)
	profileHandler := handlers.NewProfileHandler(dbConn, sessions, lb, enc)
	habitHandler := handlers.NewHabitHandler(dbConn, sessions, lb, enc)
	skillHandler := handlers.NewSkillHandler(sessions)
	questHandler := handlers.NewQuestHandler(dbConn, sessions, clk)
	workoutHandler := handlers.NewWorkoutHandler(dbConn, sessions, lb, enc, clk)
	nutritionHandler := handlers.NewNutritionHandler(dbConn, sessions, clk)
	dashboardHandler := handlers.NewDashboardHandler(dbConn, clk)
	leaderboardHandler := handlers.NewLeaderboardHandler(lb)
	authMW := mw.NewAuthMiddleware([]byte(jwtSecret))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)

			pr.Post("/profile", profileHandler.Create)
			pr.Get("/profile", profileHandler.Get)

			pr.Post("/habits", habitHandler.Create)
			pr.Get("/habits", habitHandler.List)
			pr.Delete("/habits/{id}", habitHandler.Archive)
			pr.Post("/habits/{id}/complete", habitHandler.Complete)
			pr.Post("/habits/{id}/slip", habitHandler.Slip)
			pr.Post("/habits/undo", habitHandler.Undo)
			pr.Get("/habits/undo", habitHandler.UndoStatus)

			pr.Get("/skills", skillHandler.List)
			pr.Post("/skills/unlock", skillHandler.Unlock)

			pr.Get("/quest", questHandler.Get)
			pr.Post("/quest", questHandler.Create)

			pr.Post("/workouts", workoutHandler.Finish)
			pr.Get("/workouts", workoutHandler.List)
			pr.Delete("/workouts/{id}", workoutHandler.Delete)
			pr.Get("/workouts/records", workoutHandler.Records)

			pr.Post("/food", nutritionHandler.LogFood)
			pr.Get("/food/today", nutritionHandler.TodayFood)
			pr.Put("/food/{id}/favorite", nutritionHandler.ToggleFavorite)
			pr.Delete("/food/{id}", nutritionHandler.DeleteFood)

			pr.Post("/weight", nutritionHandler.LogWeight)
			pr.Get("/weight/trend", nutritionHandler.WeightTrend)

			pr.Get("/dashboard", dashboardHandler.Get)
			pr.Get("/leaderboard", leaderboardHandler.Top)
		})
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	slog.Info("server stopped")
}
