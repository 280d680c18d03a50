package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	api "github.com/prepforge/prepforge/internal/api/http"
	auth "github.com/prepforge/prepforge/internal/auth/middleware"
	"github.com/prepforge/prepforge/internal/config"
	"github.com/prepforge/prepforge/internal/db"
	"github.com/prepforge/prepforge/internal/exam"
	"github.com/prepforge/prepforge/internal/questionbank"
	"github.com/prepforge/prepforge/internal/rbac"
	"github.com/prepforge/prepforge/internal/report"
	"github.com/prepforge/prepforge/internal/storage"
	syncx "github.com/prepforge/prepforge/internal/sync"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gateway",
		Short: "Multi-day exam campaign server",
	}

	serve := serveCmd()
	root.AddCommand(serve, sweepCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway and background deadline sweeper",
		RunE:  runServe,
	}
	addCommonFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("auth-secret", "", "HMAC secret for access tokens")
	f.Bool("allow-claim-fallback", false, "Trust the token role when the user is not in the database (dev only)")
	f.Duration("sweep-interval", 5*time.Minute, "Background deadline sweep interval")
	f.String("report-dir", "./data/reports", "Directory for archived grade reports")
	f.Int("total-days", 7, "Days per campaign")
	f.Int("questions-per-day", 40, "Questions per exam day")
	f.StringSlice("cors-origins", []string{"http://localhost:3000"}, "Allowed CORS origins")
	f.String("admin-user", "admin", "Admin username to seed")
	f.String("admin-password", "", "Initial admin password (or set PREPFORGE_ADMIN_PASSWORD)")
	f.Bool("seed-demo", false, "Seed demo subjects and questions on startup")
	return cmd
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one deadline sweep over every live exam and exit",
		RunE:  runSweep,
	}
	addCommonFlags(cmd)
	return cmd
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db-driver", "sqlite", "Database driver (sqlite, postgres)")
	f.String("db-dsn", "", "Database DSN (driver default when empty)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PREPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("prepforge")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/prepforge")
	v.AddConfigPath("/etc/prepforge")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}
	return v
}

func setupLogging(cfg config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// deps bundles everything the serve and sweep commands assemble.
type deps struct {
	db       *sql.DB
	svc      *exam.Service
	archiver *report.Archiver
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	blobs, err := storage.NewFSStore(cfg.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}
	archiver := report.NewArchiver(blobs)

	svc := exam.NewService(
		exam.NewSQLStore(dbh, cfg.DBDriver),
		questionbank.NewPool(dbh),
		exam.WithEvents(syncx.NewEventRepo(dbh)),
		exam.WithArchiver(archiver),
		exam.WithCampaign(cfg.TotalDays, cfg.QuestionsPerDay),
	)
	return &deps{db: dbh, svc: svc, archiver: archiver}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.FromViper(viperForCmd(cmd))
	setupLogging(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	dbh := d.db

	if err := seedAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if cfg.SeedDemo {
		if err := seedDemo(ctx, dbh, cfg.TotalDays, cfg.QuestionsPerDay); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}

	sweeper := exam.NewSweeper(d.svc, cfg.SweepInterval, slog.Default())
	go sweeper.Run(cmd.Context())

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.AllowClaimFallback))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.CreateExamHandler(d.svc))
		pr.With(rbac.RequireAny("exam:view-own", "exam:view")).
			Get("/exams", api.ListExamsHandler(d.svc))
		pr.With(rbac.RequireAny("exam:view-own", "exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(d.svc))

		pr.With(rbac.Require("day:start")).
			Post("/exams/{examID}/days/{dayNumber}/start", api.StartDayHandler(d.svc))
		pr.With(rbac.Require("day:complete")).
			Post("/exams/{examID}/days/{dayNumber}/complete", api.CompleteDayHandler(d.svc))
		pr.With(rbac.Require("answer:record")).
			Post("/sessions/{sessionID}/answers", api.RecordAnswerHandler(d.svc))

		pr.With(rbac.Require("exam:manage-own")).
			Post("/exams/{examID}/pause", api.PauseExamHandler(d.svc))
		pr.With(rbac.Require("exam:manage-own")).
			Post("/exams/{examID}/resume", api.ResumeExamHandler(d.svc))
		pr.With(rbac.Require("exam:manage-own")).
			Delete("/exams/{examID}", api.DeleteExamHandler(d.svc))

		pr.With(rbac.RequireAny("report:view-own", "report:view")).
			Get("/exams/{examID}/report", api.GetReportHandler(d.svc, d.archiver))

		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	slog.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver,
		"sweep_interval", cfg.SweepInterval, "days", cfg.TotalDays)
	return http.ListenAndServe(cfg.HTTPAddr, r)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg := config.FromViper(viperForCmd(cmd))
	setupLogging(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	exam.NewSweeper(d.svc, cfg.SweepInterval, slog.Default()).SweepOnce(cmd.Context())
	return nil
}
