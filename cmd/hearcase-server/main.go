package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hearcase/hearcase/internal/config"
	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/domain/authn"
	"github.com/hearcase/hearcase/internal/domain/dashboard"
	"github.com/hearcase/hearcase/internal/domain/location"
	"github.com/hearcase/hearcase/internal/domain/patient"
	"github.com/hearcase/hearcase/internal/domain/phase"
	"github.com/hearcase/hearcase/internal/domain/record"
	"github.com/hearcase/hearcase/internal/domain/supply"
	"github.com/hearcase/hearcase/internal/domain/user"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hearcase-server",
		Short: "Hearing case management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	jwtExpiry, err := time.ParseDuration(cfg.JWTExpiry)
	if err != nil {
		logger.Fatal().Err(err).Str("value", cfg.JWTExpiry).Msg("invalid JWT_EXPIRY")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Shared infrastructure
	tx := db.NewTransactor(pool)
	auditRepo := audit.NewRepoPG(pool)
	recorder := audit.NewRecorder(auditRepo)

	// Repositories
	userRepo := user.NewRepoPG(pool)
	locationRepo := location.NewRepoPG(pool)
	phaseRepo := phase.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool, cfg.CaseIDPrefix)
	recordRepo := record.NewRepoPG(pool)
	supplyRepo := supply.NewRepoPG(pool)
	dashRepo := dashboard.NewRepoPG(pool)

	// Services
	auditSvc := audit.NewService(auditRepo)
	userSvc := user.NewService(userRepo, tx, recorder)
	locationSvc := location.NewService(locationRepo, tx, recorder)
	phaseSvc := phase.NewService(phaseRepo, tx, recorder)
	patientSvc := patient.NewService(patientRepo, phaseRepo, tx, recorder)
	recordSvc := record.NewService(recordRepo, tx, recorder)
	supplySvc := supply.NewService(supplyRepo, tx, recorder)
	dashSvc := dashboard.NewService(dashRepo)
	authnSvc := authn.NewService(userRepo, recorder, cfg.JWTSecret, jwtExpiry)

	// Route groups: login is public, everything else sits behind the JWT
	// middleware, which re-resolves roles and locations on every request.
	loader := user.NewPrincipalLoader(userRepo, locationRepo)
	public := e.Group("/api")
	api := e.Group("/api", auth.Middleware(cfg.JWTSecret, loader))

	authn.NewHandler(authnSvc).RegisterRoutes(public, api)
	user.NewHandler(userSvc).RegisterRoutes(api)
	location.NewHandler(locationSvc).RegisterRoutes(api)
	phase.NewHandler(phaseSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc, phaseSvc).RegisterRoutes(api)
	record.NewHandler(recordSvc).RegisterRoutes(api)
	supply.NewHandler(supplySvc).RegisterRoutes(api)
	dashboard.NewHandler(dashSvc).RegisterRoutes(api)
	audit.NewHandler(auditSvc).RegisterRoutes(api)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
