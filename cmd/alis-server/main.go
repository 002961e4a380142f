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
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/virtualis/alis/internal/config"
	adminusers "github.com/virtualis/alis/internal/domain/admin"
	"github.com/virtualis/alis/internal/domain/assist"
	"github.com/virtualis/alis/internal/domain/audit"
	"github.com/virtualis/alis/internal/domain/immunization"
	"github.com/virtualis/alis/internal/domain/messaging"
	"github.com/virtualis/alis/internal/domain/notes"
	"github.com/virtualis/alis/internal/domain/orders"
	"github.com/virtualis/alis/internal/domain/patient"
	"github.com/virtualis/alis/internal/domain/scheduling"
	"github.com/virtualis/alis/internal/platform/auth"
	"github.com/virtualis/alis/internal/platform/db"
	"github.com/virtualis/alis/internal/platform/gateway"
	"github.com/virtualis/alis/internal/platform/middleware"
	"github.com/virtualis/alis/internal/platform/realtime"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "alis-server",
		Short: "Virtualis clinical dashboard API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

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
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage hospital users",
	}

	createCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Invite a hospital user directly from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			hospital, _ := cmd.Flags().GetString("hospital")
			specialty, _ := cmd.Flags().GetString("specialty")
			if email == "" || name == "" || hospital == "" {
				return fmt.Errorf("--email, --name and --hospital are required")
			}

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

			svc := adminusers.NewService(adminusers.NewRepoPG(pool))
			u := &adminusers.HospitalUser{
				HospitalID: hospital,
				Email:      email,
				Name:       name,
				Role:       role,
			}
			if specialty != "" {
				u.Specialty = &specialty
			}
			if err := svc.CreateUser(ctx, u); err != nil {
				return err
			}
			fmt.Printf("Invited %s (%s) to %s as %s\n", u.Name, u.Email, u.HospitalID, u.Role)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "User email address")
	createCmd.Flags().String("name", "", "Display name")
	createCmd.Flags().String("role", "clinician", "Role: admin, clinician, nurse or viewer")
	createCmd.Flags().String("hospital", "", "Hospital identifier")
	createCmd.Flags().String("specialty", "", "Clinical specialty (optional)")
	cmd.AddCommand(createCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	zlog.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
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

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Hospital-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		jwtCfg := auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}
		if cfg.AuthDevKey != "" {
			jwtCfg.SigningKey = []byte(cfg.AuthDevKey)
		}
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	e.Use(db.HospitalMiddleware(cfg.DefaultHospital))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Realtime hub and WebSocket endpoint
	hub := realtime.NewHub()
	realtime.NewHandler(hub).RegisterRoutes(apiV1)

	// Patient census and clinical data
	patientSvc := patient.NewService(
		patient.NewRepoPG(pool),
		patient.NewVitalRepoPG(pool),
		patient.NewLabRepoPG(pool),
		patient.NewMedicationRepoPG(pool),
	)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	// Staged orders and prescriptions
	orderSvc := orders.NewService(orders.NewRepoPG(pool), orders.NewPrescriptionRepoPG(pool))
	orders.NewHandler(orderSvc).RegisterRoutes(apiV1)

	// Clinical notes and templates
	noteSvc := notes.NewService(notes.NewRepoPG(pool), notes.NewTemplateRepoPG(pool))
	notes.NewHandler(noteSvc).RegisterRoutes(apiV1)

	// Appointments and encounters
	schedSvc := scheduling.NewService(scheduling.NewAppointmentRepoPG(pool), scheduling.NewEncounterRepoPG(pool))
	scheduling.NewHandler(schedSvc).RegisterRoutes(apiV1)

	// Immunizations
	immSvc := immunization.NewService(immunization.NewRepoPG(pool))
	immunization.NewHandler(immSvc).RegisterRoutes(apiV1)

	// Team messaging, consults and presence
	presence := messaging.NewPresenceTracker(time.Duration(cfg.PresenceTTLSecs) * time.Second)
	messagingSvc := messaging.NewService(
		messaging.NewDirectMessageRepoPG(pool),
		messaging.NewChannelRepoPG(pool),
		messaging.NewConsultRepoPG(pool),
		presence,
		hub,
		pool,
	)
	messaging.NewHandler(messagingSvc).RegisterRoutes(apiV1)

	// Audit trail
	auditSvc := audit.NewService(audit.NewRepoPG(pool))
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Admin user management
	adminSvc := adminusers.NewService(adminusers.NewRepoPG(pool))
	adminusers.NewHandler(adminSvc).RegisterRoutes(apiV1)

	// AI assistant proxy and demo walkthroughs
	var gw *gateway.Client
	if cfg.AIGatewayURL != "" {
		gw, err = gateway.NewClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure AI gateway")
		}
		logger.Info().Str("model", cfg.AIModel).Msg("AI assistant enabled")
	} else {
		logger.Warn().Msg("AI_GATEWAY_URL not set; assistant chat is disabled")
	}
	dispatcher := assist.NewDispatcher(orderSvc, adminSvc, messagingSvc)
	assist.NewHandler(gw, dispatcher, assist.NewDemoEngine()).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	// Graceful shutdown; pending debounced audit writes flush before exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	auditSvc.Close()
	return nil
}
