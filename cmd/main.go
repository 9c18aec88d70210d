package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/andressep95/propertyhub/internal/config"
	"github.com/andressep95/propertyhub/internal/handler"
	"github.com/andressep95/propertyhub/internal/handler/middleware"
	"github.com/andressep95/propertyhub/internal/repository/orm"
	"github.com/andressep95/propertyhub/internal/repository/postgres"
	"github.com/andressep95/propertyhub/internal/service"
	"github.com/andressep95/propertyhub/pkg/blacklist"
	"github.com/andressep95/propertyhub/pkg/email"
	"github.com/andressep95/propertyhub/pkg/hash"
	"github.com/andressep95/propertyhub/pkg/jwt"
	"github.com/andressep95/propertyhub/pkg/logger"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/andressep95/propertyhub/web"
)

const sessionCleanupInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	// Initialize database connection
	db, err := initDB(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database connection")
		}
	}()
	log.Info().Msg("database connection established")

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	err = postgres.EnsureSchema(schemaCtx, db)
	cancelSchema()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare schema")
	}

	// Reporting reads go through gorm on the same database
	gormDB, err := orm.Open(cfg.Database.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open reporting connection")
	}
	dao := orm.NewDbDao(gormDB)
	if err := dao.InitMigrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate reporting tables")
	}
	reportSQL, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to access reporting pool")
	}
	defer reportSQL.Close()

	// Initialize Redis client
	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis connection")
		}
	}()
	log.Info().Str("addr", cfg.Redis.Addr()).Msg("redis connection established")

	// Load RSA keys for session tokens
	privateKey, publicKey, err := loadRSAKeys(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RSA keys")
	}

	tokenService, err := jwt.NewTokenService(privateKey, publicKey, cfg.JWT.SessionExpiry, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}
	sessionBlacklist := blacklist.NewSessionBlacklist(redisClient)

	notifier := initNotifier(cfg, log)
	validate := validator.NewValidator()
	hasher := hash.NewHasher(cfg.Auth.Argon2Memory, cfg.Auth.Argon2Time)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	utilityRepo := postgres.NewUtilityAccountRepository(db)
	reportRepo := orm.NewReportRepository(dao)

	// Initialize services
	sessionService := service.NewSessionService(tokenService, sessionBlacklist, sessionRepo, log)
	authService := service.NewAuthService(userRepo, sessionService, hasher, notifier, cfg.Auth, log)
	auditService := service.NewAuditService(auditRepo)
	orgService := service.NewOrganizationService(orgRepo)
	userService := service.NewUserService(userRepo, orgService, hasher)
	utilityService := service.NewUtilityAccountService(utilityRepo, validate)
	reportService := service.NewReportService(reportRepo, cfg.Report.LookbackDays, log)

	handlers := handler.Handlers{
		Auth:           handler.NewAuthHandler(authService, sessionService, auditService, validate, cfg.Cookie, log),
		Session:        handler.NewSessionHandler(sessionService, log),
		Password:       handler.NewPasswordHandler(authService, validate, cfg.Cookie, log),
		Setup:          handler.NewSetupHandler(userService, validate, log),
		User:           handler.NewUserHandler(userService, validate, log),
		UtilityAccount: handler.NewUtilityAccountHandler(utilityService, log),
		Report:         handler.NewReportHandler(reportService, log),
		Page:           handler.NewPageHandler(orgService, userService, auditService, validate, log),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres":  db.PingContext,
			"reporting": reportSQL.PingContext,
			"redis":     sessionBlacklist.Ping,
		}, log),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "PropertyHub",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		Views:                 web.Engine(),
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware(log))
	app.Use(requestid.New())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.MetricsMiddleware())
	app.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))
	app.Use(middleware.SessionMiddleware(sessionService, cfg.Cookie.Name))

	handler.SetupRoutes(app, handlers, handler.RouteOptions{
		ReportRequiresSession: cfg.Report.RequireSession,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupSessions(ctx, sessionService, log)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Info().Str("addr", addr).Str("environment", cfg.Server.Environment).Msg("server starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config, log zerolog.Logger) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("failed to connect to database")
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpen)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// loadRSAKeys loads RSA private and public keys from files
func loadRSAKeys(cfg *config.Config) ([]byte, []byte, error) {
	privateKey, err := os.ReadFile(cfg.JWT.PrivateKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	publicKey, err := os.ReadFile(cfg.JWT.PublicKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	if len(privateKey) == 0 {
		return nil, nil, errors.New("private key file is empty")
	}
	if len(publicKey) == 0 {
		return nil, nil, errors.New("public key file is empty")
	}

	return privateKey, publicKey, nil
}

func initNotifier(cfg *config.Config, log zerolog.Logger) email.Notifier {
	if !cfg.Email.Enabled {
		log.Info().Msg("email disabled, set EMAIL_ENABLED=true to send account notices")
		return email.NoopNotifier{}
	}

	notifier, err := email.NewResendNotifier(&email.EmailConfig{
		APIKey:    cfg.Email.APIKey,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		Timeout:   cfg.Email.Timeout,
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize email, account notices are disabled")
		return email.NoopNotifier{}
	}
	return notifier
}

// cleanupSessions prunes expired session bookkeeping rows until ctx is done.
func cleanupSessions(ctx context.Context, sessions *service.SessionService, log zerolog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.CleanupExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session cleanup failed")
				continue
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Msg("expired sessions removed")
			}
		}
	}
}

// errorHandler answers unhandled errors with a generic JSON body. Details only go to the log.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
			message = "Internal server error"
		}

		c.Response().Header.Del(fiber.HeaderContentDisposition)
		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
