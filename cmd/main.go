package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/tradex/tradex-wallet/internal/handlers"
	"github.com/tradex/tradex-wallet/internal/jwt"
	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/middlewares"
	"github.com/tradex/tradex-wallet/internal/repositories"
	"github.com/tradex/tradex-wallet/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title tradex-wallet API
// @version 1.0.0
// @description Demo exchange backend: accounts, sessions, simulated wallet and market data
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns,
		cacheExpSecond,
		jwtSecret, jwtExpSecond,
		appOrigin, signupConfirmation,
		kafkaBroker, kafkaTopic,
		marketTickMS,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns,
		cacheExpSecond,
		jwtSecret, jwtExpSecond,
		appOrigin, signupConfirmation,
		kafkaBroker, kafkaTopic,
		marketTickMS,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, cache, JWT, Kafka, and simulator
// configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	cacheExpSecond int,
	jwtSecretKey string, jwtExpSecond int,
	appOrigin string, signupConfirmation bool,
	kafkaBroker, kafkaTopic string,
	marketTickMS int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")
	appOrigin = getEnv("APP_ORIGIN", "http://localhost:3000")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "database")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if redisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if redisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}
	if cacheExpSecond, err = strconv.Atoi(getEnv("CACHE_EXP_SECOND", "300")); err != nil {
		return
	}

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}

	// Signup config
	if signupConfirmation, err = strconv.ParseBool(getEnv("SIGNUP_CONFIRMATION_REQUIRED", "false")); err != nil {
		return
	}

	// Kafka config; an empty broker disables event publishing
	kafkaBroker = getEnv("KAFKA_BROKER", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "wallet-transactions")

	// Market simulator config
	if marketTickMS, err = strconv.Atoi(getEnv("MARKET_TICK_MS", "3000")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka writer, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	cacheExpSecond int,
	jwtSecretKey string, jwtExpSecond int,
	appOrigin string, signupConfirmation bool,
	kafkaBroker, kafkaTopic string,
	marketTickMS int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	logger.Log.Infof("Connecting to PostgreSQL: %s:%d/%s", pgHost, pgPort, pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Errorw("PostgreSQL connection error", "error", err)
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("PostgreSQL ping failed", "error", err)
		return err
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password:     redisPassword,
		DB:           redisDB,
		PoolSize:     redisPoolSize,
		MinIdleConns: redisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Errorw("Redis connection error", "error", err)
		return err
	}
	defer rdb.Close()

	// Kafka writer for transaction events; optional
	var kafkaWriter services.KafkaWriter
	if kafkaBroker != "" {
		w := &kafka.Writer{
			Addr:     kafka.TCP(kafkaBroker),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infof("Kafka writer configured for %s topic %s", kafkaBroker, kafkaTopic)
	} else {
		logger.Log.Warn("Kafka broker not configured, transaction events will not be published")
	}

	// Initialize JWT service
	jwtSvc := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithExpiration(time.Duration(jwtExpSecond)*time.Second),
	)

	cacheTTL := time.Duration(cacheExpSecond) * time.Second

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	profileReadRepo := repositories.NewProfileReadRepository(db)
	profileWriteRepo := repositories.NewProfileWriteRepository(db)
	adminReadRepo := repositories.NewAdminReadRepository(db)
	walletReadRepo := repositories.NewWalletReadRepository(db)
	walletWriteRepo := repositories.NewWalletWriteRepository(db)
	txnReadRepo := repositories.NewTransactionReadRepository(db)
	txnWriteRepo := repositories.NewTransactionWriteRepository(db)
	spotWriteRepo := repositories.NewSpotTransferWriteRepository(db)
	walletCacheRepo := repositories.NewWalletCacheRepository(rdb, cacheTTL)
	revokedRepo := repositories.NewRevokedTokenRepository(rdb, time.Duration(jwtExpSecond)*time.Second)

	// Initialize services
	authService := services.NewAuthService(
		userReadRepo, userWriteRepo,
		profileReadRepo, profileWriteRepo,
		adminReadRepo, revokedRepo, jwtSvc,
		signupConfirmation,
	)

	sessionStore := services.NewSessionStore(authService, appOrigin)
	defer sessionStore.Teardown()
	if err := sessionStore.Initialize(ctx, ""); err != nil {
		logger.Log.Errorw("session store initialization failed", "error", err)
		return err
	}

	walletService := services.NewWalletService(
		walletReadRepo, walletWriteRepo,
		txnReadRepo, txnWriteRepo, spotWriteRepo,
		walletCacheRepo, kafkaWriter,
	)

	marketService := services.NewMarketService(time.Now().UnixNano())

	// Graceful shutdown context, also stops the market simulator
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go marketService.Run(ctxShutdown, time.Duration(marketTickMS)*time.Millisecond)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", handlers.NewRegisterHandler(sessionStore))
		r.Post("/auth/login", handlers.NewLoginHandler(sessionStore))
		r.Post("/auth/logout", handlers.NewLogoutHandler(sessionStore))
		r.Get("/auth/session", handlers.NewSessionHandler(sessionStore))

		r.Get("/market/tickers", handlers.NewGetTickersHandler(marketService))
		r.Get("/market/orderbook", handlers.NewGetOrderBookHandler(marketService))

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(jwtSvc, revokedRepo))

			r.Get("/profile", handlers.NewGetProfileHandler(authService))
			r.Put("/profile", handlers.NewUpdateProfileHandler(authService))
			r.Get("/profile/admin", handlers.NewAdminCheckHandler(authService))

			r.Get("/wallet", handlers.NewGetWalletHandler(walletService))
			r.Post("/wallet", handlers.NewCreateWalletHandler(walletService))
			r.Get("/wallet/transactions", handlers.NewGetTransactionsHandler(walletService))
			r.Post("/wallet/transactions", handlers.NewCreateTransactionHandler(walletService))
			r.Post("/wallet/transfer-from-spot", handlers.NewTransferFromSpotHandler(walletService))
		})
	})

	r.Get("/market/ws", handlers.NewMarketFeedHandler(marketService))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
