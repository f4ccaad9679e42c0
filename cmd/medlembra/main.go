package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/medlembra/medlembra/internal/api"
	"github.com/medlembra/medlembra/internal/cli"
	"github.com/medlembra/medlembra/internal/db"
	"github.com/medlembra/medlembra/internal/i18n"
	"github.com/medlembra/medlembra/internal/logging"
	"github.com/medlembra/medlembra/internal/security"
	"github.com/medlembra/medlembra/internal/services"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "text"))

	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if err := runResetPassword(os.Args[2:]); err != nil {
			logger.Error("reset-password failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func runServer(logger *slog.Logger) error {
	location := mustLoadLocation(getEnv("TZ", "UTC"))
	time.Local = location

	secretKey, err := resolveSecretKey()
	if err != nil {
		return err
	}
	port, err := resolvePort()
	if err != nil {
		return err
	}
	streakPolicy, err := services.ParseStreakPolicy(os.Getenv("STREAK_GAP_RESET"))
	if err != nil {
		return err
	}
	databaseConfig, err := resolveDatabaseConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(databaseConfig)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	i18nManager, err := i18n.LoadEmbedded(getEnv("DEFAULT_LANGUAGE", i18n.LangPT))
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	options := api.Options{StreakPolicy: streakPolicy}
	if clientID := strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")); clientID != "" {
		options.GoogleVerifier = security.NewGoogleVerifier(clientID)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID is not set, google login disabled")
	}

	handler, err := api.NewHandler(database, secretKey, location, i18nManager, options)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(handler, os.Stderr, getEnv("CORS_ORIGINS", "*"))

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("medlembra listening",
		"addr", "0.0.0.0:"+port,
		"db_driver", databaseConfig.Driver,
		"tz", location.String(),
		"streak_gap_reset", streakPolicy.ResetValue(),
	)
	return app.Listen(":" + port)
}

func newApp(handler *api.Handler, accessLog io.Writer, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Medlembra",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(api.RequestLogger(accessLog))
	app.Use(compress.New())
	app.Use(cors.New(corsConfig(corsOrigins)))
	app.Use(handler.LanguageMiddleware)

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func corsConfig(origins string) cors.Config {
	allowed := strings.TrimSpace(origins)
	if allowed == "" {
		allowed = "*"
	}
	return cors.Config{
		AllowOrigins: allowed,
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}
}

func runResetPassword(args []string) error {
	flags := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	prompt := flags.Bool("prompt", false, "read the new password from the terminal instead of generating one")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: medlembra reset-password [--prompt] <email>")
	}

	databaseConfig, err := resolveDatabaseConfig()
	if err != nil {
		return err
	}
	return cli.RunResetPasswordCommand(context.Background(), cli.ResetPasswordOptions{
		Database: databaseConfig,
		Email:    flags.Arg(0),
		Prompt:   *prompt,
	})
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := getEnv("PORT", "8080")
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return strconv.Itoa(port), nil
}

func resolveDatabaseConfig() (db.Config, error) {
	config := db.Config{
		Driver:      strings.ToLower(getEnv("DB_DRIVER", db.DriverSQLite)),
		SQLitePath:  getEnv("DB_PATH", filepath.Join("data", "medlembra.db")),
		PostgresDSN: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}
	switch config.Driver {
	case db.DriverSQLite:
	case db.DriverPostgres:
		if config.PostgresDSN == "" {
			return db.Config{}, errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return db.Config{}, fmt.Errorf("unsupported DB_DRIVER %q", config.Driver)
	}
	return config, nil
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("invalid TZ, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
