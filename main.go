// Package main serves a small form that turns a recipient, a reason and a
// creator into a PDF sheet of repeated coupons (Gutscheine).
//
// The form is painted like a fixed 600x450 window and served on localhost.
// On submit the input is validated, the coupon table is rendered with fpdf
// and written to the path given in "Speichern unter". Optionally the PDF is
// mailed as well.
//
// Usage: coupongen [--version]
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	// Version
	version = "1.0.0"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

type ServerConfig struct {
	Host            string `envconfig:"COUPON_HOST" default:"127.0.0.1"`
	Port            int    `envconfig:"COUPON_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"10"` // seconds
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type OutputConfig struct {
	Dir string `envconfig:"COUPON_OUTPUT_DIR"` // empty means the user's home directory
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"true"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
}

type EmailConfig struct {
	From string `envconfig:"EMAIL_FROM"`
	To   string `envconfig:"EMAIL_TO"`
}

type Config struct {
	Server ServerConfig
	Output OutputConfig
	Log    LogConfig
	SMTP   SMTPConfig
	Email  EmailConfig
}

// loadConfig reads the configuration from the environment.
func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Output.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		cfg.Output.Dir = home
	}

	if cfg.SMTP.Host != "" && cfg.Email.To != "" && cfg.Email.From == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required when mailing is enabled")
	}

	return &cfg, nil
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

// ---------------------------------------------------------------------------
// Application
// ---------------------------------------------------------------------------

// newApp wires the form, the backdrop and the coupon service into a fiber app.
func newApp(cfg *Config) (*fiber.App, error) {
	face, err := labelFace()
	if err != nil {
		return nil, err
	}
	layout := newFormLayout(face)

	backdrop, err := paintBackdrop(layout, windowTitle)
	if err != nil {
		return nil, err
	}

	var mailer mailSender
	if m := newMailer(cfg); m != nil {
		mailer = m
		log.Info().Str("to", cfg.Email.To).Msg("mailing of coupons enabled")
	}

	app := fiber.New(fiber.Config{
		AppName:               windowTitle,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             64 * 1024,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", healthCheck)

	service := NewCouponService(cfg.Output.Dir, mailer)
	NewFormHandler(service, newValidator(), layout, backdrop).Register(app)

	return app, nil
}

// healthCheck handles GET /health.
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": version})
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("coupongen v%s\n", version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	initLogger(cfg)

	app, err := newApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up form")
	}

	go func() {
		log.Info().Str("url", "http://"+cfg.Server.Addr()).Str("output_dir", cfg.Output.Dir).Msg("coupon form ready")
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("server stopped")
}
