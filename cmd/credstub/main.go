package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/sessiongate/internal/credstub"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

type config struct {
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port         int           `env:"PORT" envDefault:"8000"`
	BaseURL      string        `env:"BASE_URL" envDefault:"http://localhost:8000"`
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	DatabaseFile string        `env:"DATABASE_FILE" envDefault:"credstub.db"`
	OIDCEnabled  bool          `env:"OIDC_ENABLED" envDefault:"true"`
	AccessTTL    time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL   time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := slogx.New(slogx.Config{
		Service: "credstub",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	srv, err := credstub.NewServer(credstub.Config{
		JWTSecret:    cfg.JWTSecret,
		DatabaseFile: cfg.DatabaseFile,
		OIDCEnabled:  cfg.OIDCEnabled,
		AccessTTL:    cfg.AccessTTL,
		RefreshTTL:   cfg.RefreshTTL,
		BaseURL:      cfg.BaseURL,
	}, logger)
	if err != nil {
		log.Fatalf("failed to initialize credential store: %v", err)
	}
	defer srv.Close()

	logger.Info("credential store starting", "port", cfg.Port, "oidc_enabled", cfg.OIDCEnabled)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 3 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
