package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fbettag/unifi-exporter/internal/config"
	"github.com/fbettag/unifi-exporter/internal/exporter"
	"github.com/fbettag/unifi-exporter/internal/handlers"
	"github.com/fbettag/unifi-exporter/internal/metrics"
	"github.com/fbettag/unifi-exporter/internal/unifi"
)

var (
	Version = "dev" // Set by build process
)

var (
	configFile    = flag.String("config", "", "Path to optional YAML configuration file")
	controllerURL = flag.String("controller-url", "", "UniFi controller URL (e.g. https://192.168.1.1:8443)")
	apiKey        = flag.String("api-key", "", "UniFi API key (use either API key or username/password)")
	username      = flag.String("username", "", "UniFi controller username")
	password      = flag.String("password", "", "UniFi controller password")
	site          = flag.String("site", "", "UniFi site name")
	port          = flag.Int("port", 0, "Port to expose metrics on")
	pollInterval  = flag.Int("poll-interval", 0, "Poll interval in seconds")
	httpTimeout   = flag.Int("http-timeout", 0, "HTTP timeout in seconds")
	verifySSL     = flag.Bool("verify-ssl", true, "Verify controller TLS certificates")
	logLevel      = flag.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	showVersion   = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("UniFi Network Exporter %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Infof("Starting UniFi Network Exporter %s", Version)

	client, err := unifi.NewClient(&unifi.Config{
		URL:       cfg.ControllerURL,
		APIKey:    cfg.APIKey,
		User:      cfg.Username,
		Pass:      cfg.Password,
		Site:      cfg.Site,
		Timeout:   cfg.HTTPTimeoutDuration(),
		VerifySSL: cfg.VerifySSL,
		Logger:    unifi.NewLogrusAdapter(logger),
	})
	if err != nil {
		logger.Fatalf("Failed to create UniFi client: %v", err)
	}

	store := metrics.NewStore()
	exp := exporter.New(client, store, cfg.PollIntervalDuration(), logger)
	app := &handlers.App{Store: store, Logger: logger}

	// Create server with timeouts
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutting down...")
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		exp.Run(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Infof("Metrics server listening on %s", server.Addr)
		// Transport errors on the serving side must not take the poll
		// loop down with them.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Server error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Shutdown error: %v", err)
	}
}

// applyFlagOverrides copies explicitly-set flag values over the loaded
// configuration. Flags beat both the config file and the environment.
func applyFlagOverrides(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "controller-url":
			cfg.ControllerURL = *controllerURL
		case "api-key":
			cfg.APIKey = *apiKey
		case "username":
			cfg.Username = *username
		case "password":
			cfg.Password = *password
		case "site":
			cfg.Site = *site
		case "port":
			cfg.Port = *port
		case "poll-interval":
			cfg.PollInterval = *pollInterval
		case "http-timeout":
			cfg.HTTPTimeout = *httpTimeout
		case "verify-ssl":
			cfg.VerifySSL = *verifySSL
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
}
