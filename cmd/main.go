package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jessevdk/go-flags"
	"github.com/rs/cors"

	"chatrouter/clients"
	discordclient "chatrouter/clients/discord"
	slackclient "chatrouter/clients/slack"
	"chatrouter/config"
	"chatrouter/controllers"
	"chatrouter/core/log"
	"chatrouter/handlers"
	"chatrouter/middleware"
	"chatrouter/services/processedmessages"
	"chatrouter/usecases/dispatch"
)

type Options struct {
	Transport string `long:"transport" description:"Chat transport to connect to (slack or discord), overrides TRANSPORT"`
	Port      string `long:"port" description:"HTTP port for the action and health endpoints, overrides PORT"`
	LogLevel  string `long:"log-level" description:"Log level (debug, info, warn, error), overrides LOG_LEVEL"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Error("❌ Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	if opts.Transport != "" {
		if err := os.Setenv("TRANSPORT", opts.Transport); err != nil {
			return fmt.Errorf("failed to apply --transport: %w", err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.AlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "chatrouter",
		LogsURL:     cfg.ServerLogsURL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := mux.NewRouter()
	transport, voteEmojis, err := buildTransport(cfg, router)
	if err != nil {
		return err
	}

	processed := processedmessages.NewProcessedMessagesService(cfg.DedupWindow)
	eventRouter := dispatch.NewRouter(transport, processed)
	registry := dispatch.NewRegistry(eventRouter, cfg.RegistryWorkers)

	if err := registry.Register(
		controllers.NewPingController(),
		controllers.NewEchoController(),
		controllers.NewVoteController(transport, voteEmojis),
	); err != nil {
		return err
	}

	healthHandler := handlers.NewHealthHandler(transport)
	router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")

	sweepTicker := time.NewTicker(cfg.SweepInterval)
	defer sweepTicker.Stop()
	sweep := alertMiddleware.WrapBackgroundTask("SweepProcessedMessages", func() error {
		processed.Sweep()
		return nil
	})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sweepTicker.C:
				_ = sweep()
			}
		}
	}()

	transportErr := make(chan error, 1)
	go func() {
		log.Info("🚀 Starting chat transport", "transport", cfg.Transport)
		transportErr <- transport.Start(ctx)
	}()

	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Slack-Signature", "X-Slack-Request-Timestamp"},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(ctx, server, transportErr)
}

// buildTransport connects the configured chat platform and mounts its HTTP endpoints
func buildTransport(cfg *config.AppConfig, router *mux.Router) (clients.ChatClient, controllers.VoteEmojis, error) {
	switch cfg.Transport {
	case config.TransportSlack:
		client := slackclient.NewSlackClient(cfg.SlackConfig.BotToken, cfg.SlackConfig.AppToken)
		actionsHandler := handlers.NewSlackActionsHandler(cfg.SlackConfig.SigningSecret, client)
		router.HandleFunc("/slack/actions", actionsHandler.HandleSlackAction).Methods("POST")
		return client, controllers.VoteEmojis{Ballot: "ballot_box_with_ballot", Upvote: "+1"}, nil
	case config.TransportDiscord:
		client, err := discordclient.NewDiscordClient(cfg.DiscordConfig.BotToken)
		if err != nil {
			return nil, controllers.VoteEmojis{}, err
		}
		return client, controllers.VoteEmojis{Ballot: "🗳️", Upvote: "👍"}, nil
	default:
		return nil, controllers.VoteEmojis{}, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

func handleGracefulShutdown(ctx context.Context, server *http.Server, transportErr <-chan error) error {
	go func() {
		log.Info("✅ Listening", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("❌ Server error", "error", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("🛑 Shutdown signal received, cleaning up...")
	case err := <-transportErr:
		if err != nil {
			runErr = fmt.Errorf("chat transport stopped: %w", err)
			log.Error("❌ Chat transport stopped", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ Server shutdown error", "error", err)
		return errors.Join(runErr, err)
	}

	log.Info("✅ Server stopped gracefully")
	return runErr
}
