package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/viswayadeedya/TodoIQ-BE/ai"
	"github.com/viswayadeedya/TodoIQ-BE/auth"
	"github.com/viswayadeedya/TodoIQ-BE/database"
	"github.com/viswayadeedya/TodoIQ-BE/handlers"
	"github.com/viswayadeedya/TodoIQ-BE/middleware"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the TodoIQ HTTP API.

Examples:
  todoiq serve
  todoiq serve --config todoiq.yaml --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(validateAll)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := newLogger(os.Stderr, cfg.Log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := database.Open(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}

			if cfg.AI.APIKey == "" {
				logger.Warn("GROQ_API_KEY is not set, AI endpoints will fail")
			}
			client := ai.NewChatClient(cfg.AI)
			tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

			h := &handlers.Handlers{
				Tasks:      database.NewTaskStore(db),
				Users:      database.NewUserStore(db),
				Tokens:     tokens,
				Subtasks:   ai.NewDecomposer(client, cfg.AI.SubtaskTemperature, logger),
				Priorities: ai.NewReprioritizer(client, cfg.AI.PriorityTemperature, logger),
				DB:         db,
				Logger:     logger,
			}
			router := handlers.NewRouter(h, middleware.NewAuthenticator(tokens, logger))

			server := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      cfg.AI.Timeout + 15*time.Second,
				IdleTimeout:       2 * time.Minute,
			}
			return run(ctx, server, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, server *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
