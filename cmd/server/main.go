package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/auth"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/config"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/engine"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/event"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/httpapi"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/logging"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/questions"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/results"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		verbose    bool
	)

	root := &cobra.Command{
		Use:          "quiz-server",
		Short:        "Live trivia buzzer server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = os.Getenv(config.EnvPrefix + "_CONFIG")
			}
			return run(cmd.Context(), configFile, verbose)
		},
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "config file (json, yaml or toml); defaults to $QUIZ_CONFIG")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(&cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash usable as a password in the config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	})
	return root
}

func run(parent context.Context, configFile string, verbose bool) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := config.Default()
	if err := config.Load(configFile, &cfg); err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	bank, err := questions.Load(cfg.QuestionsFile)
	if err != nil {
		log.Error("failed to load questions, starting with an empty bank", zap.String("file", cfg.QuestionsFile), zap.Error(err))
		bank = nil
	}
	if len(bank) == 0 {
		log.Warn("question bank is empty", zap.String("file", cfg.QuestionsFile))
	} else {
		log.Info("questions loaded", zap.Int("count", len(bank)), zap.String("file", cfg.QuestionsFile))
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus(log.Named("bus"))
	defer bus.Stop()

	var history results.Lister
	if cfg.Results.DSN != "" {
		store, err := results.Open(ctx, cfg.Results.DSN, log.Named("results"))
		if err != nil {
			return err
		}
		defer drainThenClose(bus, store, log)
		store.Subscribe(bus)
		history = store
		log.Info("win history enabled")
	}

	lb := lobby.NewLobby(ctx, engine.NewSession(bank), log.Named("lobby"), bus)

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Lobby: lb,
		WS: ws.Options{
			Credentials:    cfg.Credentials(),
			OriginPatterns: cfg.HTTP.OriginPatterns,
		},
		Results:   history,
		PublicURL: cfg.HTTP.PublicURL,
		Log:       log.Named("http"),
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTP.Bind, strconv.Itoa(cfg.HTTP.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		lb.Send(lobby.Shutdown{})

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()
	<-lb.Done()
	return err
}

// drainThenClose lets in-flight event handlers finish before c goes away.
func drainThenClose(bus *event.Bus, c io.Closer, log *zap.Logger) {
	bus.Stop()
	if err := c.Close(); err != nil {
		log.Warn("close failed", zap.Error(err))
	}
}
