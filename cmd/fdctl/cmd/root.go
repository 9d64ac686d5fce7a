// Package cmd provides the fdctl commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/core/services"
	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/SscSPs/finance_dashboard/internal/platform/session"
	"github.com/SscSPs/finance_dashboard/internal/platform/store"
	"github.com/spf13/cobra"
)

var (
	debug      bool
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fdctl",
	Short: "Operate the finance dashboard from the command line",
	Long: `fdctl signs in against the configured store and runs dashboard operations
without the browser.

Example:
  fdctl summary --email ana@example.com --password ... --month 7 --year 2024
  fdctl claim --email ana@example.com --password ...
  fdctl enqueue --date 05/03/2024 --establishment Padaria --amount 12,50 --kind despesa --category Alimentação`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := slog.LevelWarn
		if debug {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)

		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(createUserCmd)
}

// app is an opened store with the services built on it.
type app struct {
	backend  *store.Store
	services *portssvc.ServiceContainer
}

func openApp(ctx context.Context) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(cfg.SessionMaxEntries, cfg.JWTExpiryDuration)
	hub := services.NewRealtimeHub(backend.Repos.ChangeFeed, logger)
	container, err := services.NewServiceContainer(cfg, backend.Repos, sessions, hub)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &app{backend: backend, services: container}, nil
}

func (a *app) Close() {
	a.backend.Close()
}

// signIn opens a session; the caller signs out when done.
func (a *app) signIn(ctx context.Context, email, password string) (domain.Session, error) {
	result, err := a.services.Auth.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign-in failed: %w", err)
	}
	return result.Session, nil
}

func (a *app) signOut(ctx context.Context, sess domain.Session) {
	if err := a.services.Auth.Logout(ctx, sess.ID); err != nil {
		logger.Warn("Sign-out failed", slog.String("error", err.Error()))
	}
}

func addCredentialFlags(c *cobra.Command, email, password *string) {
	c.Flags().StringVar(email, "email", "", "account e-mail")
	c.Flags().StringVar(password, "password", "", "account password")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
