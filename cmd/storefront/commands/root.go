package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"storefront/internal/apierr"
	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/ui"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	storeLocation string
	assumeYes     bool
	jsonOutput    bool
	verbose       bool

	application *app.App
	closeStore  = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront client - browse the catalog and manage a seller's products and images",
	Long: `storefront talks to the storefront API on behalf of one user.

The session survives between invocations: login stores the bearer token
in the session store (a JSON file by default, or PostgreSQL with a
postgres:// location) and every later command reuses it.

Configuration comes from the environment or a .env file:
  API_URL, AUTH_URL, USERS_URL, PRODUCTS_URL, MEDIA_URL,
  PRODUCTION, ENABLE_DEBUG_LOGGING, SESSION_STORE`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := closeStore(); err != nil {
			fmt.Fprintln(os.Stderr, "close session store:", err)
		}
		logger.Sync()
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeLocation, "store", defaultStoreLocation(), "Session store: a file path, \"memory\", or a postgres:// DSN")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func defaultStoreLocation() string {
	if loc := os.Getenv("SESSION_STORE"); loc != "" {
		return loc
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "memory"
	}
	return filepath.Join(dir, "storefront", "session.json")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	err = logger.Init(logger.Config{
		Production: cfg.Production,
		Debug:      cfg.EnableDebugLogging,
		Quiet:      !verbose,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, closer, err := app.OpenStore(ctx, storeLocation)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	closeStore = closer

	console := ui.NewConsole(os.Stdin, os.Stderr)
	console.AssumeYes = assumeYes

	nav := &ui.LogNavigator{OnNavigate: func(route string) {
		if route == ui.RouteLogin {
			fmt.Fprintln(os.Stderr, "Session expired. Run `storefront login` to sign in again.")
		}
	}}

	application, err = app.New(ctx, app.Options{
		Env:          cfg,
		Store:        store,
		Notifier:     console,
		Dialog:       console,
		Navigator:    nav,
		SuccessDelay: time.Millisecond,
	})
	return err
}

// describe prefers the server's own message for API failures.
func describe(err error) string {
	return apierr.MessageOf(err)
}

func requireSignedIn() error {
	if !application.Session.IsAuthenticated() {
		return fmt.Errorf("not signed in, run `storefront login` first")
	}
	return nil
}
