package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akolanti/delphi/internal/app"
	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var verbose bool

// buildApp is replaced in tests.
var buildApp = func(ctx context.Context) (*app.App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	level := "error"
	if verbose {
		level = settings.LogLevel
	}
	logger_i.InitTo(os.Stderr, level, settings.LogFile)
	return app.Build(ctx, settings)
}

var rootCmd = &cobra.Command{
	Use:   "delphictl",
	Short: "Administer delphi collections and credentials",
	Long: `delphictl talks to the same Redis, Qdrant and model providers as the API
server, using the same configuration (.env, DELPHI_CONFIG and the environment).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level instead of errors only")
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer logger_i.Close()
	return rootCmd.ExecuteContext(ctx)
}

// adminIdentity is who the CLI acts as.
func adminIdentity(a *app.App) commonModels.Identity {
	return commonModels.Identity{Username: a.Settings.AdminUser, Name: a.Settings.AdminUser, IsAdmin: true}
}
