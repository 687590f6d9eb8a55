// Package cmd defines the CLI commands for the thanks executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/dusty-domains/internal/app"
	"github.com/JakeFAU/dusty-domains/internal/config"
	"github.com/JakeFAU/dusty-domains/internal/screenshot"
	"github.com/JakeFAU/dusty-domains/internal/thanks"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is the set of services commands use. Tests inject their own.
type App interface {
	Close()
	Logger() *zap.Logger
	Handler() *thanks.Handler
	Store() screenshot.Store
	Run(ctx context.Context) error
}

// newApp is the application factory, replaced in tests.
var newApp = func(ctx context.Context, cfgFile string) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.Build(ctx, cfg)
}

// newRootCmd builds the command tree. The returned func closes the app once
// the command has finished, whether or not RunE failed.
func newRootCmd() (*cobra.Command, func()) {
	var (
		cfgFile     string
		appInstance App
	)

	cmd := &cobra.Command{
		Use:   "thanks",
		Short: "Serves the Dusty Domains thank-you page.",
		Long: `thanks renders the page a visitor sees after submitting a site to
Dusty Domains, with the site's screenshot substituted into its social-card
meta tags. It runs as an AWS Lambda function, as a plain HTTP server, or
one page at a time from the command line.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			appInstance = built
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, built))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLambdaCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newSeedCmd())

	closeApp := func() {
		if appInstance != nil {
			appInstance.Close()
			appInstance = nil
		}
	}
	return cmd, closeApp
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	root, closeApp := newRootCmd()
	err := root.ExecuteContext(context.Background())
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
