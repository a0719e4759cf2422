package main

import (
	"fmt"
	"os"

	"github.com/de-tools/pricelist-atlas/pkg/config"
	"github.com/de-tools/pricelist-atlas/pkg/server"
	"github.com/de-tools/pricelist-atlas/pkg/services/catalog"
	"github.com/de-tools/pricelist-atlas/pkg/services/chat"
	"github.com/de-tools/pricelist-atlas/pkg/store/pricelist"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Pricelist Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the configuration file (defaults and environment only when empty)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	store, err := pricelist.DefaultRegistry().Create(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to create pricing store: %w", err)
	}
	catalogService := catalog.NewService(store, cfg.Pricing.Family)

	chatProxy, err := chat.NewFromConfig(ctx, cfg.Chat)
	if err != nil {
		return fmt.Errorf("failed to create chat proxy: %w", err)
	}
	if !chatProxy.Configured() {
		logger.Warn().Msg("GEMINI_API_KEY is not set, chat requests will be rejected")
	}

	logger.Info().
		Str("backend", cfg.Store.Backend).
		Str("family", cfg.Pricing.Family).
		Msg("pricing store ready")

	api := server.NewWebAPI(server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Family:          cfg.Pricing.Family,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Dependencies: server.Dependencies{
			Catalog: catalogService,
			Chat:    chatProxy,
			Logger:  logger,
		},
	})

	return api.Start()
}
