package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/pricelist-atlas/pkg/client"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	apiURL   string
	newAPI   func(baseURL string) commands.API
	sync     commands.SyncFactory
	reporter *export.Reporter
	logger   zerolog.Logger
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// NewAPI builds the API client; nil uses the HTTP client.
	NewAPI func(baseURL string) commands.API
	Sync   commands.SyncFactory
	Output io.Writer
	Logger *zerolog.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewAPI == nil {
		opts.NewAPI = func(baseURL string) commands.API {
			return client.New(baseURL, nil)
		}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	cli := &CLI{
		newAPI:   opts.NewAPI,
		sync:     opts.Sync,
		reporter: export.NewReporter(opts.Output),
		logger:   logger,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(cli.logger.WithContext(ctx))
}

// SetArgs overrides os.Args, for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) api() commands.API {
	return cli.newAPI(cli.apiURL)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pricelist",
		Short:         "Browse AWS price lists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cli.apiURL, "api-url", client.DefaultBaseURL, "Base URL of the pricelist web API")

	cmd.AddCommand(commands.NewServicesCmd(cli.api, cli.reporter))
	cmd.AddCommand(commands.NewVersionsCmd(cli.api, cli.reporter))
	cmd.AddCommand(commands.NewRegionsCmd(cli.api, cli.reporter))
	cmd.AddCommand(commands.NewProductsCmd(cli.api, cli.reporter))
	cmd.AddCommand(commands.NewDurationsCmd(cli.api, cli.reporter))
	cmd.AddCommand(commands.NewTableCmd(cli.api, cli.reporter))
	cmd.AddCommand(commands.NewChatCmd(cli.api, cli.reporter))
	if cli.sync != nil {
		cmd.AddCommand(commands.NewSyncCmd(cli.sync, cli.reporter))
	}

	return cmd
}
