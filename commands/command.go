package commands

import (
	"github.com/spf13/cobra"

	"github.com/mauzo/sheets-gateway/config"
	"github.com/mauzo/sheets-gateway/log"
)

const APP = "sheets-gateway"

// VERSION is overridden at build time with -ldflags "-X github.com/mauzo/sheets-gateway/commands.VERSION=..."
var VERSION = "v0.1.0"

// Options are the global command line options shared by all commands.
type Options struct {
	Debug bool
	Env   []string
}

// NewRootCmd creates the root command. Without a subcommand it runs the HTTP server.
func NewRootCmd() *cobra.Command {
	options := Options{}

	root := &cobra.Command{
		Use:           APP,
		Short:         "HTTP gateway for a Google Sheets spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(options.Env...); err != nil {
				return err
			}

			log.SetDebug(options.Debug)

			return nil
		},
	}

	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	root.PersistentFlags().StringSliceVar(&options.Env, "env", options.Env, "Environment file(s) to load. Defaults to .env")

	serve := NewServeCmd(&options)

	root.RunE = serve.RunE
	root.AddCommand(serve, NewGetCmd(&options), NewVersionCmd())

	return root
}
