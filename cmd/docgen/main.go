// Command docgen extracts React component metadata from JavaScript and
// TypeScript sources and serves it as a node graph, a catalog file or an
// MCP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/docgen/pkg/util"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	log        util.LoggerConfig
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{log: util.DefaultLoggerConfig()}
	opts.log.Level = ""
	opts.log.Format = ""

	root := &cobra.Command{
		Use:   "docgen",
		Short: "docgen extracts React component metadata",
		Long: "Extracts components, props, docblocks and doclets from JavaScript and\n" +
			"TypeScript sources into a node graph or a queryable component catalog.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.log.Validate()
		},
	}

	opts.log.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		fmt.Sprintf("config file (default <dir>/%s)", defaultConfigPath))

	root.AddCommand(
		newExtractCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newInspectCmd(opts),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docgen %s\n", version)
		},
	}
}
