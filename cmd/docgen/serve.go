package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/docgen/pkg/catalog"
	mcpserver "github.com/gnana997/docgen/pkg/mcp"
	"github.com/gnana997/docgen/pkg/mcplog"
	"github.com/gnana997/docgen/pkg/pipeline"
)

type serveOptions struct {
	project     projectFlags
	catalogPath string
	watch       bool
	logCalls    string
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var so serveOptions
	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve component metadata to MCP clients over stdio",
		Long: "Extracts dir (default .) and serves the resulting catalog over the MCP\n" +
			"stdio transport. With --catalog a previously extracted catalog is served\n" +
			"instead. Logs go to stderr; stdout carries the protocol.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, &so, dirArg(args))
		},
	}
	so.project.register(cmd)
	cmd.Flags().StringVar(&so.catalogPath, "catalog", "", "serve this catalog file instead of extracting")
	cmd.Flags().BoolVar(&so.watch, "watch", false, "re-extract changed files while serving")
	cmd.Flags().StringVar(&so.logCalls, "log-calls", "", "append a JSON line per tool call to this file")
	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, so *serveOptions, dir string) error {
	calls, err := mcplog.NewLogger(so.logCalls)
	if err != nil {
		return err
	}
	defer calls.Close()

	if so.catalogPath != "" {
		opts.logger(nil)
		qs, err := catalog.LoadAndQuery(so.catalogPath)
		if err != nil {
			return err
		}
		return mcpserver.NewServer(qs, calls).ServeStdio()
	}

	p, err := openProject(opts, &so.project, dir)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.run(ctx); err != nil {
		return err
	}
	srv := mcpserver.NewServer(queryFor(p.catalog()), calls)

	if so.watch {
		w, err := pipeline.NewWatcher(p.pipeline, pipeline.WatchOptions{
			OnUpdate: func(string, int, error) {
				srv.SetQuery(queryFor(p.catalog()))
			},
		}, p.logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	return srv.ServeStdio()
}

func queryFor(cat *catalog.Catalog) *catalog.QueryService {
	return catalog.NewQueryService(cat, cat.BuildIndex())
}
