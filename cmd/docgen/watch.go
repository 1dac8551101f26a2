package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gnana997/docgen/pkg/pipeline"
)

type watchOptions struct {
	project     projectFlags
	out         string
	metricsAddr string
	debounce    time.Duration
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var wo watchOptions
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Extract a source tree and re-extract files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, &wo, dirArg(args), nil)
		},
	}
	wo.project.register(cmd)
	cmd.Flags().StringVarP(&wo.out, "out", "o", "", "catalog file rewritten after every change")
	cmd.Flags().StringVar(&wo.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	cmd.Flags().DurationVar(&wo.debounce, "debounce", 200*time.Millisecond, "quiet period before a changed file is re-extracted")
	return cmd
}

// runWatch blocks until ctx is done. ready, when set, receives the metrics
// listener address (or "") once the initial extraction finished.
func runWatch(ctx context.Context, opts *globalOptions, wo *watchOptions, dir string, ready chan<- string) error {
	p, err := openProject(opts, &wo.project, dir)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.run(ctx); err != nil {
		return err
	}

	var writeMu sync.Mutex
	writeCatalog := func() {
		if wo.out == "" {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := p.catalog().WriteFile(wo.out); err != nil {
			p.logger.Error("Failed to write catalog", "error", err)
		}
	}
	writeCatalog()

	addr := ""
	if wo.metricsAddr != "" {
		srv, ln, err := startMetricsServer(p.metrics, wo.metricsAddr)
		if err != nil {
			return err
		}
		addr = ln.Addr().String()
		p.logger.Info("Serving metrics", "addr", addr)
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				p.logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	w, err := pipeline.NewWatcher(p.pipeline, pipeline.WatchOptions{
		Debounce: wo.debounce,
		OnUpdate: func(path string, components int, err error) {
			if err == nil {
				p.logger.Info("Updated", "file", path, "components", components)
			}
			writeCatalog()
		},
	}, p.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	if ready != nil {
		ready <- addr
	}
	<-ctx.Done()
	return nil
}

// startMetricsServer registers the pipeline metrics plus the Go runtime
// collectors on a fresh registry and listens on addr.
func startMetricsServer(m *pipeline.Metrics, addr string) (*http.Server, net.Listener, error) {
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}, ln, nil
}
