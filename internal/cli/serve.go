package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mpavel/diffscope/internal/analyze"
	"github.com/mpavel/diffscope/internal/browser"
	"github.com/mpavel/diffscope/internal/config"
	"github.com/mpavel/diffscope/internal/github"
	"github.com/mpavel/diffscope/internal/server"
	"github.com/mpavel/diffscope/web"
)

var (
	flagAddr string
	flagOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI",
	Long:  "Serve a web form that analyzes pasted diffs or GitHub PR URLs and renders HTML reports. Prometheus metrics are exposed on /metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig, buildOverrides())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		analyzer, err := analyze.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		log := slog.New(slog.NewTextHandler(os.Stderr, nil))
		srv, err := server.New(analyzer, github.NewClient(), web.Assets, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		ln, err := net.Listen("tcp", flagAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: listen %s: %v\n", flagAddr, err)
			exitCode = ExitRuntimeError
			return nil
		}

		url := fmt.Sprintf("http://%s", ln.Addr())
		log.Info("listening", "url", url)

		if flagOpen {
			if err := browser.Open(url); err != nil {
				log.Warn("could not open browser", "err", err)
			}
		}

		httpServer := &http.Server{Handler: srv.Handler()}

		// Graceful shutdown on Ctrl+C
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			log.Info("shutting down")
			_ = httpServer.Close()
		}()

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addAnalysisFlags(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "localhost:8787", "Listen address")
	serveCmd.Flags().BoolVar(&flagOpen, "open", false, "Open the web UI in the default browser")
}
