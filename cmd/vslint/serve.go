package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leohentschker/vslint"
	"github.com/leohentschker/vslint/fs"
	vslinthttp "github.com/leohentschker/vslint/http"
	"github.com/leohentschker/vslint/provider"
	"github.com/leohentschker/vslint/rod"
)

var (
	serveAddr     string
	serveCacheDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the design-review server",
	Long: `Runs an HTTP server that renders submitted markup in a headless
browser and reviews the screenshot against the request's design rules.
Model credentials travel with each request; the server holds none.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveCacheDir, "cache-dir", fs.DefaultCacheDir(), "Directory for cached review responses (empty disables caching)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	renderer := rod.NewRenderer(rod.WithRendererLogger(logger))
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn("browser shutdown failed", zap.Error(err))
		}
	}()

	var service vslint.ReviewService = vslint.NewEngine(renderer, provider.NewDispatcher(), vslint.WithEngineLogger(logger))
	if serveCacheDir != "" {
		service = fs.NewService(service, serveCacheDir)
	}

	server := vslinthttp.NewServer(service, vslinthttp.WithServerLogger(logger))
	server.Addr = serveAddr
	if err := server.Open(); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return server.Close()
}
