package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dgallion1/personadoc/internal/api"
	"github.com/dgallion1/personadoc/internal/parser"
	"github.com/dgallion1/personadoc/internal/pipeline"
	"github.com/dgallion1/personadoc/internal/stats"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
			if err := cfg.Validate(); err != nil {
				return eris.Wrap(err, "invalid flags")
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ttl, cleanup := cfg.CacheTTL()
		analyzer := pipeline.NewAnalyzer(cfg.PipelineOptions(), log)
		srv := api.NewServer(analyzer, parser.NewCache(ttl, cleanup), stats.New(time.Hour), log, cfg)

		httpServer := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: time.Duration(cfg.Server.TimeoutSecs) * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting personadoc", "port", cfg.Server.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8090, "HTTP listen port")
	rootCmd.AddCommand(serveCmd)
}
