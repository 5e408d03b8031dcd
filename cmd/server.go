package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/api"
	"github.com/avesovich/reporting-with-rss-news/internal/config"
	"github.com/avesovich/reporting-with-rss-news/internal/container"
	"github.com/avesovich/reporting-with-rss-news/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the reporting API server.
The server listens on the configured host and port and serves the
article workflow, account management, dashboard and news endpoints.
The RSS feeds are refreshed in the background on the configured
interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// Hot-reload the log level when the config file changes.
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				if level, err := logrus.ParseLevel(newCfg.Log.Level); err == nil {
					logger.SetLevel(level)
					api.SetLoggerLevel(level)
				}
			})
			if err := watcher.Start(); err != nil {
				logger.WithField("error", err.Error()).Warn("config watcher not started")
			} else {
				defer watcher.Stop()
			}
		}

		collector := metrics.NewCollector(ctr.DB(), 30*time.Second)
		collector.Start()
		defer collector.Stop()

		// Background feed refresh loop.
		feedCtx, cancelFeeds := context.WithCancel(context.Background())
		defer cancelFeeds()
		go runFeedLoop(feedCtx, ctr, cfg, logger)

		router := api.SetupRoutes(cfg, ctr)
		router.NoRoute(func(c *gin.Context) {
			api.Error(c, http.StatusNotFound, "route not found")
		})

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		go func() {
			logger.WithField("addr", addr).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithField("error", err.Error()).Fatal("failed to start server")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		logger.Info("server exited")
		return nil
	},
}

// runFeedLoop refreshes the RSS feeds once at startup and then on the
// configured interval until ctx is cancelled.
func runFeedLoop(ctx context.Context, ctr *container.Container, cfg *config.Config, logger *logrus.Logger) {
	interval := time.Duration(cfg.Feeds.Interval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	refresh := func() {
		stored := ctr.Fetcher().FetchAll(ctx)
		logger.WithField("stored", stored).Info("news feeds refreshed")
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
}
