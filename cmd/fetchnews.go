package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/avesovich/reporting-with-rss-news/internal/api"
	"github.com/avesovich/reporting-with-rss-news/internal/config"
	"github.com/avesovich/reporting-with-rss-news/internal/container"
	"github.com/spf13/cobra"
)

// fetchNewsCmd represents the fetch-news command
var fetchNewsCmd = &cobra.Command{
	Use:   "fetch-news",
	Short: "Fetch the latest articles from the RSS feeds",
	Long: `Fetch the configured cybersecurity RSS feeds once and store new
items. Existing items are refreshed in place; a failing feed is skipped
without aborting the run. Useful from cron when the server's built-in
refresh loop is not wanted.`,
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

		log.Println("Fetching news RSS feeds...")
		stored := ctr.Fetcher().FetchAll(context.Background())
		log.Printf("News articles updated successfully (%d items stored).", stored)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchNewsCmd)

	fetchNewsCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
}
