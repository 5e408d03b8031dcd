package cmd

import (
	"fmt"
	"log"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/config"
	"github.com/avesovich/reporting-with-rss-news/internal/database"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the initial administrator account",
	Long: `Create the first administrator account so the instance can be
managed. Fails if the email is already registered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" || password == "" {
			return fmt.Errorf("--email and --password are required")
		}
		if len(password) < auth.MinPasswordLength {
			return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Connect(cfg.Database, config.IsProduction(cfg))
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		var count int64
		if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing account: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("an account with email %s already exists", email)
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		admin := &model.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleAdministrator,
		}
		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create administrator: %w", err)
		}

		log.Printf("Administrator account created: %s (%s)", admin.Name, admin.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	seedCmd.Flags().String("name", "Administrator", "Display name for the account")
	seedCmd.Flags().String("email", "", "Email for the account")
	seedCmd.Flags().String("password", "", "Password for the account")
}
