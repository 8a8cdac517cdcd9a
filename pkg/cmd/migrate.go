package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	"github.com/sentinelbot/sentinel/pkg/internal/storage/db"
	"github.com/sentinelbot/sentinel/pkg/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply the ledger database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.InitConfig(configPath); err != nil {
			return fmt.Errorf("init config: %w", err)
		}

		log.Init()

		cfg := configs.GetConfig()

		client, err := db.New(cmd.Context(), cfg.DB, false)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}

		if err := ledger.New(client).AutoMigrate(); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ledger schema migrated")

		return nil
	},
}

// registerMigrateCommands 注册数据库迁移命令.
func registerMigrateCommands() {
	rootCmd.AddCommand(migrateCmd)
}
