package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sentinelbot/sentinel/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the sentinel service (http server, telegram bot and scheduler)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.NewApp(configPath).Run()
	},
}

// registerServeCommands 注册服务启动命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
