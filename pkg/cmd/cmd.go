// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// configPath 配置文件路径，或包含 config.* 的目录.
	configPath string
	// debug 额外输出调试信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "sentinel",
		Short: "A file sentinel service: ingest, dedup, field extraction and search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./", "config file or directory")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	registerServeCommands()
	registerMigrateCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
