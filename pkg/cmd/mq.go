package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinelbot/sentinel/pkg/internal/storage/mq"
)

var (
	mqCmd = &cobra.Command{
		Use:   "mq",
		Short: "Message queue related commands",
	}

	mqListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list all registered mq types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")
			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+string(t))
			}
		},
	}
)

// registerMQCommands 注册消息队列相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)

	mqCmd.AddCommand(mqListCmd)
}
