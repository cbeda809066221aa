package cmd

import (
	"PromptFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动解析循环与伴随展示服务",
	Long:  `按帧间隔持续解析提示词，并通过HTTP API与WebSocket推送给展示端`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
