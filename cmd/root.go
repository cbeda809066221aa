package cmd

import (
	"fmt"
	"os"

	"PromptFM/config"
	"PromptFM/logger"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "promptfm",
	Short: "PromptFM turns the currently playing song into image prompts.",
	Long:  `PromptFM 将当前播放的歌曲（曲名、歌手、同步歌词）实时解析成图像生成提示词，供实时扩散流水线按帧取用`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogPath,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		})
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
