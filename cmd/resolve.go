package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"PromptFM/core/lyrics"
	"PromptFM/core/nowplaying"
	"PromptFM/core/prompt"

	"github.com/spf13/cobra"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "执行一次解析并打印提示词",
	Long:  `一次性跑完整个解析流水线，用于调试配置、模板与数据源`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var source nowplaying.Source
		if cfg.InputSource == "manual" {
			src, err := nowplaying.NewManualSource(cfg.ManualTrackPath)
			if err != nil {
				return err
			}
			defer src.Close()
			source = src
		} else {
			source = nowplaying.NewSpotifyClient(
				cfg.SpotifyClientID,
				cfg.SpotifyClientSecret,
				cfg.SpotifyTokenPath,
				cfg.TrackLookupTimeout)
		}

		pipe, err := prompt.New(cfg, source,
			lyrics.NewSyncedClient(cfg.SyncedLyricsURL),
			lyrics.NewPlainClient(cfg.PlainLyricsURL),
			nil)
		if err != nil {
			return err
		}

		res := pipe.Resolve()
		if resolveJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Println(res.Prompt)
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "输出完整解析结果JSON")
	rootCmd.AddCommand(resolveCmd)
}
