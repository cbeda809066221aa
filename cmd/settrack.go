package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"PromptFM/core/nowplaying"

	"github.com/spf13/cobra"
)

var (
	setTitle    string
	setArtist   string
	setAlbum    string
	setProgress float64
	setDuration float64
	setPaused   bool
)

var settrackCmd = &cobra.Command{
	Use:   "settrack",
	Short: "写入手动模式的曲目描述文件",
	Long:  `手动模式下模拟"正在播放"：写入描述文件后，运行中的服务会通过文件监听自动切歌`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if setTitle == "" || setArtist == "" {
			return fmt.Errorf("--title 和 --artist 不能为空")
		}

		mt := nowplaying.ManualTrack{
			Title:      setTitle,
			Artist:     setArtist,
			Album:      setAlbum,
			DurationMs: int64(setDuration * 1000),
			ProgressMs: int64(setProgress * 1000),
			IsPlaying:  !setPaused,
		}

		if err := os.MkdirAll(filepath.Dir(cfg.ManualTrackPath), 0755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
		data, err := json.MarshalIndent(mt, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.ManualTrackPath, data, 0644); err != nil {
			return fmt.Errorf("写入描述文件失败: %w", err)
		}

		fmt.Printf("manual track written to %s\n", cfg.ManualTrackPath)
		return nil
	},
}

func init() {
	settrackCmd.Flags().StringVar(&setTitle, "title", "", "曲名")
	settrackCmd.Flags().StringVar(&setArtist, "artist", "", "歌手")
	settrackCmd.Flags().StringVar(&setAlbum, "album", "", "专辑")
	settrackCmd.Flags().Float64Var(&setProgress, "progress", 0, "播放进度（秒）")
	settrackCmd.Flags().Float64Var(&setDuration, "duration", 300, "曲目时长（秒）")
	settrackCmd.Flags().BoolVar(&setPaused, "paused", false, "标记为暂停状态")
	rootCmd.AddCommand(settrackCmd)
}
