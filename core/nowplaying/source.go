package nowplaying

import "PromptFM/model"

// Source 统一的"正在播放"数据源接口
// 返回(nil, nil)表示当前没有播放；返回错误表示上游不可用
// 两种情况都由上层缓存记为absent，调用方不会收到硬错误
type Source interface {
	// Current 获取当前播放快照
	Current() (*model.NowPlaying, error)

	// Name 数据源标识，如 "spotify"、"manual"
	Name() string
}
