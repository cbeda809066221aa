package nowplaying

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"PromptFM/logger"
	"PromptFM/model"
)

// ManualTrack 手动模式的曲目描述文件结构
// 由 `promptfm settrack` 写入，用于没有Spotify会话时的本地调试
type ManualTrack struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
	ProgressMs int64  `json:"progressMs,omitempty"`
	IsPlaying  bool   `json:"isPlaying"`
}

// ManualSource 文件驱动的"正在播放"数据源
// 监听描述文件变更并热加载，编辑文件即可切歌
type ManualSource struct {
	path    string
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	current *model.NowPlaying
}

// NewManualSource 创建手动数据源并开始监听文件
func NewManualSource(path string) (*ManualSource, error) {
	s := &ManualSource{path: path}
	s.reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听失败: %w", err)
	}
	// 监听目录而不是文件本身，编辑器的原子改名写入也能收到事件
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("添加监听目录失败: %w", err)
	}
	s.watcher = watcher

	go s.watch()
	return s, nil
}

// Name 实现Source接口
func (s *ManualSource) Name() string { return "manual" }

// Current 返回描述文件对应的播放快照
// 文件不存在或未在播放时返回(nil, nil)
func (s *ManualSource) Current() (*model.NowPlaying, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, nil
	}
	np := *s.current
	return &np, nil
}

// Close 停止文件监听
func (s *ManualSource) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *ManualSource) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.reload()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("manual track watcher error", logger.ErrorField(err))
		}
	}
}

func (s *ManualSource) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("读取手动曲目文件失败", logger.String("path", s.path), logger.ErrorField(err))
		}
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		return
	}

	var mt ManualTrack
	if err := json.Unmarshal(data, &mt); err != nil {
		logger.Warn("解析手动曲目文件失败", logger.String("path", s.path), logger.ErrorField(err))
		return
	}

	np := manualToNowPlaying(mt)
	s.mu.Lock()
	s.current = np
	s.mu.Unlock()

	if np != nil {
		logger.Info("manual track updated",
			logger.String("title", np.Title),
			logger.String("artist", np.Artist))
	}
}

// manualToNowPlaying 把描述文件转成播放快照，字段缺省时给出可用默认值
func manualToNowPlaying(mt ManualTrack) *model.NowPlaying {
	if mt.Title == "" || mt.Artist == "" {
		return nil
	}
	duration := mt.DurationMs
	if duration <= 0 {
		duration = 5 * 60 * 1000 // 未提供时长时按5分钟处理
	}

	id := "manual-" + strings.ToLower(strings.ReplaceAll(mt.Title+"-"+mt.Artist, " ", "-"))
	return &model.NowPlaying{
		TrackID:    id,
		Title:      mt.Title,
		Artist:     mt.Artist,
		Album:      mt.Album,
		DurationMs: duration,
		ProgressMs: mt.ProgressMs,
		IsPlaying:  mt.IsPlaying,
	}
}
