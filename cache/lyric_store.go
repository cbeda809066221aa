package cache

import (
	"sync"

	"PromptFM/logger"
	"PromptFM/model"
)

// SyncedProvider 时间同步歌词来源
// 未找到时返回(nil, nil)
type SyncedProvider interface {
	Lookup(title, artist, album string, durationSec int) (model.LyricTrack, error)
}

// PlainProvider 纯文本歌词来源
// 未找到时返回("", nil)
type PlainProvider interface {
	Lookup(title, artist string) (string, error)
}

// LyricStore 按曲目ID键控的歌词缓存
// 固定曲目的歌词不会变，条目没有TTL，进程生命周期内有效；
// 每个曲目ID最多发起一轮上游查询（同步优先，纯文本回退），
// 两个来源都失败也只缓存负结果，不向调用方抛错
type LyricStore struct {
	synced     SyncedProvider
	plain      PlainProvider
	maxChars   int
	maxEntries int // 0表示会话内不设上限

	mu      sync.Mutex
	entries map[string]*model.LyricEntry
	recency []string // 最近使用在尾部，仅在设置了maxEntries时用于淘汰
}

// NewLyricStore 创建歌词缓存
func NewLyricStore(synced SyncedProvider, plain PlainProvider, maxChars, maxEntries int) *LyricStore {
	return &LyricStore{
		synced:     synced,
		plain:      plain,
		maxChars:   maxChars,
		maxEntries: maxEntries,
		entries:    make(map[string]*model.LyricEntry),
	}
}

// Ensure 返回曲目的歌词条目，必要时懒加载
func (s *LyricStore) Ensure(np *model.NowPlaying) *model.LyricEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[np.TrackID]; ok {
		s.touch(np.TrackID)
		return entry
	}

	entry := s.fetch(np)
	s.entries[np.TrackID] = entry
	s.recency = append(s.recency, np.TrackID)
	s.evict()
	return entry
}

// Len 当前缓存条目数
func (s *LyricStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// fetch 执行一轮上游查询：同步歌词优先，纯文本回退，最后负结果
func (s *LyricStore) fetch(np *model.NowPlaying) *model.LyricEntry {
	lines, err := s.synced.Lookup(np.Title, np.Artist, np.Album, int(np.DurationMs/1000))
	if err != nil {
		logger.Warn("synced lyrics lookup failed",
			logger.String("title", np.Title),
			logger.ErrorField(err))
	}
	if len(lines) > 0 {
		logger.Debug("lyrics cached",
			logger.String("trackId", np.TrackID),
			logger.String("kind", "synced"),
			logger.Int("lines", len(lines)))
		return &model.LyricEntry{Kind: model.LyricSynced, Lines: lines}
	}

	snippet, err := s.plain.Lookup(np.Title, np.Artist)
	if err != nil {
		logger.Warn("plain lyrics lookup failed",
			logger.String("title", np.Title),
			logger.ErrorField(err))
	}
	if snippet != "" {
		snippet = truncateSnippet(snippet, s.maxChars)
		logger.Debug("lyrics cached",
			logger.String("trackId", np.TrackID),
			logger.String("kind", "plain"),
			logger.Int("chars", len(snippet)))
		return &model.LyricEntry{Kind: model.LyricPlain, Snippet: snippet}
	}

	logger.Debug("lyrics cached",
		logger.String("trackId", np.TrackID),
		logger.String("kind", "none"))
	return &model.LyricEntry{Kind: model.LyricNone}
}

// touch 把条目移到最近使用端
func (s *LyricStore) touch(trackID string) {
	if s.maxEntries == 0 {
		return
	}
	for i, id := range s.recency {
		if id == trackID {
			s.recency = append(append(s.recency[:i:i], s.recency[i+1:]...), trackID)
			return
		}
	}
}

// evict 超出上限时淘汰最久未使用的条目
func (s *LyricStore) evict() {
	if s.maxEntries == 0 {
		return
	}
	for len(s.entries) > s.maxEntries && len(s.recency) > 0 {
		oldest := s.recency[0]
		s.recency = s.recency[1:]
		delete(s.entries, oldest)
		logger.Debug("lyric entry evicted", logger.String("trackId", oldest))
	}
}

// truncateSnippet 按字符数截断片段，保持UTF-8完整
// 省略号计入上限，截断结果不会超过maxChars个字符
func truncateSnippet(text string, maxChars int) string {
	const ellipsis = "..."
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}
	if maxChars <= len(ellipsis) {
		return string(runes[:maxChars])
	}
	cut := string(runes[:maxChars-len(ellipsis)])
	// 尽量在词边界收尾
	if idx := lastSpace(cut); idx > 0 {
		cut = cut[:idx]
	}
	return cut + ellipsis
}

func lastSpace(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}
