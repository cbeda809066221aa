package prompt

import (
	"fmt"
	"sync"
	"time"

	"PromptFM/cache"
	"PromptFM/config"
	"PromptFM/core/lyrics"
	"PromptFM/core/nowplaying"
	"PromptFM/model"
)

// 延迟汇总输出间隔
const statsInterval = 5 * time.Second

// lineUnset 表示当前没有已选中的歌词行（切歌后或位置早于第一行）
const lineUnset int64 = -1

// Resolution 单次解析的结果快照
type Resolution struct {
	Prompt     string            `json:"prompt"`
	Track      *model.NowPlaying `json:"track,omitempty"`
	LyricText  string            `json:"lyricText,omitempty"`
	Style      string            `json:"style,omitempty"`
	ResolvedAt time.Time         `json:"resolvedAt"`
}

// Pipeline 提示词解析流水线
// 每帧由宿主同步调用一次Resolve；所有可变状态都归属于本实例，
// 多实例（比如测试）之间互不影响
type Pipeline struct {
	cfg     *config.Config
	tracks  *cache.TrackCache
	store   *cache.LyricStore
	rotator *StyleRotator
	reducer *KeywordReducer
	builder *Builder
	stats   *LatencyRecorder
	now     func() time.Time

	// 行变化检测状态，仅Resolve内部读写
	lastLineStart int64

	mu   sync.RWMutex
	last Resolution
}

// New 构造流水线实例，配置校验失败时返回错误（唯一的致命错误类）
func New(cfg *config.Config, source nowplaying.Source, synced cache.SyncedProvider, plain cache.PlainProvider, sink SummarySink) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}

	tokens := SeedStyleTokens(cfg.StyleTokens, cfg.GenreHint)
	p := &Pipeline{
		cfg:           cfg,
		tracks:        cache.NewTrackCache(source, cfg.TrackCacheTTL),
		store:         cache.NewLyricStore(synced, plain, cfg.LyricMaxChars, cfg.LyricCacheSize),
		rotator:       NewStyleRotator(tokens, cfg.StyleInterval),
		reducer:       NewKeywordReducer(cfg.StopWords),
		builder:       NewBuilder(cfg.PromptTemplate, cfg.FallbackPrompt, cfg.ArtStyle),
		stats:         NewLatencyRecorder(statsInterval, sink),
		now:           time.Now,
		lastLineStart: lineUnset,
	}
	return p, nil
}

// SetClock 注入时钟到流水线及其下属组件，仅测试使用
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
	p.tracks.SetClock(now)
	p.rotator.SetClock(now)
	p.stats.SetClock(now)
}

// Stats 返回延迟统计器，伴随展示页用
func (p *Pipeline) Stats() *LatencyRecorder {
	return p.stats
}

// Invalidate 显式失效曲目缓存
func (p *Pipeline) Invalidate() {
	p.tracks.Invalidate()
}

// Last 返回最近一次解析结果
func (p *Pipeline) Last() Resolution {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Resolve 执行一次完整解析，总是返回一个字符串
// 上游不可用、无播放、无歌词都只降级，不向宿主报错
func (p *Pipeline) Resolve() Resolution {
	// 阶段1：当前曲目
	t := p.now()
	np, changed := p.tracks.Resolve()
	p.stats.Record(StageTrack, p.now().Sub(t))

	if changed {
		// 切歌：重置歌词绑定与样式轮换
		p.rotator.Reset()
		p.lastLineStart = lineUnset
	}

	// 无曲目或已暂停时走回退串
	if np == nil || !np.IsPlaying {
		res := Resolution{
			Prompt:     p.builder.Build(nil, false),
			ResolvedAt: p.now(),
		}
		p.finish(res)
		return res
	}

	// 阶段2：歌词条目（每个曲目只回源一次）
	t = p.now()
	entry := p.store.Ensure(np)
	p.stats.Record(StageLyrics, p.now().Sub(t))

	// 阶段3：行选择
	t = p.now()
	lyricText := ""
	lineChanged := false
	switch entry.Kind {
	case model.LyricSynced:
		line, ok := lyrics.SelectLine(entry.Lines, np.ProgressMs, p.cfg.PreviewOffset.Milliseconds())
		if ok {
			// 切歌后的第一行不算"行变化"，保证新曲目从第一个样式词开始
			lineChanged = p.lastLineStart != lineUnset && line.StartMs != p.lastLineStart
			p.lastLineStart = line.StartMs
			lyricText = line.Text
		} else {
			p.lastLineStart = lineUnset
		}
	case model.LyricPlain:
		lyricText = entry.Snippet
	}
	p.stats.Record(StageLine, p.now().Sub(t))

	// 阶段4：关键词化简（只作用于歌词文本）
	if p.cfg.KeywordReduce && lyricText != "" {
		t = p.now()
		lyricText = p.reducer.Reduce(lyricText)
		p.stats.Record(StageReduce, p.now().Sub(t))
	}

	// 阶段5：样式词
	t = p.now()
	style := ""
	if p.cfg.StyleRotation {
		style = p.rotator.Advance(lineChanged)
	} else {
		style = p.rotator.Current()
	}
	p.stats.Record(StageStyle, p.now().Sub(t))

	// 阶段6：模板替换
	t = p.now()
	bindings := map[string]string{
		KeySong:   np.Title,
		KeyArtist: np.Artist,
		KeyAlbum:  np.Album,
		KeyLyrics: lyricText,
		KeyStyle:  style,
	}
	promptText := p.builder.Build(bindings, true)
	p.stats.Record(StageBuild, p.now().Sub(t))

	res := Resolution{
		Prompt:     promptText,
		Track:      np,
		LyricText:  lyricText,
		Style:      style,
		ResolvedAt: p.now(),
	}
	p.finish(res)
	return res
}

// finish 记录完整调用并按间隔输出汇总
func (p *Pipeline) finish(res Resolution) {
	p.mu.Lock()
	p.last = res
	p.mu.Unlock()

	p.stats.RecordRun()
	p.stats.MaybeEmit()
}
