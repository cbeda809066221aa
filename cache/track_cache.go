package cache

import (
	"sync"
	"time"

	"PromptFM/core/nowplaying"
	"PromptFM/logger"
	"PromptFM/model"
)

// trackState 缓存条目状态机：empty -> fresh/absent，之后按TTL在两者间轮换
// absent与empty必须可区分：absent是一次已完成但没有结果的查询，同样受TTL保护，
// 避免上游持续失败时每帧都去请求
type trackState int8

const (
	stateEmpty trackState = iota
	stateFresh
	stateAbsent
)

// TrackCache 以TTL为界的"当前曲目"查询缓存
// 由单个解析流水线实例持有；内部互斥锁仅用于宿主从多个goroutine调用的情况
type TrackCache struct {
	source nowplaying.Source
	ttl    time.Duration
	now    func() time.Time // 可注入时钟，测试用

	mu        sync.Mutex
	state     trackState
	value     *model.NowPlaying // 上次返回给调用方的快照，nil表示absent
	fetchedAt time.Time
}

// NewTrackCache 创建曲目缓存
func NewTrackCache(source nowplaying.Source, ttl time.Duration) *TrackCache {
	return &TrackCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetClock 注入时钟，仅测试使用
func (c *TrackCache) SetClock(now func() time.Time) {
	c.now = now
}

// Resolve 返回当前播放快照（nil表示absent）以及曲目身份是否发生了变化
// TTL内直接命中，零次上游调用；过期时恰好发起一次上游查询并整体替换条目
// changed为true时调用方需要重置歌词绑定与样式轮换器
func (c *TrackCache) Resolve() (np *model.NowPlaying, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.state != stateEmpty && now.Sub(c.fetchedAt) < c.ttl {
		// 命中时返回值与上次相同，身份不可能变化
		return c.value, false
	}

	// 过期或首次：刷新。上游调用由其客户端的超时约束，
	// 卡住的上游最多拖一个超时周期，然后按absent缓存
	fresh, err := c.source.Current()
	if err != nil {
		logger.Warn("now-playing lookup failed, caching absent",
			logger.String("source", c.source.Name()),
			logger.ErrorField(err))
		fresh = nil
	}

	// 条目整体替换；absent之间的轮换不算身份变化
	changed = !c.value.SameTrack(fresh)
	c.fetchedAt = now
	c.value = fresh
	if fresh != nil {
		c.state = stateFresh
	} else {
		c.state = stateAbsent
	}

	if changed && fresh != nil {
		logger.Info("now playing",
			logger.String("title", fresh.Title),
			logger.String("artist", fresh.Artist))
	}
	return c.value, changed
}

// Invalidate 显式失效，下一次Resolve必定回源
// 上次快照保留用于身份比较：失效后刷出同一首歌不算切歌
func (c *TrackCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = stateEmpty
}
