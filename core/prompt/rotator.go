package prompt

import (
	"time"
)

// StyleRotator 样式词轮换器
// 两种模式：interval为0时跟随歌词行变化前进，否则按固定时间间隔前进
// 顺序固定且循环；切歌时重置到第一个样式词
type StyleRotator struct {
	tokens   []string
	interval time.Duration
	now      func() time.Time

	idx         int
	lastAdvance time.Time
}

// NewStyleRotator 创建轮换器
func NewStyleRotator(tokens []string, interval time.Duration) *StyleRotator {
	r := &StyleRotator{
		tokens:   tokens,
		interval: interval,
		now:      time.Now,
	}
	r.lastAdvance = r.now()
	return r
}

// SetClock 注入时钟，仅测试使用
func (r *StyleRotator) SetClock(now func() time.Time) {
	r.now = now
	r.lastAdvance = now()
}

// Advance 推进状态机并返回当前样式词
func (r *StyleRotator) Advance(lineChanged bool) string {
	if len(r.tokens) == 0 {
		return ""
	}

	if r.interval > 0 {
		// 间隔模式：与歌词行变化无关
		now := r.now()
		if now.Sub(r.lastAdvance) >= r.interval {
			r.idx = (r.idx + 1) % len(r.tokens)
			r.lastAdvance = now
		}
	} else if lineChanged {
		// 行变化模式：同一行内保持不变
		r.idx = (r.idx + 1) % len(r.tokens)
	}

	return r.tokens[r.idx]
}

// Current 返回当前样式词但不推进
func (r *StyleRotator) Current() string {
	if len(r.tokens) == 0 {
		return ""
	}
	return r.tokens[r.idx]
}

// Reset 切歌时回到第一个样式词并重置计时
func (r *StyleRotator) Reset() {
	r.idx = 0
	r.lastAdvance = r.now()
}
