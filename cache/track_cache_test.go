package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PromptFM/model"
)

// fakeSource 可编程的"正在播放"数据源，记录上游调用次数
type fakeSource struct {
	calls int
	np    *model.NowPlaying
	err   error
}

func (f *fakeSource) Current() (*model.NowPlaying, error) {
	f.calls++
	return f.np, f.err
}

func (f *fakeSource) Name() string { return "fake" }

// fakeClock 手动推进的时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testTrack(id string) *model.NowPlaying {
	return &model.NowPlaying{
		TrackID:    id,
		Title:      "Song " + id,
		Artist:     "Artist",
		DurationMs: 200000,
		ProgressMs: 1000,
		IsPlaying:  true,
	}
}

func TestResolveWithinTTLSingleUpstreamCall(t *testing.T) {
	src := &fakeSource{np: testTrack("a")}
	clock := &fakeClock{t: time.Unix(1000, 0)}

	c := NewTrackCache(src, 400*time.Millisecond)
	c.SetClock(clock.now)

	np, changed := c.Resolve()
	require.NotNil(t, np)
	assert.True(t, changed)
	assert.Equal(t, 1, src.calls)

	// TTL内的任意次Resolve都不回源
	for i := 0; i < 10; i++ {
		clock.advance(30 * time.Millisecond)
		np, changed = c.Resolve()
		require.NotNil(t, np)
		assert.False(t, changed)
	}
	assert.Equal(t, 1, src.calls)

	// 过期后恰好回源一次
	clock.advance(400 * time.Millisecond)
	_, _ = c.Resolve()
	assert.Equal(t, 2, src.calls)
}

func TestUpstreamFailureCachedAsAbsent(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("network down")}
	clock := &fakeClock{t: time.Unix(1000, 0)}

	c := NewTrackCache(src, 400*time.Millisecond)
	c.SetClock(clock.now)

	np, _ := c.Resolve()
	assert.Nil(t, np)
	assert.Equal(t, 1, src.calls)

	// absent结果同样受TTL保护，不会每帧打一次失败的上游
	clock.advance(100 * time.Millisecond)
	np, changed := c.Resolve()
	assert.Nil(t, np)
	assert.False(t, changed)
	assert.Equal(t, 1, src.calls)

	clock.advance(400 * time.Millisecond)
	_, _ = c.Resolve()
	assert.Equal(t, 2, src.calls)
}

func TestTrackChangeSignal(t *testing.T) {
	src := &fakeSource{np: testTrack("a")}
	clock := &fakeClock{t: time.Unix(1000, 0)}

	c := NewTrackCache(src, 100*time.Millisecond)
	c.SetClock(clock.now)

	_, changed := c.Resolve()
	assert.True(t, changed, "first resolution counts as a change")

	// 同一曲目刷新不触发变化
	clock.advance(150 * time.Millisecond)
	_, changed = c.Resolve()
	assert.False(t, changed)

	// 切歌
	src.np = testTrack("b")
	clock.advance(150 * time.Millisecond)
	_, changed = c.Resolve()
	assert.True(t, changed)

	// 播放结束（absent）也算身份变化
	src.np = nil
	clock.advance(150 * time.Millisecond)
	np, changed := c.Resolve()
	assert.Nil(t, np)
	assert.True(t, changed)

	// 持续absent不再重复触发
	clock.advance(150 * time.Millisecond)
	_, changed = c.Resolve()
	assert.False(t, changed)
}

func TestInvalidateForcesRefresh(t *testing.T) {
	src := &fakeSource{np: testTrack("a")}
	clock := &fakeClock{t: time.Unix(1000, 0)}

	c := NewTrackCache(src, time.Hour)
	c.SetClock(clock.now)

	_, _ = c.Resolve()
	_, _ = c.Resolve()
	assert.Equal(t, 1, src.calls)

	c.Invalidate()
	np, changed := c.Resolve()
	require.NotNil(t, np)
	assert.Equal(t, 2, src.calls)
	// 失效后刷出同一首歌不算切歌
	assert.False(t, changed)
}
