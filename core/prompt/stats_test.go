package prompt

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PromptFM/model"
)

type statsClock struct {
	now time.Time
}

func (c *statsClock) Now() time.Time { return c.now }

func (c *statsClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSink struct {
	mu      sync.Mutex
	batches [][]model.StageSummary
}

func (s *fakeSink) SaveSummaries(summaries []model.StageSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, summaries)
	return nil
}

func TestLatencyRecorderEmitsAfterInterval(t *testing.T) {
	clk := &statsClock{now: time.Unix(1000, 0)}
	r := NewLatencyRecorder(5*time.Second, nil)
	r.SetClock(clk.Now)

	r.Record(StageTrack, 200*time.Microsecond)
	r.Record(StageTrack, 400*time.Microsecond)
	r.Record(StageBuild, 100*time.Microsecond)
	r.RecordRun()
	r.RecordRun()

	// 间隔未到，不输出
	clk.advance(4 * time.Second)
	assert.Nil(t, r.MaybeEmit())

	clk.advance(1 * time.Second)
	summaries := r.MaybeEmit()
	require.Len(t, summaries, 2)

	// 按阶段名排序：build在track前
	assert.Equal(t, StageBuild, summaries[0].Stage)
	assert.Equal(t, StageTrack, summaries[1].Stage)
	assert.InDelta(t, 300.0, summaries[1].MeanMicros, 0.001)
	assert.Equal(t, int64(2), summaries[1].Count)
	// 5秒窗口内2次调用
	assert.InDelta(t, 0.4, summaries[1].RatePerSec, 0.001)
}

func TestLatencyRecorderResetsWindow(t *testing.T) {
	clk := &statsClock{now: time.Unix(1000, 0)}
	r := NewLatencyRecorder(5*time.Second, nil)
	r.SetClock(clk.Now)

	r.Record(StageTrack, time.Millisecond)
	r.RecordRun()
	clk.advance(5 * time.Second)
	require.NotNil(t, r.MaybeEmit())

	// 输出后窗口清零，没有新样本就没有新汇总
	clk.advance(5 * time.Second)
	assert.Empty(t, r.MaybeEmit())
}

func TestLatencyRecorderSnapshotDoesNotReset(t *testing.T) {
	clk := &statsClock{now: time.Unix(1000, 0)}
	r := NewLatencyRecorder(5*time.Second, nil)
	r.SetClock(clk.Now)

	r.Record(StageLyrics, 2*time.Millisecond)
	clk.advance(time.Second)

	first := r.Snapshot()
	require.Len(t, first, 1)
	assert.Equal(t, StageLyrics, first[0].Stage)

	// 快照不清零窗口
	second := r.Snapshot()
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Count, second[0].Count)
}

func TestLatencyRecorderSavesToSink(t *testing.T) {
	clk := &statsClock{now: time.Unix(1000, 0)}
	sink := &fakeSink{}
	r := NewLatencyRecorder(5*time.Second, sink)
	r.SetClock(clk.Now)

	r.Record(StageStyle, time.Millisecond)
	r.RecordRun()
	clk.advance(5 * time.Second)
	require.NotNil(t, r.MaybeEmit())

	// 持久化在后台goroutine里进行
	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.batches) == 1
	}, time.Second, 10*time.Millisecond)
}
