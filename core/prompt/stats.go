package prompt

import (
	"sort"
	"sync"
	"time"

	"PromptFM/logger"
	"PromptFM/model"
)

// 流水线阶段名，用于延迟统计
const (
	StageTrack  = "track"
	StageLyrics = "lyrics"
	StageLine   = "line"
	StageReduce = "reduce"
	StageStyle  = "style"
	StageBuild  = "build"
)

// SummarySink 延迟汇总的可选持久化出口
// 诊断用途，写入失败只记日志，绝不阻塞提示词解析
type SummarySink interface {
	SaveSummaries(summaries []model.StageSummary) error
}

type stageAcc struct {
	sum   time.Duration
	count int64
}

// LatencyRecorder 滚动累计各阶段耗时，按固定间隔输出汇总后清零
type LatencyRecorder struct {
	interval time.Duration
	now      func() time.Time
	sink     SummarySink // 可为nil

	mu       sync.Mutex
	stages   map[string]*stageAcc
	runs     int64 // 完整流水线调用次数
	lastEmit time.Time
}

// NewLatencyRecorder 创建延迟统计器
func NewLatencyRecorder(interval time.Duration, sink SummarySink) *LatencyRecorder {
	r := &LatencyRecorder{
		interval: interval,
		now:      time.Now,
		sink:     sink,
		stages:   make(map[string]*stageAcc),
	}
	r.lastEmit = r.now()
	return r
}

// SetClock 注入时钟，仅测试使用
func (r *LatencyRecorder) SetClock(now func() time.Time) {
	r.now = now
	r.lastEmit = now()
}

// Record 记录一个阶段的单次耗时
func (r *LatencyRecorder) Record(stage string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.stages[stage]
	if !ok {
		acc = &stageAcc{}
		r.stages[stage] = acc
	}
	acc.sum += d
	acc.count++
}

// RecordRun 记录一次完整的流水线调用
func (r *LatencyRecorder) RecordRun() {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
}

// MaybeEmit 距上次输出超过间隔时，输出各阶段均值与调用速率并清零
// 返回本次输出的汇总，间隔未到时返回nil
func (r *LatencyRecorder) MaybeEmit() []model.StageSummary {
	r.mu.Lock()

	now := r.now()
	elapsed := now.Sub(r.lastEmit)
	if elapsed < r.interval {
		r.mu.Unlock()
		return nil
	}

	rate := float64(r.runs) / elapsed.Seconds()
	summaries := make([]model.StageSummary, 0, len(r.stages))
	for stage, acc := range r.stages {
		if acc.count == 0 {
			continue
		}
		mean := float64(acc.sum.Microseconds()) / float64(acc.count)
		summaries = append(summaries, model.StageSummary{
			Stage:      stage,
			MeanMicros: mean,
			Count:      acc.count,
			RatePerSec: rate,
			EmittedAt:  now,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Stage < summaries[j].Stage
	})

	// 清零，开始下一个窗口
	r.stages = make(map[string]*stageAcc)
	r.runs = 0
	r.lastEmit = now
	r.mu.Unlock()

	for _, s := range summaries {
		logger.Info("pipeline stage latency",
			logger.String("stage", s.Stage),
			logger.Float64("meanMicros", s.MeanMicros),
			logger.Int64("count", s.Count),
			logger.Float64("ratePerSec", s.RatePerSec))
	}

	if r.sink != nil && len(summaries) > 0 {
		// 持久化放到后台，失败不影响解析
		go func(batch []model.StageSummary) {
			if err := r.sink.SaveSummaries(batch); err != nil {
				logger.Warn("save latency summaries failed", logger.ErrorField(err))
			}
		}(summaries)
	}
	return summaries
}

// Snapshot 返回当前窗口内各阶段的即时均值，伴随展示页用
func (r *LatencyRecorder) Snapshot() []model.StageSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(r.lastEmit)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(r.runs) / elapsed.Seconds()
	}

	summaries := make([]model.StageSummary, 0, len(r.stages))
	for stage, acc := range r.stages {
		if acc.count == 0 {
			continue
		}
		summaries = append(summaries, model.StageSummary{
			Stage:      stage,
			MeanMicros: float64(acc.sum.Microseconds()) / float64(acc.count),
			Count:      acc.count,
			RatePerSec: rate,
			EmittedAt:  now,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Stage < summaries[j].Stage
	})
	return summaries
}
