package model

import "time"

// StageSummary 一次周期性延迟汇总中单个阶段的均值
// 仅用于诊断历史，不参与提示词解析
type StageSummary struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Stage      string    `json:"stage" gorm:"size:32;index"`
	MeanMicros float64   `json:"meanMicros"` // 阶段平均耗时（微秒）
	Count      int64     `json:"count"`
	RatePerSec float64   `json:"ratePerSec"` // 汇总窗口内的完整流水线调用速率
	EmittedAt  time.Time `json:"emittedAt" gorm:"index"`
}

// TableName 指定GORM表名
func (StageSummary) TableName() string {
	return "stage_summaries"
}
