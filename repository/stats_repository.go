package repository

import (
	"fmt"

	"PromptFM/model"

	"gorm.io/gorm"
)

// StatsRepository defines the interface for latency summary persistence.
type StatsRepository interface {
	SaveSummaries(summaries []model.StageSummary) error
	RecentSummaries(limit int) ([]model.StageSummary, error)
}

// gormStatsRepository implements StatsRepository on MySQL via GORM.
type gormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new instance of gormStatsRepository.
func NewGormStatsRepository(db *gorm.DB) StatsRepository {
	return &gormStatsRepository{db: db}
}

// SaveSummaries 批量写入一次汇总窗口的各阶段均值
func (r *gormStatsRepository) SaveSummaries(summaries []model.StageSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	if err := r.db.Create(&summaries).Error; err != nil {
		return fmt.Errorf("failed to save stage summaries: %w", err)
	}
	return nil
}

// RecentSummaries 按时间倒序返回最近的汇总记录
func (r *gormStatsRepository) RecentSummaries(limit int) ([]model.StageSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []model.StageSummary
	err := r.db.
		Order("emitted_at DESC, stage ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query stage summaries: %w", err)
	}
	return out, nil
}
