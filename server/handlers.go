package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"PromptFM/core/prompt"
	"PromptFM/logger"
	"PromptFM/repository"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// APIHandler 伴随展示页的API处理器
type APIHandler struct {
	pipeline  *prompt.Pipeline
	statsRepo repository.StatsRepository // 未配置MySQL时为nil
	hub       *PromptHub
}

// NewAPIHandler 创建API处理器
func NewAPIHandler(pipeline *prompt.Pipeline, statsRepo repository.StatsRepository, hub *PromptHub) *APIHandler {
	return &APIHandler{
		pipeline:  pipeline,
		statsRepo: statsRepo,
		hub:       hub,
	}
}

// nowResponse 在解析结果上附加展示页用的派生字段
type nowResponse struct {
	prompt.Resolution
	ProgressPercent float64 `json:"progressPercent"`
}

// NowHandler 返回最近一次解析结果
func (h *APIHandler) NowHandler(w http.ResponseWriter, r *http.Request) {
	res := h.pipeline.Last()
	respondJSON(w, http.StatusOK, nowResponse{
		Resolution:      res,
		ProgressPercent: res.Track.ProgressPercent(),
	})
}

// InvalidateHandler 显式失效曲目缓存，下一帧必定回源
// 展示页的"刷新"按钮与settrack后的立即生效都走这里
func (h *APIHandler) InvalidateHandler(w http.ResponseWriter, r *http.Request) {
	h.pipeline.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// StatsHandler 返回当前统计窗口内的各阶段延迟快照
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stages":  h.pipeline.Stats().Snapshot(),
		"clients": h.hub.ClientCount(),
	})
}

// StatsHistoryHandler 返回持久化的历史延迟汇总
func (h *APIHandler) StatsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if h.statsRepo == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "stats history not enabled (set DB_HOST)",
		})
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	summaries, err := h.statsRepo.RecentSummaries(limit)
	if err != nil {
		logger.Error("query stats history failed", logger.ErrorField(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to query stats history",
		})
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// WSPromptHandler 升级为websocket并订阅提示词推送
func (h *APIHandler) WSPromptHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	h.hub.Register(conn)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response failed", logger.ErrorField(err))
	}
}
