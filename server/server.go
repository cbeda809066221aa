package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PromptFM/config"
	"PromptFM/core/lyrics"
	"PromptFM/core/nowplaying"
	"PromptFM/core/prompt"
	"PromptFM/db"
	"PromptFM/logger"
	"PromptFM/model"
	"PromptFM/repository"

	"github.com/gorilla/mux"
)

// Start 启动解析循环与伴随展示服务，阻塞直到收到退出信号
func Start(cfg *config.Config) error {
	source, cleanup, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 可选：MySQL延迟汇总历史
	var statsRepo repository.StatsRepository
	var sink prompt.SummarySink
	if cfg.DBHost != "" {
		if err := db.ConnectGormDB(cfg); err != nil {
			return fmt.Errorf("连接数据库失败: %w", err)
		}
		defer db.CloseGormDB()
		if err := db.AutoMigrateModels(&model.StageSummary{}); err != nil {
			return fmt.Errorf("迁移数据库失败: %w", err)
		}
		repo := repository.NewGormStatsRepository(db.GormDB)
		statsRepo = repo
		sink = repo
	}

	// 可选：Redis提示词发布
	redisEnabled := cfg.RedisHost != ""
	if redisEnabled {
		if err := db.ConnectRedis(cfg); err != nil {
			return fmt.Errorf("连接Redis失败: %w", err)
		}
		defer db.CloseRedis()
		logger.Info("redis prompt publishing enabled", logger.String("channel", cfg.RedisChannel))
	}

	pipe, err := prompt.New(cfg, source,
		lyrics.NewSyncedClient(cfg.SyncedLyricsURL),
		lyrics.NewPlainClient(cfg.PlainLyricsURL),
		sink)
	if err != nil {
		return err
	}

	hub := NewPromptHub()
	defer hub.Close()

	// 解析循环：每帧解析一次并推送给所有展示端
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go resolveLoop(loopCtx, cfg, pipe, hub, redisEnabled)

	apiHandler := NewAPIHandler(pipe, statsRepo, hub)

	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/api/now", apiHandler.NowHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/invalidate", apiHandler.InvalidateHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/stats", apiHandler.StatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/history", apiHandler.StatsHistoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/ws/prompt", apiHandler.WSPromptHandler)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
		// websocket长连接，不设整体Write/ReadTimeout
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("companion display server listening", logger.Int("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("服务器启动失败: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", logger.String("signal", sig.String()))
	}

	stopLoop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}
	return nil
}

// resolveLoop 按帧间隔驱动流水线，模拟宿主每帧一次的调用节奏
func resolveLoop(ctx context.Context, cfg *config.Config, pipe *prompt.Pipeline, hub *PromptHub, redisEnabled bool) {
	ticker := time.NewTicker(cfg.FrameInterval)
	defer ticker.Stop()

	var lastPrompt string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := pipe.Resolve()

			// 提示词没变时不重复推送
			if res.Prompt == lastPrompt {
				continue
			}
			lastPrompt = res.Prompt

			hub.Broadcast(res)
			if redisEnabled {
				if payload, err := json.Marshal(res); err == nil {
					pubCtx, cancel := context.WithTimeout(ctx, time.Second)
					if err := db.PublishPrompt(pubCtx, cfg.RedisChannel, payload); err != nil {
						logger.Warn("publish prompt failed", logger.ErrorField(err))
					}
					cancel()
				}
			}
		}
	}
}

// buildSource 根据配置选择"正在播放"数据源
func buildSource(cfg *config.Config) (nowplaying.Source, func(), error) {
	switch cfg.InputSource {
	case "manual":
		src, err := nowplaying.NewManualSource(cfg.ManualTrackPath)
		if err != nil {
			return nil, nil, fmt.Errorf("创建手动数据源失败: %w", err)
		}
		return src, func() { src.Close() }, nil
	default:
		src := nowplaying.NewSpotifyClient(
			cfg.SpotifyClientID,
			cfg.SpotifyClientSecret,
			cfg.SpotifyTokenPath,
			cfg.TrackLookupTimeout)
		return src, func() {}, nil
	}
}
