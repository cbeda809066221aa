package nowplaying

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"PromptFM/logger"
	"PromptFM/model"
)

const (
	spotifyPlayerURL = "https://api.spotify.com/v1/me/player/currently-playing"
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
)

// tokenFile OAuth令牌缓存文件结构
// 令牌的首次获取由外部授权流程完成，这里只做刷新
type tokenFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix秒
}

// SpotifyClient Spotify Web API客户端，只关心"正在播放"一个端点
type SpotifyClient struct {
	clientID     string
	clientSecret string
	tokenPath    string
	httpClient   *http.Client

	mu    sync.Mutex
	token tokenFile
}

// NewSpotifyClient 创建Spotify客户端
// timeout约束单次上游调用，上游卡死时按失败处理而不是拖住解析循环
func NewSpotifyClient(clientID, clientSecret, tokenPath string, timeout time.Duration) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenPath:    tokenPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name 实现Source接口
func (c *SpotifyClient) Name() string { return "spotify" }

// Current 获取当前播放曲目
func (c *SpotifyClient) Current() (*model.NowPlaying, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, fmt.Errorf("获取访问令牌失败: %w", err)
	}

	req, err := http.NewRequest(http.MethodGet, spotifyPlayerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fallthrough to decode below
	case http.StatusNoContent:
		// 没有活跃的播放会话
		return nil, nil
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("访问令牌已失效")
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("上游限流: retry-after %s", resp.Header.Get("Retry-After"))
	default:
		return nil, fmt.Errorf("API返回错误状态码: %d", resp.StatusCode)
	}

	var payload struct {
		ProgressMs int64 `json:"progress_ms"`
		IsPlaying  bool  `json:"is_playing"`
		Item       *struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			DurationMs int64 `json:"duration_ms"`
		} `json:"item"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if payload.Item == nil {
		return nil, nil
	}

	names := make([]string, 0, len(payload.Item.Artists))
	for _, a := range payload.Item.Artists {
		names = append(names, a.Name)
	}

	return &model.NowPlaying{
		TrackID:    payload.Item.ID,
		Title:      payload.Item.Name,
		Artist:     strings.Join(names, ", "),
		Album:      payload.Item.Album.Name,
		DurationMs: payload.Item.DurationMs,
		ProgressMs: payload.ProgressMs,
		IsPlaying:  payload.IsPlaying,
	}, nil
}

// accessToken 返回可用的访问令牌，过期时用refresh token续期
func (c *SpotifyClient) accessToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.AccessToken == "" {
		if err := c.loadToken(); err != nil {
			return "", err
		}
	}

	// 提前30秒刷新，避免边界上拿到刚好过期的令牌
	if time.Now().Unix() < c.token.ExpiresAt-30 {
		return c.token.AccessToken, nil
	}
	if err := c.refreshToken(); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

func (c *SpotifyClient) loadToken() error {
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return fmt.Errorf("读取令牌缓存失败（先完成授权流程）: %w", err)
	}
	if err := json.Unmarshal(data, &c.token); err != nil {
		return fmt.Errorf("解析令牌缓存失败: %w", err)
	}
	return nil
}

func (c *SpotifyClient) refreshToken() error {
	if c.token.RefreshToken == "" {
		return fmt.Errorf("令牌缓存缺少refresh token")
	}
	if c.clientID == "" || c.clientSecret == "" {
		return fmt.Errorf("未配置Spotify客户端凭据")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.token.RefreshToken)

	req, err := http.NewRequest(http.MethodPost, spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("刷新令牌请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("刷新令牌失败，状态码: %d", resp.StatusCode)
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("解析刷新响应失败: %w", err)
	}

	c.token.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		c.token.RefreshToken = result.RefreshToken
	}
	c.token.ExpiresAt = time.Now().Unix() + result.ExpiresIn

	// 写回缓存文件，进程重启后无需重新授权
	if data, err := json.MarshalIndent(c.token, "", "  "); err == nil {
		if err := os.WriteFile(c.tokenPath, data, 0600); err != nil {
			logger.Warn("写入令牌缓存失败", logger.ErrorField(err))
		}
	}

	logger.Info("Spotify访问令牌已刷新")
	return nil
}
