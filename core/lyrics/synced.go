package lyrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"PromptFM/logger"
	"PromptFM/model"
)

// SyncedClient 时间同步歌词客户端（LRCLIB风格接口）
type SyncedClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSyncedClient 创建同步歌词客户端
func NewSyncedClient(baseURL string) *SyncedClient {
	return &SyncedClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

// Lookup 按标题与歌手查询同步歌词
// 未找到时返回(nil, nil)，调用方继续尝试纯文本来源
func (c *SyncedClient) Lookup(title, artist, album string, durationSec int) (model.LyricTrack, error) {
	if title == "" || artist == "" {
		return nil, nil
	}

	if album == "" {
		album = "Unknown"
	}
	if durationSec < 1 {
		durationSec = 1
	}
	q := url.Values{}
	q.Set("track_name", title)
	q.Set("artist_name", artist)
	q.Set("album_name", album)
	q.Set("duration", strconv.Itoa(durationSec))

	reqURL := c.baseURL + "?" + q.Encode()
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", "PromptFM/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("synced lyrics lookup miss",
			logger.String("title", title),
			logger.String("artist", artist),
			logger.Int("status", resp.StatusCode))
		return nil, nil
	}

	var result struct {
		SyncedLyrics string `json:"syncedLyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if result.SyncedLyrics == "" {
		return nil, nil
	}

	lines := ParseLRC(result.SyncedLyrics)
	logger.Debug("synced lyrics fetched",
		logger.String("title", title),
		logger.String("artist", artist),
		logger.Int("lines", len(lines)))
	return lines, nil
}
