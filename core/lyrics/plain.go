package lyrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PromptFM/logger"
)

// PlainClient 纯文本歌词客户端（Lyrics.ovh风格接口）
// 仅在同步歌词不可用时作为回退使用
type PlainClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPlainClient 创建纯文本歌词客户端
func NewPlainClient(baseURL string) *PlainClient {
	return &PlainClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Lookup 按歌手与标题查询纯文本歌词，多行合并为单行
// 未找到时返回("", nil)
func (c *PlainClient) Lookup(title, artist string) (string, error) {
	if title == "" || artist == "" {
		return "", nil
	}

	reqURL := fmt.Sprintf("%s/%s/%s",
		c.baseURL,
		url.PathEscape(artist),
		url.PathEscape(title))
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", "PromptFM/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("plain lyrics lookup miss",
			logger.String("title", title),
			logger.String("artist", artist),
			logger.Int("status", resp.StatusCode))
		return "", nil
	}

	var result struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	return strings.Join(strings.Fields(result.Lyrics), " "), nil
}
