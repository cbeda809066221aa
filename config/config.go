package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// All values are read once at pipeline construction; the core does not
// hot-reload configuration mid-run (the manual track override file is the
// one exception, and it is data, not configuration).
type Config struct {
	// Now-playing source
	InputSource         string // "spotify" or "manual"
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyTokenPath    string // cached OAuth token file (written by external auth flow)
	ManualTrackPath     string // JSON override file for manual mode, watched for changes

	// Prompt building
	PromptTemplate string
	FallbackPrompt string // returned verbatim when nothing is playing
	ArtStyle       string // optional suffix appended after substitution
	StyleTokens    []string
	GenreHint      string // seeds the style cycle when StyleTokens is empty
	StyleRotation  bool
	StyleInterval  time.Duration // 0 = advance on lyric line change
	KeywordReduce  bool
	StopWords      []string

	// Lyrics
	SyncedLyricsURL string
	PlainLyricsURL  string
	PreviewOffset   time.Duration
	LyricMaxChars   int // plain-text fallback truncation length
	LyricCacheSize  int // 0 = unbounded within the session

	// Track cache
	TrackCacheTTL      time.Duration
	TrackLookupTimeout time.Duration

	// Companion display server
	Port          int
	FrameInterval time.Duration

	// Redis配置（可选，配置后将解析结果发布到频道）
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	// MySQL配置（可选，配置后持久化延迟汇总历史）
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Logging
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// splitList 解析逗号分隔的列表，忽略空项
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// seconds converts a float second count to a duration.
func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".promptfm")

	return &Config{
		InputSource:         getEnv("PROMPT_INPUT_SOURCE", "spotify"),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyTokenPath:    getEnv("SPOTIFY_TOKEN_PATH", filepath.Join(stateDir, "spotify_token.json")),
		ManualTrackPath:     getEnv("MANUAL_TRACK_PATH", filepath.Join(stateDir, "manual_track.json")),

		PromptTemplate: getEnv("PROMPT_TEMPLATE", "Artistic visualization of {song} by {artist}, {lyrics}, {style}"),
		FallbackPrompt: getEnv("FALLBACK_PROMPT", "Abstract flowing colors and shapes"),
		ArtStyle:       getEnv("ART_STYLE", ""),
		StyleTokens:    splitList(getEnv("STYLE_TOKENS", "")),
		GenreHint:      getEnv("STYLE_GENRE", ""),
		StyleRotation:  getEnvBool("STYLE_ROTATION", true),
		StyleInterval:  seconds(getEnvFloat("STYLE_INTERVAL_SECONDS", 0)),
		KeywordReduce:  getEnvBool("KEYWORD_REDUCE", false),
		StopWords:      splitList(getEnv("STOP_WORDS", "")),

		SyncedLyricsURL: getEnv("SYNCED_LYRICS_URL", "https://lrclib.net/api/get"),
		PlainLyricsURL:  getEnv("PLAIN_LYRICS_URL", "https://api.lyrics.ovh/v1"),
		PreviewOffset:   seconds(getEnvFloat("PREVIEW_OFFSET_SECONDS", 0)),
		LyricMaxChars:   getEnvInt("LYRIC_MAX_CHARS", 500),
		LyricCacheSize:  getEnvInt("LYRIC_CACHE_SIZE", 0),

		TrackCacheTTL:      seconds(getEnvFloat("SPOTIFY_TRACK_CACHE_SECONDS", 0.4)),
		TrackLookupTimeout: seconds(getEnvFloat("TRACK_LOOKUP_TIMEOUT_SECONDS", 5)),

		Port:          getEnvInt("SERVER_PORT", 8080),
		FrameInterval: time.Duration(getEnvInt("FRAME_INTERVAL_MS", 100)) * time.Millisecond,

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisChannel:  getEnv("REDIS_CHANNEL", "promptfm:prompts"),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "promptfm"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}

// Validate rejects configuration the resolution pipeline cannot run with.
// 仅在启动时致命，运行期间不会再校验
func (c *Config) Validate() error {
	if c.TrackCacheTTL < 0 {
		return fmt.Errorf("track cache TTL must not be negative, got %s", c.TrackCacheTTL)
	}
	if c.PreviewOffset < 0 {
		return fmt.Errorf("preview offset must not be negative, got %s", c.PreviewOffset)
	}
	if c.StyleInterval < 0 {
		return fmt.Errorf("style rotation interval must not be negative, got %s", c.StyleInterval)
	}
	if c.LyricMaxChars <= 0 {
		return fmt.Errorf("lyric max chars must be positive, got %d", c.LyricMaxChars)
	}
	if c.LyricCacheSize < 0 {
		return fmt.Errorf("lyric cache size must not be negative, got %d", c.LyricCacheSize)
	}
	if c.TrackLookupTimeout <= 0 {
		return fmt.Errorf("track lookup timeout must be positive, got %s", c.TrackLookupTimeout)
	}
	if c.InputSource != "spotify" && c.InputSource != "manual" {
		return fmt.Errorf("unknown input source %q (expected spotify or manual)", c.InputSource)
	}
	return nil
}
