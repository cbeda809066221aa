package model

// LyricLine 一行时间同步歌词
type LyricLine struct {
	StartMs int64  `json:"startMs"` // 该行在曲目内生效的起始偏移（毫秒）
	Text    string `json:"text"`
}

// LyricTrack 按StartMs升序排列的歌词行序列
// 不变量：无重复StartMs；仅在找到同步歌词时非空
type LyricTrack []LyricLine

// LyricKind 歌词条目类型
type LyricKind int8

const (
	LyricNone   LyricKind = iota // 两个上游都没有结果
	LyricSynced                  // 时间同步歌词
	LyricPlain                   // 仅纯文本片段
)

// LyricEntry 歌词存储条目，按曲目ID键控，进程生命周期内不过期
type LyricEntry struct {
	Kind    LyricKind  `json:"kind"`
	Lines   LyricTrack `json:"lines,omitempty"`
	Snippet string     `json:"snippet,omitempty"` // 纯文本回退，已截断到配置的最大长度
}
