package model

// NowPlaying 当前播放状态快照
// 由上游"正在播放"数据源一次性返回，进入缓存后不再修改
type NowPlaying struct {
	TrackID    string `json:"trackId"` // 上游曲目ID，两首歌相同当且仅当ID相同
	Title      string `json:"title"`
	Artist     string `json:"artist"` // 多位歌手以", "连接
	Album      string `json:"album,omitempty"`
	DurationMs int64  `json:"durationMs"`
	ProgressMs int64  `json:"progressMs"` // 上游快照时刻的播放进度，两次刷新之间不做本地外推
	IsPlaying  bool   `json:"isPlaying"`
}

// SameTrack reports whether both snapshots refer to the same recording.
func (n *NowPlaying) SameTrack(other *NowPlaying) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.TrackID == other.TrackID
}

// ProgressPercent 播放进度百分比（0-100），用于伴随展示页
func (n *NowPlaying) ProgressPercent() float64 {
	if n == nil || n.DurationMs == 0 {
		return 0
	}
	return float64(n.ProgressMs) / float64(n.DurationMs) * 100
}
