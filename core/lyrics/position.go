package lyrics

import (
	"sort"

	"PromptFM/model"
)

// SelectLine 根据播放位置选出当前生效的歌词行
// previewMs为正时将位置前移，提前进入下一行；负值按0处理
// 位置早于第一行起始时间、或序列为空时返回false
func SelectLine(lines model.LyricTrack, positionMs, previewMs int64) (model.LyricLine, bool) {
	if len(lines) == 0 {
		return model.LyricLine{}, false
	}
	if previewMs < 0 {
		previewMs = 0
	}
	effective := positionMs + previewMs

	// 序列已按StartMs升序，floor查找：最后一个StartMs <= effective的行
	idx := sort.Search(len(lines), func(i int) bool {
		return lines[i].StartMs > effective
	})
	if idx == 0 {
		return model.LyricLine{}, false
	}
	// 超出最后一行起始时间时，最后一行持续生效到曲目结束
	return lines[idx-1], true
}
