package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"PromptFM/model"
)

// LRC行格式：[mm:ss.xx] 或 [m:ss.xx] 或 [mm:ss]，后接可选文本
var lrcLineRe = regexp.MustCompile(`^\[(\d+):(\d{2})(?:\.(\d{2,3}))?\]\s*(.*)$`)

// parseLRCLine 解析单行LRC，返回(起始毫秒, 文本)
// 不是合法时间戳行时第二个返回值为false
func parseLRCLine(line string) (model.LyricLine, bool) {
	m := lrcLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return model.LyricLine{}, false
	}

	minutes, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])

	// LRC小数部分：.12 表示120ms（百分秒），.123 表示123ms
	frac := m[3]
	var fracMs int
	switch len(frac) {
	case 0:
		fracMs = 0
	case 2:
		n, _ := strconv.Atoi(frac)
		fracMs = n * 10
	default:
		n, _ := strconv.Atoi(frac)
		fracMs = n
	}

	ms := int64(minutes)*60*1000 + int64(secs)*1000 + int64(fracMs)
	return model.LyricLine{StartMs: ms, Text: strings.TrimSpace(m[4])}, true
}

// ParseLRC 将LRC文本解析为按时间升序的歌词序列
// 跳过空行与无时间戳的元数据行；重复的起始时间只保留先出现的一行
func ParseLRC(raw string) model.LyricTrack {
	var lines model.LyricTrack
	for _, row := range strings.Split(raw, "\n") {
		line, ok := parseLRCLine(row)
		if !ok || line.Text == "" {
			continue
		}
		lines = append(lines, line)
	}

	// 稳定排序保证相同偏移时保留原始顺序里的第一行
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].StartMs < lines[j].StartMs
	})

	deduped := lines[:0]
	var lastMs int64 = -1
	for _, line := range lines {
		if line.StartMs == lastMs {
			continue
		}
		deduped = append(deduped, line)
		lastMs = line.StartMs
	}
	return deduped
}
