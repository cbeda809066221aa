package prompt

import "strings"

// 识别的模板占位符集合。枚举固定，未知占位符原样保留
const (
	KeySong   = "song"
	KeyArtist = "artist"
	KeyAlbum  = "album"
	KeyLyrics = "lyrics"
	KeyStyle  = "style"
)

var placeholderKeys = []string{KeySong, KeyArtist, KeyAlbum, KeyLyrics, KeyStyle}

// Builder 模板替换，产出最终提示词
type Builder struct {
	template string
	fallback string
	artStyle string // 可选的画风后缀
}

// NewBuilder 创建提示词构造器
func NewBuilder(template, fallback, artStyle string) *Builder {
	return &Builder{
		template: template,
		fallback: fallback,
		artStyle: artStyle,
	}
}

// Build 把绑定值代入模板
// trackPresent为false且配置了回退串时，原样返回回退串并跳过替换；
// 绑定缺失的占位符替换为空串，而不是报错或跳过模板
func (b *Builder) Build(bindings map[string]string, trackPresent bool) string {
	if !trackPresent && b.fallback != "" {
		return b.fallback
	}

	out := b.template
	for _, key := range placeholderKeys {
		out = strings.ReplaceAll(out, "{"+key+"}", bindings[key])
	}

	if b.artStyle != "" {
		out = out + ", " + b.artStyle
	}
	return out
}
