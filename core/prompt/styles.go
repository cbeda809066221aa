package prompt

import "strings"

// genreStyles 流派到视觉样式词的映射
// 未显式配置STYLE_TOKENS时，用STYLE_GENRE命中的条目作为轮换序列
var genreStyles = map[string][]string{
	"rock":       {"bold contrasts", "electric energy", "raw textures"},
	"pop":        {"vibrant colors", "glossy finish", "modern aesthetic"},
	"hip hop":    {"urban landscape", "street art style", "bold typography"},
	"rap":        {"urban landscape", "street art style", "bold typography"},
	"electronic": {"neon lights", "digital artifacts", "futuristic"},
	"edm":        {"neon lights", "laser beams", "euphoric atmosphere"},
	"jazz":       {"smoky atmosphere", "warm tones", "vintage feel"},
	"classical":  {"elegant", "orchestral grandeur", "timeless beauty"},
	"r&b":        {"smooth gradients", "sensual mood", "soft lighting"},
	"soul":       {"warm golden tones", "emotional depth", "vintage warmth"},
	"country":    {"rustic landscapes", "golden hour", "americana"},
	"folk":       {"earthy tones", "natural textures", "handcrafted feel"},
	"metal":      {"dark imagery", "intense energy", "dramatic lighting"},
	"punk":       {"anarchic energy", "DIY aesthetic", "raw and unpolished"},
	"indie":      {"dreamy atmosphere", "soft focus", "artistic flair"},
	"reggae":     {"tropical colors", "laid-back vibes", "sunshine"},
	"blues":      {"deep blues", "melancholic mood", "soulful expression"},
	"ambient":    {"ethereal fog", "peaceful atmosphere", "soft gradients"},
	"techno":     {"geometric patterns", "industrial aesthetic", "hypnotic"},
}

// genreOrder 匹配时的固定遍历顺序，保证同一提示词总是命中同一条目
// 较长的流派名排前面，避免"hip hop"被"pop"子串抢先命中
var genreOrder = []string{
	"hip hop", "electronic", "classical", "country", "ambient",
	"reggae", "techno", "blues", "metal", "indie", "punk", "soul",
	"folk", "rock", "jazz", "rap", "edm", "r&b", "pop",
}

// defaultStyleTokens 没有流派提示时的通用样式序列
var defaultStyleTokens = []string{
	"ethereal", "dreamlike", "cinematic lighting", "surreal digital art",
}

// SeedStyleTokens 决定样式轮换序列
// 优先级：显式配置 > 流派映射（子串匹配，忽略大小写）> 通用序列
func SeedStyleTokens(configured []string, genreHint string) []string {
	if len(configured) > 0 {
		return configured
	}
	if genreHint != "" {
		hint := strings.ToLower(genreHint)
		for _, key := range genreOrder {
			if strings.Contains(hint, key) {
				return genreStyles[key]
			}
		}
	}
	return defaultStyleTokens
}
