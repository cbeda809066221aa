package prompt

import (
	"strings"
	"unicode"
)

// defaultStopWords 默认停用词表，未配置STOP_WORDS时使用
var defaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
	"i", "in", "is", "it", "its", "me", "my", "of", "oh", "on",
	"or", "so", "that", "the", "to", "was", "we", "with", "you", "your",
}

// KeywordReducer 把一行歌词压缩成关键信息词
// 纯函数式：分词、去标点、过滤停用词（忽略大小写）、单空格重连，保持原有顺序
// 只作用于歌词文本，不作用于标题或歌手名
type KeywordReducer struct {
	stop map[string]struct{}
}

// NewKeywordReducer 创建关键词化简器；stopWords为空时使用内置停用词表
func NewKeywordReducer(stopWords []string) *KeywordReducer {
	if len(stopWords) == 0 {
		stopWords = defaultStopWords
	}
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &KeywordReducer{stop: stop}
}

// Reduce 化简一行文本；空输入得到空输出；化简结果再化简不变
func (k *KeywordReducer) Reduce(text string) string {
	var out []string
	for _, token := range strings.Fields(text) {
		word := stripPunct(token)
		if word == "" {
			continue
		}
		if _, ok := k.stop[strings.ToLower(word)]; ok {
			continue
		}
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

// stripPunct 去掉词中的标点符号，保留字母与数字
func stripPunct(token string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, token)
}
