package cache

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PromptFM/model"
)

type fakeSynced struct {
	calls int
	lines model.LyricTrack
	err   error
}

func (f *fakeSynced) Lookup(title, artist, album string, durationSec int) (model.LyricTrack, error) {
	f.calls++
	return f.lines, f.err
}

type fakePlain struct {
	calls int
	text  string
	err   error
}

func (f *fakePlain) Lookup(title, artist string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestSyncedPreferredAndMemoized(t *testing.T) {
	synced := &fakeSynced{lines: model.LyricTrack{{StartMs: 0, Text: "hello"}}}
	plain := &fakePlain{text: "should not be used"}
	s := NewLyricStore(synced, plain, 500, 0)

	np := testTrack("a")
	entry := s.Ensure(np)
	require.Equal(t, model.LyricSynced, entry.Kind)
	assert.Len(t, entry.Lines, 1)
	assert.Equal(t, 1, synced.calls)
	assert.Equal(t, 0, plain.calls, "plain provider not consulted when synced succeeds")

	// 同一曲目不再回源
	for i := 0; i < 5; i++ {
		s.Ensure(np)
	}
	assert.Equal(t, 1, synced.calls)
}

func TestPlainFallbackTruncated(t *testing.T) {
	synced := &fakeSynced{} // 无同步歌词
	plain := &fakePlain{text: strings.Repeat("word ", 100)}
	s := NewLyricStore(synced, plain, 50, 0)

	entry := s.Ensure(testTrack("a"))
	require.Equal(t, model.LyricPlain, entry.Kind)
	assert.True(t, strings.HasSuffix(entry.Snippet, "..."))
	// 省略号计入上限
	assert.LessOrEqual(t, len([]rune(entry.Snippet)), 50)
	assert.Equal(t, 1, plain.calls)
}

func TestTruncateSnippetRespectsBudget(t *testing.T) {
	long := strings.Repeat("word ", 40)
	for _, max := range []int{2, 3, 10, 25, 120} {
		got := truncateSnippet(long, max)
		assert.LessOrEqual(t, len([]rune(got)), max, "max=%d", max)
	}

	// 未超长时原样返回
	assert.Equal(t, "short", truncateSnippet("short", 50))
}

func TestBothProvidersFailCachedAsNegative(t *testing.T) {
	synced := &fakeSynced{err: fmt.Errorf("timeout")}
	plain := &fakePlain{err: fmt.Errorf("timeout")}
	s := NewLyricStore(synced, plain, 500, 0)

	np := testTrack("a")
	entry := s.Ensure(np)
	assert.Equal(t, model.LyricNone, entry.Kind)

	// 负结果同样缓存，失败不会被反复重试
	s.Ensure(np)
	s.Ensure(np)
	assert.Equal(t, 1, synced.calls)
	assert.Equal(t, 1, plain.calls)
}

func TestRecencyBoundedEviction(t *testing.T) {
	synced := &fakeSynced{lines: model.LyricTrack{{StartMs: 0, Text: "x"}}}
	plain := &fakePlain{}
	s := NewLyricStore(synced, plain, 500, 2)

	s.Ensure(testTrack("a"))
	s.Ensure(testTrack("b"))
	s.Ensure(testTrack("a")) // a成为最近使用
	s.Ensure(testTrack("c")) // 淘汰b

	assert.Equal(t, 2, s.Len())

	// a仍在缓存，不回源；b被淘汰，需要重新查询
	before := synced.calls
	s.Ensure(testTrack("a"))
	assert.Equal(t, before, synced.calls)

	s.Ensure(testTrack("b"))
	assert.Equal(t, before+1, synced.calls)
}

func TestUnboundedByDefault(t *testing.T) {
	synced := &fakeSynced{lines: model.LyricTrack{{StartMs: 0, Text: "x"}}}
	s := NewLyricStore(synced, &fakePlain{}, 500, 0)

	for i := 0; i < 64; i++ {
		s.Ensure(testTrack(fmt.Sprintf("t%d", i)))
	}
	assert.Equal(t, 64, s.Len())
}
