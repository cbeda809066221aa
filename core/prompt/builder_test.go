package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSubstitutesPlaceholders(t *testing.T) {
	b := NewBuilder("{song} by {artist}", "fallback", "")
	got := b.Build(map[string]string{
		KeySong:   "Song A",
		KeyArtist: "Artist B",
	}, true)
	assert.Equal(t, "Song A by Artist B", got)
}

func TestBuildFallbackVerbatimWhenNoTrack(t *testing.T) {
	b := NewBuilder("{song} by {artist}, {unknown}", "Abstract flowing colors and shapes", "oil painting")
	got := b.Build(nil, false)
	// 回退串原样返回：不做替换，也不加画风后缀
	assert.Equal(t, "Abstract flowing colors and shapes", got)
}

func TestBuildNoFallbackConfigured(t *testing.T) {
	b := NewBuilder("{song} visual", "", "")
	got := b.Build(nil, false)
	assert.Equal(t, " visual", got, "absent bindings substitute empty strings")
}

func TestBuildUnknownPlaceholderLeftVerbatim(t *testing.T) {
	b := NewBuilder("{song} with {mood} mood", "", "")
	got := b.Build(map[string]string{KeySong: "Tune"}, true)
	assert.Equal(t, "Tune with {mood} mood", got)
}

func TestBuildAbsentBindingSubstitutesEmpty(t *testing.T) {
	b := NewBuilder("[{lyrics}] {song}", "", "")
	got := b.Build(map[string]string{KeySong: "Tune"}, true)
	assert.Equal(t, "[] Tune", got)
}

func TestBuildAppendsArtStyle(t *testing.T) {
	b := NewBuilder("{song}", "", "surreal digital art")
	got := b.Build(map[string]string{KeySong: "Tune"}, true)
	assert.Equal(t, "Tune, surreal digital art", got)
}
