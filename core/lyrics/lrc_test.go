package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PromptFM/model"
)

func TestParseLRCBasic(t *testing.T) {
	raw := "[ar:Somebody]\n" +
		"[00:12.50]Line one\n" +
		"[00:17.123]Line two\n" +
		"\n" +
		"[01:02]Line three\n" +
		"not a timestamp line\n"

	lines := ParseLRC(raw)
	require.Len(t, lines, 3)

	assert.Equal(t, int64(12500), lines[0].StartMs, ".50 reads as hundredths")
	assert.Equal(t, "Line one", lines[0].Text)
	assert.Equal(t, int64(17123), lines[1].StartMs, ".123 reads as milliseconds")
	assert.Equal(t, int64(62000), lines[2].StartMs, "no fraction")
}

func TestParseLRCSortsUnorderedInput(t *testing.T) {
	raw := "[00:30.00]later\n[00:10.00]earlier\n[00:20.00]middle\n"
	lines := ParseLRC(raw)
	require.Len(t, lines, 3)
	assert.Equal(t, "earlier", lines[0].Text)
	assert.Equal(t, "middle", lines[1].Text)
	assert.Equal(t, "later", lines[2].Text)
}

func TestParseLRCDeduplicatesEqualOffsets(t *testing.T) {
	// 相同起始时间只保留先出现的行
	raw := "[00:10.00]first occurrence\n[00:10.00]second occurrence\n"
	lines := ParseLRC(raw)
	require.Len(t, lines, 1)
	assert.Equal(t, "first occurrence", lines[0].Text)
}

func TestParseLRCSkipsEmptyText(t *testing.T) {
	raw := "[00:10.00]\n[00:20.00]content\n"
	lines := ParseLRC(raw)
	require.Len(t, lines, 1)
	assert.Equal(t, "content", lines[0].Text)
}

func TestParseLRCEmptyInput(t *testing.T) {
	assert.Empty(t, ParseLRC(""))
	assert.Empty(t, ParseLRC("plain text without any timestamps"))
}

func sampleTrack() model.LyricTrack {
	return model.LyricTrack{
		{StartMs: 0, Text: "line one"},
		{StartMs: 5000, Text: "line two"},
		{StartMs: 9000, Text: "line three"},
	}
}
