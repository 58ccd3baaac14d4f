package format

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestText_NormalizesAndCollapses(t *testing.T) {
	// "e" + combining acute accent composes to a single rune.
	require.Equal(t, "Caf\u00e9 review", Text("  Cafe\u0301\n\treview "))
	require.Equal(t, "", Text("   "))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 10))
	require.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	require.Equal(t, "日本…", Truncate("日本語のタイトル", 3))
	require.Equal(t, "unchanged", Truncate("unchanged", 0))

	long := Truncate(string(make([]rune, 3000)), 2000)
	require.Equal(t, 2000, utf8.RuneCountInString(long))
}

func TestElapsed(t *testing.T) {
	require.Equal(t, "3.5 seconds", Elapsed(3500*time.Millisecond))
	require.Equal(t, "1.5 minutes", Elapsed(90*time.Second))
	require.Equal(t, "2.0 hours", Elapsed(2*time.Hour))
}

func TestPlainText(t *testing.T) {
	require.Equal(t, "Rock & Roll", PlainText("Rock &amp; Roll"))
	require.Equal(t, "Tom's \"cut\"", PlainText("Tom&#39;s &quot;cut&quot;"))
	require.Equal(t, "Bold move", PlainText("<b>Bold</b> move<script>x()</script>"))
}
