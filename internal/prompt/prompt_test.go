package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSubstitutesScene(t *testing.T) {
	t.Parallel()

	out := Build("a rainy night market in Taipei")
	require.Contains(t, out, "a rainy night market in Taipei")
	require.Contains(t, out, "sound_elements")
	require.Contains(t, out, "narrative")
}

func TestBuildPassesFormatVerbsThrough(t *testing.T) {
	t.Parallel()

	// Scene text is an argument, not a format string; % runes must survive.
	out := Build("humidity at 90%s of saturation")
	require.Contains(t, out, "humidity at 90%s of saturation")
	require.Equal(t, 1, strings.Count(out, "humidity"))
}
