package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSceneResultRoundTrip(t *testing.T) {
	t.Parallel()

	original := SceneResult{
		Narrative: "Waves roll against a quiet shore at dusk.",
		SoundElements: []SoundElement{
			{
				Name:        "Ocean Waves",
				Description: "gentle waves breaking on sand",
				Parameters:  ElementParameters{Volume: 0.8, Pan: -0.2, Effects: []string{"reverb"}},
			},
			{
				Name:        "Wind",
				Description: "soft coastal wind",
				Parameters:  ElementParameters{Volume: 0.4, Pan: 0.5, Effects: []string{"lowpass", "reverb"}},
			},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	parsed, err := ParseSceneResult(string(data))
	require.NoError(t, err)
	require.Equal(t, original, parsed)
}

func TestParseSceneResultMalformed(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"not json",
		"",
		"{\"narrative\": \"x\", \"sound_elements\": ",
		"Error: upstream unavailable",
	} {
		_, err := ParseSceneResult(text)
		require.Error(t, err, "input %q", text)
	}
}

func TestParseSceneResultToleratesWhitespace(t *testing.T) {
	t.Parallel()

	parsed, err := ParseSceneResult("\n  {\"narrative\":\"n\",\"sound_elements\":[]}  \n")
	require.NoError(t, err)
	require.Equal(t, "n", parsed.Narrative)
	require.Empty(t, parsed.SoundElements)
}

func TestParseSceneResultRejectsNonNumericVolume(t *testing.T) {
	t.Parallel()

	// A model that emits volume as prose falls into the error+raw path
	// rather than being silently coerced.
	_, err := ParseSceneResult(`{"narrative":"n","sound_elements":[{"name":"Wind","description":"d","parameters":{"volume":"loud","pan":0,"effects":[]}}]}`)
	require.Error(t, err)
}
