package models

import (
	"encoding/json"
	"strings"
)

// SoundElement is one named audio layer of a soundscape, with the mix
// parameters suggested by the interpreter. Name doubles as the file-naming
// key for rendered clips, so it is expected to be unique within one request.
type SoundElement struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  ElementParameters `json:"parameters"`
}

// ElementParameters carry the interpreter's mix suggestions. Values are
// passed through as-is; nothing enforces the documented ranges.
type ElementParameters struct {
	Volume  float64  `json:"volume"`
	Pan     float64  `json:"pan"`
	Effects []string `json:"effects"`
}

// SceneResult is the structured soundscape produced for one scene.
type SceneResult struct {
	Narrative     string         `json:"narrative"`
	SoundElements []SoundElement `json:"sound_elements"`
}

// ParseSceneResult decodes the interpreter's accumulated text output into a
// SceneResult. Any decode failure is returned as an error alongside the raw
// text so callers can hand it back to the client for debugging; there is no
// repair or coercion.
func ParseSceneResult(text string) (SceneResult, error) {
	var result SceneResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
		return SceneResult{}, err
	}
	return result, nil
}
