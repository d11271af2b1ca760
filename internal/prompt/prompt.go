// Package prompt builds the fixed instruction given to the scene
// interpreter. Only the scene description is substituted; everything else is
// static so the model's output shape stays predictable.
package prompt

import "fmt"

const sceneTemplate = `You are a sound designer building an ambient soundscape for the following scene:

"%s"

Respond with JSON only, no surrounding prose, using exactly this shape:
{
  "narrative": "a short atmospheric description of the scene",
  "sound_elements": [
    {
      "name": "short unique name for this sound layer",
      "description": "what the sound is, suitable as a generation prompt",
      "parameters": {
        "volume": 0.0,
        "pan": 0.0,
        "effects": ["effect name"]
      }
    }
  ]
}

volume is between 0 and 1, pan between -1 (left) and 1 (right). List the most
important ambient layers first.`

// Build substitutes the scene description into the interpreter template.
func Build(scene string) string {
	return fmt.Sprintf(sceneTemplate, scene)
}
