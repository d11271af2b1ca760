// Package compose merges the textual and image-derived halves of a scene
// request into the single scene string the prompt builder consumes.
package compose

import (
	"context"
	"fmt"
	"log/slog"
)

// ImageDescriber turns raw image bytes into a coarse scene phrase.
type ImageDescriber interface {
	Describe(ctx context.Context, image []byte) (string, error)
}

type Composer struct {
	describer ImageDescriber
}

func New(describer ImageDescriber) *Composer {
	return &Composer{describer: describer}
}

// Combine produces one scene string from an optional text description and
// optional image bytes. Describer failures are swallowed and treated as an
// empty image description; the scene text alone still flows through.
func (c *Composer) Combine(ctx context.Context, text string, image []byte) string {
	imageDesc := ""
	if len(image) > 0 && c.describer != nil {
		desc, err := c.describer.Describe(ctx, image)
		if err != nil {
			slog.Warn("image description failed", slog.String("error", err.Error()))
		} else {
			imageDesc = desc
		}
	}

	switch {
	case text == "" && imageDesc == "":
		return ""
	case imageDesc == "":
		return text
	case text == "":
		return imageDesc
	default:
		return fmt.Sprintf("%s (Scene also contains: %s)", text, imageDesc)
	}
}
