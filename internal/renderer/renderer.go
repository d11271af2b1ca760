// Package renderer turns interpreted sound elements into stored WAV clips.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/sonara/soundscape/internal/config"
	"github.com/sonara/soundscape/internal/models"
	"github.com/sonara/soundscape/internal/storage/blob"
)

// Generator produces raw WAV audio for a textual description.
type Generator interface {
	Generate(ctx context.Context, description string) ([]byte, error)
}

// Recorder receives per-element render timings. Nil is allowed.
type Recorder interface {
	ObserveElementRender(duration time.Duration, success bool)
}

// Outcome is the result of rendering a single element. Err is set when the
// element failed; URL is the public path of the stored clip otherwise.
type Outcome struct {
	Name string
	URL  string
	Err  error
}

type Renderer struct {
	generator Generator
	store     blob.Store
	recorder  Recorder
	cfg       config.RendererConfig
}

func New(generator Generator, store blob.Store, recorder Recorder, cfg config.RendererConfig) *Renderer {
	return &Renderer{generator: generator, store: store, recorder: recorder, cfg: cfg}
}

// Render generates and stores one clip per element, capped at the configured
// maximum. Elements are processed sequentially in input order; a failed
// element yields an Outcome with Err set and does not stop the rest. The
// returned slice is always the same length and order as the (capped) input.
func (r *Renderer) Render(ctx context.Context, elements []models.SoundElement) []Outcome {
	if len(elements) > r.cfg.MaxElements {
		slog.Info("capping sound elements",
			slog.Int("requested", len(elements)),
			slog.Int("max", r.cfg.MaxElements))
		elements = elements[:r.cfg.MaxElements]
	}

	jobID := uuid.NewString()
	outcomes := make([]Outcome, 0, len(elements))
	for i, el := range elements {
		start := time.Now()
		outcome := r.renderOne(ctx, jobID, i, el)
		if r.recorder != nil {
			r.recorder.ObserveElementRender(time.Since(start), outcome.Err == nil)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (r *Renderer) renderOne(ctx context.Context, jobID string, index int, el models.SoundElement) Outcome {
	name := sanitizeName(el.Name)
	if name == "" {
		name = fmt.Sprintf("element_%d", index)
	}
	log := slog.With(
		slog.String("job_id", jobID),
		slog.String("element", el.Name),
		slog.String("file", name))

	description := strings.TrimSpace(el.Description)
	if description == "" {
		description = el.Name
	}

	audio, err := r.generator.Generate(ctx, description)
	if err != nil {
		log.Error("audio generation failed", slog.String("error", err.Error()))
		return Outcome{Name: el.Name, Err: fmt.Errorf("generate %q: %w", el.Name, err)}
	}

	normalized, ok := normalizePeak(audio, r.cfg.TargetPeak)
	if !ok {
		log.Warn("clip is not 16-bit PCM, storing unnormalized")
	}

	key := "audio/" + name + ".wav"
	if _, err := r.store.Put(ctx, key, bytes.NewReader(normalized), blob.PutOptions{ContentType: "audio/wav"}); err != nil {
		log.Error("clip store failed", slog.String("error", err.Error()))
		return Outcome{Name: el.Name, Err: fmt.Errorf("store %q: %w", el.Name, err)}
	}

	if err := r.verifyStored(ctx, key); err != nil {
		log.Error("clip verification failed", slog.String("error", err.Error()))
		return Outcome{Name: el.Name, Err: fmt.Errorf("verify %q: %w", el.Name, err)}
	}

	log.Info("clip rendered", slog.Int("bytes", len(normalized)))
	return Outcome{Name: el.Name, URL: "/static/" + key}
}

// verifyStored re-reads the stored object and rejects empty writes.
func (r *Renderer) verifyStored(ctx context.Context, key string) error {
	reader, info, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer reader.Close()
	if info.Size > 0 {
		return nil
	}
	// Backends that do not report size up front need a read probe.
	n, err := reader.Read(make([]byte, 1))
	if err != nil && err != io.EOF {
		return err
	}
	if n == 0 {
		return fmt.Errorf("stored clip is empty")
	}
	return nil
}

// sanitizeName maps an element name to a filesystem and URL safe stem.
// Spaces become underscores; anything outside letters, digits, underscore and
// hyphen is dropped.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
