package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sonara/soundscape/internal/app"
	"github.com/sonara/soundscape/internal/cache"
	"github.com/sonara/soundscape/internal/httpserver/httputil"
	"github.com/sonara/soundscape/internal/models"
	"github.com/sonara/soundscape/internal/observability"
	"github.com/sonara/soundscape/internal/prompt"
	"github.com/sonara/soundscape/internal/renderer"
	"github.com/sonara/soundscape/internal/storage/blob"
)

type sceneInterpreter interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string) (<-chan string, func() error, error)
}

type sceneComposer interface {
	Combine(ctx context.Context, text string, image []byte) string
}

type audioRenderer interface {
	Render(ctx context.Context, elements []models.SoundElement) []renderer.Outcome
}

type handler struct {
	interpreter sceneInterpreter
	composer    sceneComposer
	renderer    audioRenderer
	idempotency *cache.IdempotencyCache
	obs         *observability.Provider
	store       blob.Store
}

// Register mounts the soundscape pipeline routes.
func Register(fiberApp *fiber.App, container *app.Container) {
	h := &handler{
		interpreter: container.Interpreter,
		composer:    container.Composer,
		renderer:    container.Renderer,
		idempotency: container.Idempotency,
		obs:         container.Observability,
		store:       container.Store,
	}
	h.register(fiberApp)
}

func (h *handler) register(fiberApp *fiber.App) {
	fiberApp.Post("/chat", h.handleChat)
	fiberApp.Post("/generate-scene", h.handleGenerateScene)
	fiberApp.Post("/generate-audio", h.handleGenerateAudio)
	fiberApp.Get("/static/audio/:filename", h.handleStaticAudio)
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type sceneRequest struct {
	Scene string `json:"scene"`
}

type generateAudioRequest struct {
	SoundElements []models.SoundElement `json:"sound_elements"`
}

type chunkFrame struct {
	Chunk string `json:"chunk"`
}

// handleChat streams interpreter output for a free-form prompt as SSE
// {chunk} frames. Upstream failures arrive inline as an "Error: ..." chunk,
// never as an HTTP error status.
func (h *handler) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return httputil.WriteError(c, fiber.StatusBadRequest, "prompt is required")
	}

	ctx := c.UserContext()
	fragments, cancel, err := h.interpreter.Stream(ctx, prompt.Build(req.Prompt))
	if err != nil {
		setSSEHeaders(c)
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			_ = writeChunkFrame(w, "Error: "+err.Error())
		})
		return nil
	}

	setSSEHeaders(c)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for fragment := range fragments {
			if err := writeChunkFrame(w, fragment); err != nil {
				return
			}
		}
	})
	return nil
}

// handleGenerateScene serves both request shapes on one route. A multipart
// body carries a text field plus an optional image file and returns the
// parsed soundscape JSON; a JSON body carries a scene string and returns the
// accumulated model output as a single SSE {chunk} frame.
func (h *handler) handleGenerateScene(c *fiber.Ctx) error {
	contentType := string(c.Request().Header.ContentType())
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return h.generateSceneStructured(c)
	}
	return h.generateSceneStream(c)
}

func (h *handler) generateSceneStream(c *fiber.Ctx) error {
	var req sceneRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.Scene) == "" {
		return httputil.WriteError(c, fiber.StatusBadRequest, "scene is required")
	}

	text, err := h.interpreter.Complete(c.UserContext(), prompt.Build(req.Scene))
	if err != nil {
		text = "Error: " + err.Error()
	}

	setSSEHeaders(c)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		_ = writeChunkFrame(w, text)
	})
	return nil
}

func (h *handler) generateSceneStructured(c *fiber.Ctx) error {
	text := c.FormValue("text")

	var image []byte
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "unreadable image upload")
		}
		image, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "unreadable image upload")
		}
	}

	ctx := c.UserContext()
	scene := h.composer.Combine(ctx, text, image)
	if strings.TrimSpace(scene) == "" {
		return httputil.WriteError(c, fiber.StatusBadRequest, "text or image is required")
	}

	raw, err := h.interpreter.Complete(ctx, prompt.Build(scene))
	if err != nil {
		raw = "Error: " + err.Error()
	}

	result, parseErr := models.ParseSceneResult(raw)
	if parseErr != nil {
		h.obs.RecordSceneInterpretation("parse_error")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"error": parseErr.Error(),
			"raw":   raw,
		})
	}
	h.obs.RecordSceneInterpretation("ok")
	return c.Status(fiber.StatusOK).JSON(result)
}

// handleGenerateAudio renders one clip per element and returns audio_urls
// positionally aligned with the input list; failed elements appear as null.
// A client-supplied Idempotency-Key replays the previous response instead of
// re-rendering.
func (h *handler) handleGenerateAudio(c *fiber.Ctx) error {
	var req generateAudioRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid JSON body")
	}

	ctx := c.UserContext()
	idempotencyKey := strings.TrimSpace(c.Get("Idempotency-Key"))
	if cached, ok := h.idempotency.Get(ctx, idempotencyKey); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(cached)
	}

	outcomes := h.renderer.Render(ctx, req.SoundElements)
	urls := make([]*string, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			continue
		}
		url := outcome.URL
		urls[i] = &url
	}

	body, err := json.Marshal(fiber.Map{"audio_urls": urls})
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "encode response")
	}
	h.idempotency.Set(ctx, idempotencyKey, body)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}

// handleStaticAudio streams a stored clip. Serving through the blob store
// keeps local and s3 backends behind the same URL shape.
func (h *handler) handleStaticAudio(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if filename == "" || strings.ContainsAny(filename, "/\\") || !strings.HasSuffix(filename, ".wav") {
		return httputil.WriteError(c, fiber.StatusNotFound, "clip not found")
	}

	reader, info, err := h.store.Get(c.UserContext(), "audio/"+filename)
	if err != nil {
		if err == blob.ErrNotFound {
			return httputil.WriteError(c, fiber.StatusNotFound, "clip not found")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, "read clip")
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "audio/wav"
	}
	c.Set(fiber.HeaderContentType, contentType)
	if info.Size > 0 {
		return c.SendStream(reader, int(info.Size))
	}
	return c.SendStream(reader)
}

func setSSEHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("Connection", "keep-alive")
}

func writeChunkFrame(w *bufio.Writer, chunk string) error {
	data, err := json.Marshal(chunkFrame{Chunk: chunk})
	if err != nil {
		return err
	}
	if _, err = w.WriteString("data: "); err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		return err
	}
	if _, err = w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
