// Package app wires process-wide dependencies into one container that is
// built at startup and injected into the HTTP layer. Model clients and
// storage handles live for the process lifetime; there is no teardown beyond
// Close.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sonara/soundscape/internal/audiogen"
	"github.com/sonara/soundscape/internal/cache"
	"github.com/sonara/soundscape/internal/compose"
	"github.com/sonara/soundscape/internal/config"
	"github.com/sonara/soundscape/internal/interpreter"
	"github.com/sonara/soundscape/internal/observability"
	"github.com/sonara/soundscape/internal/renderer"
	"github.com/sonara/soundscape/internal/storage/blob"
	"github.com/sonara/soundscape/internal/vision"
)

// Container aggregates shared dependencies for handlers.
type Container struct {
	Config        *config.Config
	Redis         *redis.Client
	Idempotency   *cache.IdempotencyCache
	Observability *observability.Provider
	Interpreter   *interpreter.Interpreter
	Composer      *compose.Composer
	Renderer      *renderer.Renderer
	Store         blob.Store
	AudioGen      *audiogen.Client
}

// NewContainer builds every shared handle. redisClient may be nil, which
// leaves the idempotency cache inert.
func NewContainer(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	interp, err := interpreter.New(cfg.Interpreter)
	if err != nil {
		return nil, err
	}

	store, err := blob.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	audioClient := audiogen.New(cfg.AudioGen)

	return &Container{
		Config:        cfg,
		Redis:         redisClient,
		Idempotency:   cache.NewIdempotencyCache(redisClient, cfg.Cache.TTL),
		Observability: obs,
		Interpreter:   interp,
		Composer:      compose.New(vision.New(cfg.Vision)),
		Renderer:      renderer.New(audioClient, store, obs, cfg.Renderer),
		Store:         store,
		AudioGen:      audioClient,
	}, nil
}

// Close releases container-held resources.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
