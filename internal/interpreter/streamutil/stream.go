package streamutil

import (
	"context"
	"sync"
)

// YieldFunc receives text fragments. Returning false stops further forwarding.
type YieldFunc func(string) bool

// Forward wraps provider-specific streaming logic with a shared channel
// lifecycle so the interpreter follows one contract when emitting fragments.
// The forward callback should invoke yield for every fragment until it
// returns false or the stream is exhausted.
func Forward(ctx context.Context, closer func() error, forward func(ctx context.Context, yield YieldFunc)) (<-chan string, func() error) {
	fragments := make(chan string)
	var once sync.Once
	callCloser := func() {
		if closer == nil {
			return
		}
		once.Do(func() {
			_ = closer()
		})
	}

	go func() {
		defer close(fragments)
		defer callCloser()

		forward(ctx, func(fragment string) bool {
			select {
			case <-ctx.Done():
				return false
			case fragments <- fragment:
				return true
			}
		})
	}()

	return fragments, func() error {
		callCloser()
		return nil
	}
}
