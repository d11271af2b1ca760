package streamutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForwardDeliversFragmentsAndCloses(t *testing.T) {
	t.Parallel()

	closed := 0
	fragments, cancel := Forward(context.Background(), func() error {
		closed++
		return nil
	}, func(ctx context.Context, yield YieldFunc) {
		yield("one")
		yield("two")
	})

	var got []string
	for fragment := range fragments {
		got = append(got, fragment)
	}
	require.Equal(t, []string{"one", "two"}, got)
	require.NoError(t, cancel())
	require.Equal(t, 1, closed, "closer must run exactly once")
}

func TestForwardStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancelCtx := context.WithCancel(context.Background())
	fragments, cancel := Forward(ctx, nil, func(ctx context.Context, yield YieldFunc) {
		for yield("tick") {
		}
	})
	defer func() { _ = cancel() }()

	<-fragments
	cancelCtx()

	// The channel must close once the producer observes cancellation.
	for range fragments {
	}
}
