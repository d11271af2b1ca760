package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubDescriber struct {
	desc string
	err  error
}

func (s *stubDescriber) Describe(ctx context.Context, image []byte) (string, error) {
	return s.desc, s.err
}

func TestCombine(t *testing.T) {
	t.Parallel()

	img := []byte("img")
	c := New(&stubDescriber{desc: "a forest and rain"})

	require.Equal(t, "", c.Combine(context.Background(), "", nil))
	require.Equal(t, "text", c.Combine(context.Background(), "text", nil))
	require.Equal(t, "a forest and rain", c.Combine(context.Background(), "", img))
	require.Equal(t, "text (Scene also contains: a forest and rain)",
		c.Combine(context.Background(), "text", img))
}

func TestCombineSwallowsDescriberFailure(t *testing.T) {
	t.Parallel()

	c := New(&stubDescriber{err: errors.New("classifier down")})
	require.Equal(t, "text", c.Combine(context.Background(), "text", []byte("img")))
	require.Equal(t, "", c.Combine(context.Background(), "", []byte("img")))
}

func TestCombineWithoutDescriber(t *testing.T) {
	t.Parallel()

	c := New(nil)
	require.Equal(t, "text", c.Combine(context.Background(), "text", []byte("img")))
}
