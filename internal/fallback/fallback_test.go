package fallback

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tier(name string, v int, err error, calls *[]string) Tier[int] {
	return Tier[int]{Name: name, Run: func(context.Context) (int, error) {
		*calls = append(*calls, name)
		return v, err
	}}
}

func TestFirstStopsAtFirstSuccess(t *testing.T) {
	var calls []string
	v, name, err := First(context.Background(), zerolog.Nop(),
		tier("a", 0, errors.New("boom"), &calls),
		tier("b", 2, nil, &calls),
		tier("c", 3, nil, &calls),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, "b", name)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestFirstAllFail(t *testing.T) {
	var calls []string
	_, _, err := First(context.Background(), zerolog.Nop(),
		tier("a", 0, errors.New("one"), &calls),
		tier("b", 0, errors.New("two"), &calls),
	)
	require.Error(t, err)

	var chainErr *ChainError
	require.True(t, errors.As(err, &chainErr))
	require.Len(t, chainErr.Failures, 2)
	assert.Equal(t, "b", chainErr.Failures[1].Tier)
	assert.Contains(t, err.Error(), "a: one")
}

func TestFirstNoTiers(t *testing.T) {
	_, _, err := First[int](context.Background(), zerolog.Nop())
	assert.Error(t, err)
}

func TestFirstHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	_, _, err := First(ctx, zerolog.Nop(), tier("a", 1, nil, &calls))
	require.Error(t, err)
	assert.Empty(t, calls)
}
