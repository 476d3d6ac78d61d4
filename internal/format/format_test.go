package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredFormats(t *testing.T) {
	assert.Equal(t, []string{"normal", "shorts"}, Supported())

	shorts, err := Get("shorts")
	require.NoError(t, err)
	w, h := shorts.Dimensions()
	assert.Equal(t, 1080, w)
	assert.Equal(t, 1920, h)
	assert.Equal(t, "9:16", shorts.AspectRatio())

	normal, err := Get("normal")
	require.NoError(t, err)
	w, h = normal.Dimensions()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
	assert.Equal(t, "16:9", normal.AspectRatio())
}

func TestGetUnknown(t *testing.T) {
	_, err := Get("square")
	assert.EqualError(t, err, "unsupported format: square")
}

func TestLineWidth(t *testing.T) {
	shorts, _ := Get("shorts")
	assert.Equal(t, 980, LineWidth(shorts))
}
