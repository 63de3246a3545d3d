package mp4

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0x80, A: 0xff})
		}
	}
	return img
}

func TestNormalizeCoverPassThrough(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(16, 8)))

	out, err := NormalizeCover(buf.Bytes(), 0)
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), out)

	out, err = NormalizeCover(buf.Bytes(), 16)
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), out)
}

func TestNormalizeCoverScales(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(16, 8)))

	out, err := NormalizeCover(buf.Bytes(), 4)
	require.NoError(t, err)
	require.Equal(t, mp4io.DataTypePNG, coverDataType(out))
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Width)
	require.Equal(t, 2, cfg.Height)
}

func TestNormalizeCoverBMP(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, testImage(8, 8)))

	out, err := NormalizeCover(buf.Bytes(), 0)
	require.NoError(t, err)
	require.Equal(t, mp4io.DataTypeJPEG, coverDataType(out))
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Width)
}

func TestNormalizeCoverUnknown(t *testing.T) {
	t.Parallel()

	_, err := NormalizeCover([]byte("not an image"), 0)
	var ue *mp4io.UnsupportedError
	require.True(t, errors.As(err, &ue), "%v", err)
}
