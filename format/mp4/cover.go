package mp4

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
)

const coverQuality = 90

// NormalizeCover returns cover art that players accept: JPEG and PNG pass
// through, other formats are re-encoded as JPEG. An image whose longest edge
// exceeds maxSize is scaled down; 0 disables scaling.
func NormalizeCover(data []byte, maxSize int) ([]byte, error) {
	format, cfg, err := coverConfig(data)
	if err != nil {
		return nil, err
	}
	scale := maxSize > 0 && max(cfg.Width, cfg.Height) > maxSize
	if !scale && (format == "jpeg" || format == "png") {
		return data, nil
	}

	img, err := decodeCover(format, data)
	if err != nil {
		return nil, err
	}
	if scale {
		img = scaleCover(img, cfg, maxSize)
	}

	var buf bytes.Buffer
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: coverQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func coverConfig(data []byte) (string, image.Config, error) {
	r := bytes.NewReader(data)
	if cfg, err := jpeg.DecodeConfig(r); err == nil {
		return "jpeg", cfg, nil
	}
	r.Reset(data)
	if cfg, err := png.DecodeConfig(r); err == nil {
		return "png", cfg, nil
	}
	r.Reset(data)
	if cfg, err := webp.DecodeConfig(r); err == nil {
		return "webp", cfg, nil
	}
	r.Reset(data)
	if cfg, err := bmp.DecodeConfig(r); err == nil {
		return "bmp", cfg, nil
	}
	return "", image.Config{}, &mp4io.UnsupportedError{Feature: "cover image format", Offset: -1}
}

func decodeCover(format string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case "jpeg":
		return jpeg.Decode(r)
	case "png":
		return png.Decode(r)
	case "webp":
		return webp.Decode(r)
	default:
		return bmp.Decode(r)
	}
}

func scaleCover(img image.Image, cfg image.Config, maxSize int) image.Image {
	w, h := maxSize, maxSize
	if cfg.Width > cfg.Height {
		h = max(cfg.Height*maxSize/cfg.Width, 1)
	} else {
		w = max(cfg.Width*maxSize/cfg.Height, 1)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
