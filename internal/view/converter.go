package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/image/draw"
)

// ErrConverterUnavailable is returned when no HEIC decoder is installed.
var ErrConverterUnavailable = errors.New("heic converter unavailable")

// Converter turns HEIC data into a JPEG no larger than size x size. A size
// of 0 keeps the original dimensions.
type Converter interface {
	ToJPEG(ctx context.Context, data []byte, size int) ([]byte, error)
}

// ExecConverter shells out to heif-convert from libheif and scales the
// result in process.
type ExecConverter struct {
	// Binary is the converter executable. Empty means heif-convert on PATH.
	Binary  string
	Quality int
}

// NewExecConverter returns a converter for binary, or heif-convert when
// binary is empty.
func NewExecConverter(binary string) *ExecConverter {
	if binary == "" {
		binary = "heif-convert"
	}
	return &ExecConverter{Binary: binary, Quality: 90}
}

// Available reports whether the converter binary can be found.
func (c *ExecConverter) Available() bool {
	_, err := exec.LookPath(c.Binary)
	return err == nil
}

// ToJPEG implements Converter.
func (c *ExecConverter) ToJPEG(ctx context.Context, data []byte, size int) ([]byte, error) {
	bin, err := exec.LookPath(c.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConverterUnavailable, err)
	}

	dir, err := os.MkdirTemp("", "sfm-heic-")
	if err != nil {
		return nil, fmt.Errorf("ToJPEG: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.heic")
	out := filepath.Join(dir, "out.jpg")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("ToJPEG: write input: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, in, out) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ToJPEG: %s: %w: %s", c.Binary, err, bytes.TrimSpace(output))
	}

	converted, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("ToJPEG: read output: %w", err)
	}
	if size <= 0 {
		return converted, nil
	}
	return ResizeJPEG(converted, size, c.Quality)
}

// ResizeJPEG scales a JPEG to fit inside size x size, keeping the aspect
// ratio. Images that already fit are re-encoded unchanged.
func ResizeJPEG(data []byte, size, quality int) ([]byte, error) {
	src, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ResizeJPEG decode: %w", err)
	}

	dst := Fit(src, size)
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("ResizeJPEG encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit returns src scaled down to fit inside size x size. It never enlarges.
func Fit(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) {
		return src
	}

	nw, nh := size, size
	if w > h {
		nh = max(1, h*size/w)
	} else {
		nw = max(1, w*size/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
