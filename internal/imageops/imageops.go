// Package imageops decodes, resizes and encodes images for the sticker
// pipeline. Every decoded image is normalized to *image.NRGBA so the
// alpha channel produced by background removal survives to the output.
package imageops

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// StickerMaxSide is the Telegram sticker size limit for the longest side.
	StickerMaxSide = 512
	// StickerQuality is the lossy WebP quality used for stickers.
	StickerQuality = 90

	StickerSuffix   = "_sticker.webp"
	ProcessedSuffix = "_processed.png"
)

// Decode parses data in any registered format (PNG, JPEG, GIF, BMP, TIFF,
// WebP) and returns it as a 4-channel NRGBA buffer anchored at (0,0).
func Decode(data []byte) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return imaging.Clone(img), nil
}

// FitWithin scales (w, h) so the longest side equals maxSide while keeping
// the aspect ratio. The short side is rounded half to even and never
// drops below 1.
func FitWithin(w, h, maxSide int) (int, int) {
	if w <= 0 || h <= 0 || maxSide <= 0 {
		return 0, 0
	}
	if w >= h {
		return maxSide, atLeastOne(math.RoundToEven(float64(h) / float64(w) * float64(maxSide)))
	}
	return atLeastOne(math.RoundToEven(float64(w) / float64(h) * float64(maxSide))), maxSide
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// ResizeForSticker resizes img so its longest side is maxSide, using a
// Lanczos filter for both down- and upscaling.
func ResizeForSticker(img image.Image, maxSide int) *image.NRGBA {
	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxSide)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// EncodeWebP encodes img as lossy WebP at the given quality (0-100).
func EncodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Renderer turns a decoded image into output bytes for one mode.
type Renderer struct {
	MaxSide int
	Quality int
}

// NewRenderer returns a Renderer with the sticker defaults.
func NewRenderer() *Renderer {
	return &Renderer{MaxSide: StickerMaxSide, Quality: StickerQuality}
}

// Render encodes img either as a sticker or as a processed PNG and
// returns the bytes together with the file name suffix to use.
func (r *Renderer) Render(img image.Image, sticker bool) ([]byte, string, error) {
	if !sticker {
		data, err := EncodePNG(img)
		return data, ProcessedSuffix, err
	}
	data, err := EncodeWebP(ResizeForSticker(img, r.MaxSide), r.Quality)
	return data, StickerSuffix, err
}
