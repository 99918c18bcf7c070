package imageops

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFitWithin_Examples(t *testing.T) {
	tests := []struct {
		w, h, m      int
		wantW, wantH int
	}{
		{1000, 500, 512, 512, 256},
		{500, 1000, 512, 256, 512},
		{300, 300, 512, 512, 512},
		{1920, 1080, 512, 512, 288},
		{100, 300, 512, 171, 512},
		{10000, 1, 512, 512, 1},
		{64, 48, 512, 512, 384},
		{1024, 513, 512, 512, 256}, // 256.5 rounds to even
		{1024, 515, 512, 512, 258}, // 257.5 rounds to even
		{513, 1024, 512, 256, 512},
		{1024, 514, 512, 512, 257},
	}
	for _, tt := range tests {
		gotW, gotH := FitWithin(tt.w, tt.h, tt.m)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("FitWithin(%d,%d,%d) = (%d,%d), want (%d,%d)",
				tt.w, tt.h, tt.m, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestFitWithin_LongestSideAndAspect(t *testing.T) {
	const m = 512
	for w := 1; w <= 2000; w += 37 {
		for h := 1; h <= 2000; h += 41 {
			gw, gh := FitWithin(w, h, m)
			if max(gw, gh) != m {
				t.Fatalf("FitWithin(%d,%d) = (%d,%d): longest side != %d", w, h, gw, gh, m)
			}
			// The short side must be within one pixel of the exact ratio.
			var exact float64
			var short int
			if w >= h {
				exact, short = float64(h)/float64(w)*m, gh
			} else {
				exact, short = float64(w)/float64(h)*m, gw
			}
			if math.Abs(exact-float64(short)) > 1 {
				t.Fatalf("FitWithin(%d,%d) short side %d, exact %.2f", w, h, short, exact)
			}
		}
	}
}

func TestFitWithin_Invalid(t *testing.T) {
	if w, h := FitWithin(0, 10, 512); w != 0 || h != 0 {
		t.Errorf("got (%d,%d), want (0,0)", w, h)
	}
}

func TestDecode_NormalizesToNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 25, 15))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRender_Processed(t *testing.T) {
	src := solid(40, 30, color.NRGBA{R: 200, A: 128})
	data, suffix, err := NewRenderer().Render(src, false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if suffix != "_processed.png" {
		t.Errorf("suffix = %q", suffix)
	}
	out, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 30 {
		t.Errorf("bounds = %v, want original size", out.Bounds())
	}
	_, _, _, a := out.At(10, 10).RGBA()
	if a>>8 != 128 {
		t.Errorf("alpha = %d, want 128", a>>8)
	}
}

func TestRender_Sticker(t *testing.T) {
	src := solid(1000, 500, color.NRGBA{G: 255, A: 255})
	data, suffix, err := NewRenderer().Render(src, true)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if suffix != "_sticker.webp" {
		t.Errorf("suffix = %q", suffix)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if format != "webp" {
		t.Errorf("format = %q", format)
	}
	if cfg.Width != 512 || cfg.Height != 256 {
		t.Errorf("size = %dx%d, want 512x256", cfg.Width, cfg.Height)
	}
}

func TestResizeForSticker_Upscales(t *testing.T) {
	out := ResizeForSticker(solid(50, 100, color.NRGBA{A: 255}), 512)
	if out.Bounds().Dx() != 256 || out.Bounds().Dy() != 512 {
		t.Errorf("bounds = %v, want 256x512", out.Bounds())
	}
}

func TestDecode_PNGRoundTripKeepsAlpha(t *testing.T) {
	img, err := Decode(pngBytes(t, solid(4, 4, color.NRGBA{B: 255, A: 0})))
	if err != nil {
		t.Fatal(err)
	}
	if img.NRGBAAt(1, 1).A != 0 {
		t.Errorf("alpha = %d, want 0", img.NRGBAAt(1, 1).A)
	}
}
