package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnailScalesDown(t *testing.T) {
	data := encodePNG(t, 1600, 900)

	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width != ThumbMaxWidth {
		t.Errorf("width: got %d, want %d", cfg.Width, ThumbMaxWidth)
	}
	// 1600x900 scaled to 400 wide keeps the 16:9 ratio.
	if cfg.Height != 225 {
		t.Errorf("height: got %d, want 225", cfg.Height)
	}
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, 200, 100)

	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 200x100", cfg.Width, cfg.Height)
	}
}

func TestThumbnailClampsExtremeAspectRatio(t *testing.T) {
	data := encodePNG(t, 10000, 1)

	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width != ThumbMaxWidth {
		t.Errorf("width: got %d, want %d", cfg.Width, ThumbMaxWidth)
	}
	if cfg.Height < 1 {
		t.Errorf("height: got %d, want at least 1", cfg.Height)
	}
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	if _, err := Thumbnail([]byte("not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}
