package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 200, 100, 50},
		{1600, 800, 400, 400, 200},
		{800, 1600, 400, 200, 400},
		{1000, 1000, 400, 400, 400},
		{4000, 1, 400, 400, 1},
	}
	for _, tt := range tests {
		gotW, gotH := FitWithin(tt.w, tt.h, tt.max)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("FitWithin(%d, %d, %d) = %d x %d, want %d x %d", tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestDetectMIME(t *testing.T) {
	if got := DetectMIME(testPNG(t, 4, 4)); got != "image/png" {
		t.Errorf("DetectMIME(png) = %q", got)
	}
	if got := DetectMIME([]byte("hello")); SupportedMIMETypes[got] {
		t.Errorf("DetectMIME(text) = %q, should not be a supported image type", got)
	}
}

func TestDownscale(t *testing.T) {
	out, mime, err := Downscale(testPNG(t, 200, 100), 50)
	if err != nil {
		t.Fatalf("Downscale() error = %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q", mime)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("size = %dx%d, want 50x25", b.Dx(), b.Dy())
	}
}

func TestDownscale_InvalidInput(t *testing.T) {
	if _, _, err := Downscale([]byte("not an image"), 50); err == nil {
		t.Error("Downscale() expected error")
	}
}

func TestCameraContext_NoEXIF(t *testing.T) {
	if got := CameraContext(testPNG(t, 4, 4)); got != "" {
		t.Errorf("CameraContext() = %q, want empty", got)
	}
}

func TestExtension(t *testing.T) {
	for mime, want := range map[string]string{"image/png": ".png", "image/webp": ".webp", "image/jpeg": ".jpg", "": ".jpg"} {
		if got := Extension(mime); got != want {
			t.Errorf("Extension(%q) = %q, want %q", mime, got, want)
		}
	}
}
