package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(2, 2, color.RGBA{G: 180, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFileUploader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	u := fileUploader{dir: dir}

	url, err := u.UploadVariation(context.Background(), pngBytes(t), "image/png", 2)
	if err != nil {
		t.Fatalf("UploadVariation() error = %v", err)
	}
	if !strings.HasPrefix(url, "file://") || !strings.HasSuffix(url, "variation-2.png") {
		t.Errorf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "variation-2.png")); err != nil {
		t.Errorf("variation file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "variation-2-thumb.webp")); err != nil {
		t.Errorf("thumbnail missing: %v", err)
	}
}

func TestFileUploaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (fileUploader{dir: t.TempDir()}).UploadVariation(ctx, pngBytes(t), "image/png", 0); err == nil {
		t.Error("expected error for canceled context")
	}
}

type recordingBar struct {
	values []int
	descs  []string
}

func (b *recordingBar) Set(n int) error {
	b.values = append(b.values, n)
	return nil
}

func (b *recordingBar) Describe(d string) { b.descs = append(b.descs, d) }

func TestRenderProgressMonotonic(t *testing.T) {
	ch := make(chan portrait.PipelineProgress, 4)
	ch <- portrait.PipelineProgress{Stage: portrait.StageAnalyzing, StageProgress: 5}
	ch <- portrait.PipelineProgress{Stage: portrait.StageGenerating, StageProgress: 40}
	ch <- portrait.PipelineProgress{Stage: portrait.StageValidating, StageProgress: 35}
	ch <- portrait.PipelineProgress{Stage: portrait.StageComplete, StageProgress: 100}
	close(ch)

	bar := &recordingBar{}
	renderProgress(bar, ch)

	want := []int{5, 40, 40, 100}
	if len(bar.values) != len(want) {
		t.Fatalf("values = %v, want %v", bar.values, want)
	}
	for i := range want {
		if bar.values[i] != want[i] {
			t.Errorf("values = %v, want %v", bar.values, want)
			break
		}
	}
	if !strings.Contains(bar.descs[3], "complete") {
		t.Errorf("last description = %q", bar.descs[3])
	}
}

func TestPrintTemplates(t *testing.T) {
	var buf bytes.Buffer
	if err := printTemplates(&buf, portrait.DefaultCatalogue()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"ISSUE", "eye-contact-camera", "lighting-golden-hour"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if got, want := len(lines)-1, len(portrait.DefaultCatalogue().All()); got != want {
		t.Errorf("listed %d templates, want %d", got, want)
	}
}
