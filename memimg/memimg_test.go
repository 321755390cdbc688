package memimg

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoshinonyaruko/snaky/structs"
)

func writePNG(t *testing.T, path string, size int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func TestLoadScalesSprites(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "head.png"), 64)
	writePNG(t, filepath.Join(dir, "notes.png"), 8)

	skins := NewSkins(16)
	if err := skins.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	img, ok := skins.Get(structs.CellHead)
	if !ok {
		t.Fatal("head sprite not loaded")
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("sprite is %dx%d, want 16x16", b.Dx(), b.Dy())
	}
	if _, ok := skins.Get(structs.CellFood); ok {
		t.Error("food sprite loaded from nowhere")
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	if err := NewSkins(16).Load(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	skins := NewSkins(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- skins.Watch(ctx, dir) }()
	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	writePNG(t, filepath.Join(dir, "food.png"), 32)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, ok := skins.Get(structs.CellFood); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("food sprite was not picked up")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Watch: %v", err)
	}
}
