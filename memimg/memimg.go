// Package memimg keeps the board sprites in memory and reloads them when
// the files in the skins folder change.
package memimg

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/hoshinonyaruko/snaky/structs"
)

// Skins maps cell kinds to sprites scaled to one board block. The file
// name without extension selects the kind: head.png, snake.png, food.png.
type Skins struct {
	blockSize int

	mu      sync.RWMutex
	sprites map[structs.CellKind]image.Image
}

// NewSkins returns an empty sprite cache for blocks of blockSize pixels.
func NewSkins(blockSize int) *Skins {
	return &Skins{
		blockSize: blockSize,
		sprites:   make(map[structs.CellKind]image.Image),
	}
}

func kindForFile(path string) (structs.CellKind, bool) {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	switch structs.CellKind(name) {
	case structs.CellHead, structs.CellBody, structs.CellFood:
		return structs.CellKind(name), true
	}
	return "", false
}

// Load 载入目录下所有皮肤图片，目录不存在时不报错
func (s *Skins) Load(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if _, ok := kindForFile(path); !ok {
			return nil
		}
		return s.loadFile(path)
	})
}

func (s *Skins) loadFile(path string) error {
	kind, ok := kindForFile(path)
	if !ok {
		return nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("load skin %s: %w", path, err)
	}
	// 缩放到一个格子的大小
	scaled := imaging.Fill(img, s.blockSize, s.blockSize, imaging.Center, imaging.Lanczos)

	s.mu.Lock()
	s.sprites[kind] = scaled
	s.mu.Unlock()
	return nil
}

func (s *Skins) remove(path string) {
	kind, ok := kindForFile(path)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.sprites, kind)
	s.mu.Unlock()
}

// Get returns the sprite for kind if one is loaded.
func (s *Skins) Get(kind structs.CellKind) (image.Image, bool) {
	s.mu.RLock()
	img, exists := s.sprites[kind]
	s.mu.RUnlock()
	return img, exists
}

// BlockSize is the sprite edge length in pixels.
func (s *Skins) BlockSize() int {
	return s.blockSize
}

// Watch reloads sprites on change until ctx is done.
func (s *Skins) Watch(ctx context.Context, directory string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(directory); err != nil {
		return fmt.Errorf("watch %s: %w", directory, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create:
				if err := s.loadFile(event.Name); err != nil {
					log.Printf("skin reload: %v", err)
				}
			case event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename:
				s.remove(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("skin watcher error:", err)
		}
	}
}
