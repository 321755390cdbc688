// 棋盘绘图
package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/snaky/memimg"
	"github.com/hoshinonyaruko/snaky/structs"
)

// HUDHeight is the strip above the board holding score and speed.
const HUDHeight = 24

// 全局缓存，按blockSize和棋盘大小缓存背景网格
var gridCache sync.Map

type cellColor struct{ r, g, b float64 }

var palette = map[structs.CellKind]cellColor{
	structs.CellHead: {0.13, 0.55, 0.13},
	structs.CellBody: {0.42, 0.76, 0.35},
	structs.CellFood: {0.86, 0.2, 0.2},
}

// Board draws snap with blocks of blockSize pixels. Sprites from skins are
// used where loaded; skins may be nil.
func Board(snap structs.Snapshot, blockSize int, skins *memimg.Skins) image.Image {
	boardPx := snap.BoardSize * blockSize

	dc := gg.NewContext(boardPx, boardPx+HUDHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	board := gg.NewContext(boardPx, boardPx)
	board.DrawImage(background(snap.BoardSize, blockSize), 0, 0)

	for y, row := range snap.Cells {
		for x, kind := range row {
			if kind == structs.CellEmpty {
				continue
			}
			drawCell(board, kind, x, y, blockSize, skins)
		}
	}

	var boardImg image.Image = board.Image()
	if snap.State.Status.Terminal() {
		// 游戏结束时模糊棋盘
		boardImg = imaging.Blur(boardImg, 3)
	}
	dc.DrawImage(boardImg, 0, HUDHeight)

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(fmt.Sprintf("Score %d", snap.State.Score), 6, HUDHeight/2, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f steps/sec", snap.StepsPerSecond), float64(boardPx)-6, HUDHeight/2, 1, 0.5)

	if snap.State.Status.Terminal() {
		banner := "GAME OVER"
		if snap.State.Status == structs.StatusWon {
			banner = "BOARD CLEARED"
		}
		cx := float64(boardPx) / 2
		cy := float64(HUDHeight) + float64(boardPx)/2
		dc.SetRGBA(0, 0, 0, 0.6)
		dc.DrawRectangle(0, cy-20, float64(boardPx), 40)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(banner, cx, cy-6, 0.5, 0.5)
		dc.DrawStringAnchored("press Enter to restart", cx, cy+8, 0.5, 0.5)
	}

	return dc.Image()
}

func drawCell(dc *gg.Context, kind structs.CellKind, x, y, blockSize int, skins *memimg.Skins) {
	if skins != nil && skins.BlockSize() == blockSize {
		if img, found := skins.Get(kind); found {
			dc.DrawImage(img, x*blockSize, y*blockSize)
			return
		}
	}
	c := palette[kind]
	dc.SetRGB(c.r, c.g, c.b)
	if kind == structs.CellFood {
		r := float64(blockSize) / 2
		dc.DrawCircle(float64(x*blockSize)+r, float64(y*blockSize)+r, r*0.8)
	} else {
		dc.DrawRectangle(float64(x*blockSize)+1, float64(y*blockSize)+1, float64(blockSize)-2, float64(blockSize)-2)
	}
	dc.Fill()
}

func background(boardSize, blockSize int) image.Image {
	cacheKey := fmt.Sprintf("%d_%d", boardSize, blockSize)
	if cached, ok := gridCache.Load(cacheKey); ok {
		return cached.(image.Image)
	}

	px := boardSize * blockSize
	dc := gg.NewContext(px, px)
	dc.SetRGB(0.97, 0.97, 0.95)
	dc.Clear()
	renderGrid(dc, px, px, blockSize)

	img := dc.Image()
	gridCache.Store(cacheKey, img)
	return img
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetRGB(0.9, 0.9, 0.9)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

// MaxScale bounds how far Scale enlarges an image.
const MaxScale = 4

// Scale resizes img to width pixels, keeping the aspect ratio. width is
// capped at MaxScale times the original width.
func Scale(img image.Image, width int) image.Image {
	if limit := MaxScale * img.Bounds().Dx(); width > limit {
		width = limit
	}
	if width <= 0 || width == img.Bounds().Dx() {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// SavePNG writes img to dir/name.png and returns the file path.
func SavePNG(img image.Image, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	fileName := filepath.Join(dir, name+".png")
	if err := gg.SavePNG(fileName, img); err != nil {
		return "", fmt.Errorf("save %s: %w", fileName, err)
	}
	return fileName, nil
}
