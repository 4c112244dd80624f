package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/KenKaminsky/voice-dictation/app"
)

var (
	iconIdle      []byte
	iconIdleHi    []byte
	iconRecHi     []byte
	iconProcessHi []byte
)

func init() {
	transparent := color.RGBA{A: 0}
	red := color.RGBA{R: 255, G: 59, B: 48, A: 255}
	amber := color.RGBA{R: 255, G: 179, B: 0, A: 255}
	dotR := 44.0 / 6.5
	iconIdle = renderIcon(22, &transparent, 22.0/8)
	iconIdleHi = renderIcon(44, &transparent, 44.0/8)
	iconRecHi = renderIcon(44, &red, dotR)
	iconProcessHi = renderIcon(44, &amber, dotR)
}

// iconFor maps a menu-bar title to the bitmap shown where titles are not
// supported. ok is false for the idle icon, which is drawn as a template.
func iconFor(title string) ([]byte, bool) {
	switch title {
	case app.IconRecording:
		return iconRecHi, true
	case app.IconProcessing:
		return iconProcessHi, true
	}
	return nil, false
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// renderIcon draws a black ring with a colored dot in the middle.
func renderIcon(size int, dot *color.RGBA, dotR float64) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cx, cy := float64(size)/2, float64(size)/2
	r := float64(size)/2 - 1
	for y := range size {
		for x := range size {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			switch {
			case d <= dotR:
				img.Set(x, y, dot)
			case d <= r:
				img.Set(x, y, color.Black)
			}
		}
	}
	return encodePNG(img)
}
