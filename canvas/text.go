package canvas

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce   sync.Once
	fontSource *opentype.Font
	fontErr    error
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = opentype.Parse(goregular.TTF)
	})
	return fontSource, fontErr
}

// Text renders a string with its baseline at (x,y). A font failure leaves
// the surface untouched.
func (s *Surface) Text(x, y float64, text string, col color.RGBA, fontSize float64) error {
	if text == "" {
		return nil
	}
	if fontSize <= 0 {
		fontSize = 16
	}

	fnt, err := loadFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	d.DrawString(text)
	return nil
}
