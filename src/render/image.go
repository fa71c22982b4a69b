package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"korzeterm/src/emulator"
	"korzeterm/src/terminal"
)

// Default colors match the original KorzeTerm theme.
var (
	DefaultBackground = color.NRGBA{0x28, 0x28, 0x28, 255}
	DefaultForeground = color.NRGBA{0xEB, 0xDB, 0xB2, 255}
)

// Options controls how a snapshot is painted.
type Options struct {
	// Face is the font face. Nil uses basicfont.Face7x13.
	Face font.Face
	// Foreground and Background are the default colors; zero values
	// use the KorzeTerm theme.
	Foreground color.NRGBA
	Background color.NRGBA
}

// LoadFontFace loads a TrueType or OpenType font face from a file.
func LoadFontFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (o Options) face() font.Face {
	if o.Face != nil {
		return o.Face
	}
	return basicfont.Face7x13
}

func (o Options) colors() (fg, bg color.NRGBA) {
	fg, bg = o.Foreground, o.Background
	if fg == (color.NRGBA{}) {
		fg = DefaultForeground
	}
	if bg == (color.NRGBA{}) {
		bg = DefaultBackground
	}
	return fg, bg
}

// cellMetrics derives the cell box and baseline from font metrics, the
// way a monospace grid expects.
func cellMetrics(face font.Face) (cellW, cellH, baseline int) {
	metrics := face.Metrics()
	cellH = (metrics.Height.Ceil())
	advance, ok := face.GlyphAdvance('M')
	if !ok {
		advance = fixed.I(7)
	}
	cellW = advance.Ceil()
	baseline = metrics.Ascent.Ceil()
	return cellW, cellH, baseline
}

// Image paints a grid snapshot into a new RGBA image, one font cell per
// grid cell, with the cursor drawn as an inverted block when visible.
func Image(snap terminal.Snapshot, opts Options) *image.RGBA {
	face := opts.face()
	defaultFG, defaultBG := opts.colors()
	cellW, cellH, baseline := cellMetrics(face)

	img := image.NewRGBA(image.Rect(0, 0, snap.Cols*cellW, snap.Rows*cellH))
	draw.Draw(img, img.Bounds(), image.NewUniform(defaultBG), image.Point{}, draw.Src)

	for y := 0; y < snap.Rows; y++ {
		for x := 0; x < snap.Cols; x++ {
			cell := snap.Cells[y][x]

			fg := cell.FG.ToNRGBA(defaultFG)
			bg := cell.BG.ToNRGBA(defaultBG)
			underCursor := snap.CursorVisible && x == snap.CursorX && y == snap.CursorY
			if underCursor {
				fg, bg = bg, fg
			}

			rect := image.Rect(x*cellW, y*cellH, (x+1)*cellW, (y+1)*cellH)
			if bg != defaultBG || underCursor {
				draw.Draw(img, rect, image.NewUniform(bg), image.Point{}, draw.Src)
			}

			if cell.Rune != ' ' && cell.Rune != 0 && !cell.IsWideSpacer() {
				d := &font.Drawer{
					Dst:  img,
					Src:  image.NewUniform(fg),
					Face: face,
					Dot:  fixed.P(x*cellW, y*cellH+baseline),
				}
				d.DrawString(string(cell.Rune))
			}

			if cell.Attrs&emulator.AttrUnderline != 0 {
				line := image.Rect(x*cellW, (y+1)*cellH-2, (x+1)*cellW, (y+1)*cellH-1)
				draw.Draw(img, line, image.NewUniform(fg), image.Point{}, draw.Src)
			}
		}
	}

	return img
}

// EncodePNG paints a snapshot and encodes it as PNG.
func EncodePNG(snap terminal.Snapshot, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Image(snap, opts)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
