package emulator

import (
	"image/color"
	"testing"
)

func TestDefaultCell(t *testing.T) {
	c := DefaultCell()
	if c.Rune != ' ' {
		t.Errorf("Rune = %q, want space", c.Rune)
	}
	if c.FG != DefaultFG || c.BG != DefaultBG {
		t.Error("default cell should use default colors")
	}
	if c.Attrs != 0 {
		t.Errorf("Attrs = %v, want 0", c.Attrs)
	}
}

func TestCellIsValueType(t *testing.T) {
	a := Cell{Rune: 'x', FG: IndexedColor(3), Attrs: AttrBold}
	b := a
	b.Rune = 'y'
	if a.Rune != 'x' {
		t.Error("copying a cell should not alias the original")
	}
}

func TestPaletteStandardColors(t *testing.T) {
	if got := Palette256(1); got != (color.NRGBA{205, 0, 0, 255}) {
		t.Errorf("palette[1] = %v, want red", got)
	}
	if got := Palette256(15); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("palette[15] = %v, want bright white", got)
	}
}

func TestPaletteColorCube(t *testing.T) {
	// Index 16 is the cube origin (0,0,0); 231 is the far corner.
	if got := Palette256(16); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("palette[16] = %v, want black", got)
	}
	if got := Palette256(231); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("palette[231] = %v, want white", got)
	}
	// Channel values are 0 or 55+40n: index 17 = (0,0,1) -> blue 95.
	if got := Palette256(17); got != (color.NRGBA{0, 0, 95, 255}) {
		t.Errorf("palette[17] = %v, want {0,0,95}", got)
	}
}

func TestPaletteGrayscale(t *testing.T) {
	if got := Palette256(232); got != (color.NRGBA{8, 8, 8, 255}) {
		t.Errorf("palette[232] = %v, want {8,8,8}", got)
	}
	if got := Palette256(255); got != (color.NRGBA{238, 238, 238, 255}) {
		t.Errorf("palette[255] = %v, want {238,238,238}", got)
	}
}

func TestColorToNRGBA(t *testing.T) {
	def := color.NRGBA{1, 2, 3, 255}

	if got := DefaultFG.ToNRGBA(def); got != def {
		t.Errorf("default color = %v, want %v", got, def)
	}
	if got := IndexedColor(1).ToNRGBA(def); got != (color.NRGBA{205, 0, 0, 255}) {
		t.Errorf("indexed 1 = %v, want red", got)
	}
	if got := RGBColor(10, 20, 30).ToNRGBA(def); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("rgb = %v, want {10,20,30}", got)
	}
}
