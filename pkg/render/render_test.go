package render_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/vocabscope/pkg/charclass"
	"github.com/soundprediction/vocabscope/pkg/render"
	"github.com/soundprediction/vocabscope/pkg/types"
)

// solidPalette colors every class the same, which makes pixel probing easy.
type solidPalette struct{ c color.RGBA }

func (p solidPalette) Color(string) color.RGBA { return p.c }

var red = solidPalette{c: color.RGBA{R: 0xFF, A: 0xFF}}

func smallOpts() render.Options {
	return render.Options{Width: 100, Height: 100, Margin: 10}
}

func TestRenderEmpty(t *testing.T) {
	img := render.Render(nil, red, smallOpts())
	require.NotNil(t, img)

	b := img.Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 100, b.Dy())

	// Blank canvas: every sampled pixel is the background.
	for _, pt := range []image.Point{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 99, Y: 99}} {
		r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
		assert.Equal(t, uint32(0xFFFF), r)
		assert.Equal(t, uint32(0xFFFF), g)
		assert.Equal(t, uint32(0xFFFF), b)
	}
}

func TestRenderSinglePointCentered(t *testing.T) {
	points := []types.Point{{X: 3.7, Y: -1.2, Token: types.Token{ID: 0, Text: "a"}, Class: "Latin"}}
	img := render.Render(points, red, smallOpts())

	// A lone point has a degenerate bounding box and lands at the center.
	cr, cg, cb, _ := img.At(50, 50).RGBA()
	assert.Equal(t, uint32(0xFFFF), cr)
	assert.Zero(t, cg)
	assert.Zero(t, cb)

	// Corners stay background.
	r, g, b, _ := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Equal(t, uint32(0xFFFF), b)
}

func TestRenderOrientation(t *testing.T) {
	points := []types.Point{
		{X: 0, Y: 0, Token: types.Token{ID: 0, Text: "left"}},
		{X: 10, Y: 0, Token: types.Token{ID: 1, Text: "right"}},
	}
	img := render.Render(points, red, smallOpts())

	left := leftmostMarkerX(t, img)
	right := rightmostMarkerX(t, img)
	require.GreaterOrEqual(t, right, left)

	// Larger data x must draw further right, with the pair spanning the
	// margin-inset drawing area.
	assert.Less(t, left, 20)
	assert.Greater(t, right, 80)
}

func TestRenderYAxisFlipped(t *testing.T) {
	points := []types.Point{
		{X: 0, Y: 0, Token: types.Token{ID: 0}},
		{X: 0, Y: 10, Token: types.Token{ID: 1}},
	}
	img := render.Render(points, red, smallOpts())

	top := topmostMarkerY(t, img)
	bottom := bottommostMarkerY(t, img)
	// Larger data y draws toward the top of the image.
	assert.Less(t, top, 50)
	assert.Greater(t, bottom, 50)
}

func TestRenderClassColors(t *testing.T) {
	cl := charclass.Default()
	points := []types.Point{
		{X: 0, Y: 0, Token: types.Token{ID: 0, Text: "a"}, Class: "Latin"},
		{X: 1, Y: 1, Token: types.Token{ID: 1, Text: "中"}, Class: "CJK"},
	}
	img := render.Render(points, cl, smallOpts())

	latin := cl.Color("Latin")
	cjk := cl.Color("CJK")
	assert.True(t, hasColor(img, latin), "Latin marker color missing from canvas")
	assert.True(t, hasColor(img, cjk), "CJK marker color missing from canvas")
}

func TestRenderDetailedDrawsLabels(t *testing.T) {
	points := []types.Point{
		{X: 0, Y: 0, Token: types.Token{ID: 0, Text: "hello"}, Class: "x"},
		{X: 1, Y: 1, Token: types.Token{ID: 1, Text: "world"}, Class: "x"},
	}
	plain := render.Render(points, red, smallOpts())
	opts := smallOpts()
	opts.Detailed = true
	detailed := render.Render(points, red, opts)

	// The label glyphs add colored pixels beyond the two markers.
	assert.Greater(t, countColored(detailed), countColored(plain))
}

func TestRenderTitle(t *testing.T) {
	points := []types.Point{
		{X: 0, Y: 0, Token: types.Token{ID: 0, Text: "a"}},
		{X: 1, Y: 1, Token: types.Token{ID: 1, Text: "b"}},
	}
	opts := smallOpts()
	opts.Title = "model X"
	img := render.Render(points, red, opts)
	require.NotNil(t, img)

	// Title text appears as dark pixels near the top-left corner.
	found := false
	for y := 0; y < 40 && !found; y++ {
		for x := 0; x < 80 && !found; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r < 0x8000 && g < 0x8000 && b < 0x8000 {
				found = true
			}
		}
	}
	assert.True(t, found, "no title pixels in the top-left corner")
}

func TestSaveJPEG(t *testing.T) {
	img := render.Render([]types.Point{
		{X: 0, Y: 0, Token: types.Token{ID: 0, Text: "a"}},
		{X: 1, Y: 1, Token: types.Token{ID: 1, Text: "b"}},
	}, red, smallOpts())

	path := filepath.Join(t.TempDir(), "nested", "dir", "out.jpg")
	require.NoError(t, render.SaveJPEG(img, path, 80))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestSaveJPEGQualityFallback(t *testing.T) {
	img := render.Render(nil, red, smallOpts())
	path := filepath.Join(t.TempDir(), "out.jpg")
	// Out-of-range quality falls back to the default instead of failing.
	require.NoError(t, render.SaveJPEG(img, path, -3))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestFontStack(t *testing.T) {
	t.Run("nil stack falls back to bitmap face", func(t *testing.T) {
		var s *render.FontStack
		face := s.FaceFor("anything", 12)
		assert.NotNil(t, face)
	})

	t.Run("empty stack falls back to bitmap face", func(t *testing.T) {
		s, err := render.LoadFonts(nil)
		require.NoError(t, err)
		assert.NotNil(t, s.FaceFor("中", 12))
	})

	t.Run("missing font file", func(t *testing.T) {
		_, err := render.LoadFonts([]string{filepath.Join(t.TempDir(), "nope.ttf")})
		assert.Error(t, err)
	})

	t.Run("garbage font data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.ttf")
		require.NoError(t, os.WriteFile(path, []byte("not a font"), 0o644))
		_, err := render.LoadFonts([]string{path})
		assert.Error(t, err)
	})
}

func hasColor(img image.Image, want color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(bl>>8) == want.B {
				return true
			}
		}
	}
	return false
}

func countColored(img image.Image) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0xFFFF || g != 0xFFFF || bl != 0xFFFF {
				n++
			}
		}
	}
	return n
}

func leftmostMarkerX(t *testing.T, img image.Image) int {
	t.Helper()
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if isColored(img, x, y) {
				return x
			}
		}
	}
	t.Fatal("no colored pixels found")
	return 0
}

func rightmostMarkerX(t *testing.T, img image.Image) int {
	t.Helper()
	b := img.Bounds()
	for x := b.Max.X - 1; x >= b.Min.X; x-- {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if isColored(img, x, y) {
				return x
			}
		}
	}
	t.Fatal("no colored pixels found")
	return 0
}

func topmostMarkerY(t *testing.T, img image.Image) int {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isColored(img, x, y) {
				return y
			}
		}
	}
	t.Fatal("no colored pixels found")
	return 0
}

func bottommostMarkerY(t *testing.T, img image.Image) int {
	t.Helper()
	b := img.Bounds()
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isColored(img, x, y) {
				return y
			}
		}
	}
	t.Fatal("no colored pixels found")
	return 0
}

func isColored(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r != 0xFFFF || g != 0xFFFF || b != 0xFFFF
}
