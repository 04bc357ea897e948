// Package render draws projected vocabulary points onto a raster canvas and
// serializes the result as a JPEG.
//
// The layout maps data coordinates linearly into pixel space, preserving the
// aspect ratio of the projection (relative distances are not distorted) and
// leaving a fixed margin. Markers are filled circles colored by character
// class; the detailed mode adds the token's surface text next to each
// marker. Labels are drawn in point order with no collision avoidance, so in
// dense regions later labels overlap earlier ones (last-wins; documented
// behavior, not a bug).
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/soundprediction/vocabscope/pkg/types"
)

// Palette resolves a character-class name to its draw color.
// *charclass.Classifier satisfies this.
type Palette interface {
	Color(class string) color.RGBA
}

// Options configures a canvas.
type Options struct {
	Width  int
	Height int

	// Margin is the pixel border kept free of markers on every side.
	Margin int

	// Detailed draws token surface text next to each marker.
	Detailed bool

	Background color.Color

	// Fonts supplies faces for labels and the title. Without it labels fall
	// back to a built-in bitmap face that cannot cover non-Latin scripts.
	Fonts *FontStack

	// Title is drawn in the top-left corner when non-empty.
	Title string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 8000
	}
	if o.Height <= 0 {
		o.Height = 8000
	}
	if o.Margin <= 0 {
		o.Margin = 200
	}
	if o.Background == nil {
		o.Background = color.White
	}
	return o
}

// Render draws the points onto a new canvas. An empty point list yields a
// blank canvas and never fails; callers that want to skip writing blank
// images should check the point count beforehand.
func Render(points []types.Point, palette Palette, opts Options) image.Image {
	opts = opts.withDefaults()

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(opts.Background)
	dc.Clear()

	if len(points) == 0 {
		return dc.Image()
	}

	layout := newLayout(points, opts)
	radius := markerRadius(opts.Width, opts.Height)

	for _, p := range points {
		px, py := layout.toPixel(p.X, p.Y)
		dc.SetColor(palette.Color(p.Class))
		dc.DrawCircle(px, py, radius)
		dc.Fill()
	}

	if opts.Detailed {
		drawLabels(dc, points, layout, palette, opts, radius)
	}
	if opts.Title != "" {
		drawTitle(dc, opts)
	}

	return dc.Image()
}

// layout maps data coordinates into pixel coordinates.
type layout struct {
	minX, minY float64
	scale      float64
	offX, offY float64
	height     float64
}

func newLayout(points []types.Point, opts Options) layout {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	dx := maxX - minX
	dy := maxY - minY
	availW := float64(opts.Width - 2*opts.Margin)
	availH := float64(opts.Height - 2*opts.Margin)

	// One scale for both axes keeps relative distances undistorted. A
	// degenerate bounding box (single point, vertical/horizontal line)
	// gets scale from the non-degenerate axis, or lands at the center.
	var scale float64
	switch {
	case dx > 0 && dy > 0:
		scale = availW / dx
		if s := availH / dy; s < scale {
			scale = s
		}
	case dx > 0:
		scale = availW / dx
	case dy > 0:
		scale = availH / dy
	default:
		scale = 0
	}

	return layout{
		minX:   minX,
		minY:   minY,
		scale:  scale,
		offX:   (float64(opts.Width) - dx*scale) / 2,
		offY:   (float64(opts.Height) - dy*scale) / 2,
		height: float64(opts.Height),
	}
}

// toPixel converts a data coordinate to pixel space. The y axis is flipped
// so larger data y draws toward the top of the image.
func (l layout) toPixel(x, y float64) (float64, float64) {
	px := l.offX + (x-l.minX)*l.scale
	py := l.height - (l.offY + (y-l.minY)*l.scale)
	return px, py
}

func markerRadius(w, h int) float64 {
	min := w
	if h < min {
		min = h
	}
	r := float64(min) / 2000
	if r < 2 {
		r = 2
	}
	return r
}

func drawLabels(dc *gg.Context, points []types.Point, l layout, palette Palette, opts Options, radius float64) {
	size := labelSize(opts.Width, opts.Height)
	for _, p := range points {
		text := p.Token.Text
		if text == "" {
			continue
		}
		px, py := l.toPixel(p.X, p.Y)
		dc.SetFontFace(opts.Fonts.FaceFor(text, size))
		dc.SetColor(palette.Color(p.Class))
		dc.DrawString(text, px+radius+2, py+radius)
	}
}

func drawTitle(dc *gg.Context, opts Options) {
	size := 3 * labelSize(opts.Width, opts.Height)
	dc.SetFontFace(opts.Fonts.FaceFor(opts.Title, size))
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawString(opts.Title, float64(opts.Margin)/2, size+float64(opts.Margin)/4)
}

func labelSize(w, h int) float64 {
	min := w
	if h < min {
		min = h
	}
	size := float64(min) / 500
	if size < 10 {
		size = 10
	}
	return size
}

// SaveJPEG writes the image to path, creating parent directories as needed.
func SaveJPEG(img image.Image, path string, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
