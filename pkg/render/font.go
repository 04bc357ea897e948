package render

import (
	"fmt"
	"os"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontStack is an ordered list of fonts used with per-label fallback.
// Vocabularies mix scripts, and no single font covers them all; for each
// label the stack picks the first font whose character map actually covers
// the label's first meaningful rune, so CJK or Hangul tokens render as
// glyphs rather than blank boxes as long as a capable font is configured.
//
// The zero/nil stack is valid and always answers with a built-in bitmap
// face (ASCII coverage only).
type FontStack struct {
	fonts []*sfnt.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	font int
	size float64
}

// LoadFonts parses the given TTF/OTF files in priority order.
func LoadFonts(paths []string) (*FontStack, error) {
	s := &FontStack{faces: make(map[faceKey]font.Face)}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		s.fonts = append(s.fonts, f)
	}
	return s, nil
}

// FaceFor returns a face able to render text at the given size, falling
// back through the stack by glyph coverage. Faces are cached per font and
// size; the renderer is single-threaded so no locking is needed.
func (s *FontStack) FaceFor(text string, size float64) font.Face {
	if s == nil || len(s.fonts) == 0 {
		return basicfont.Face7x13
	}

	r := firstMeaningfulRune(text)
	idx := -1
	var buf sfnt.Buffer
	for i, f := range s.fonts {
		gi, err := f.GlyphIndex(&buf, r)
		if err == nil && gi != 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		// No configured font covers the rune; the first font's notdef glyph
		// is still better than no label at all.
		idx = 0
	}

	key := faceKey{font: idx, size: size}
	if face, ok := s.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(s.fonts[idx], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	s.faces[key] = face
	return face
}

// firstMeaningfulRune returns the first non-space rune, or 'a' for
// whitespace-only text so lookups always have something to probe.
func firstMeaningfulRune(text string) rune {
	for _, r := range text {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 'a'
}
