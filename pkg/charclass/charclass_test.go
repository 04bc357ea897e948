package charclass_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/vocabscope/pkg/charclass"
)

func TestClassifyDefault(t *testing.T) {
	cl := charclass.Default()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"latin token", "hello", "Latin"},
		{"cjk ideograph", "中", "CJK"},
		{"digit", "7", "digit"},
		{"hiragana", "ひらがな", "Kana"},
		{"katakana", "カタカナ", "Kana"},
		{"hangul", "한글", "Hangul"},
		{"cyrillic", "привет", "Cyrillic"},
		{"greek", "λόγος", "Greek"},
		{"arabic", "سلام", "Arabic"},
		{"hebrew", "שלום", "Hebrew"},
		{"punctuation", "!!", "symbol"},
		{"empty string", "", charclass.OtherClass},
		{"whitespace only", "   ", charclass.OtherClass},
		{"leading space stripped", "  中  ", "CJK"},
		// Mixed scripts resolve to the highest-priority matching class,
		// regardless of rune position in the token.
		{"digit beats latin", "abc1", "digit"},
		{"cjk beats latin", "foo中", "CJK"},
		{"digit beats cjk", "中2", "digit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cl.Classify(tt.text))
		})
	}
}

func TestClassifyIsStable(t *testing.T) {
	cl := charclass.Default()
	for i := 0; i < 3; i++ {
		assert.Equal(t, "CJK", cl.Classify("漢字"))
	}
}

func TestNew(t *testing.T) {
	t.Run("chars membership", func(t *testing.T) {
		cl, err := charclass.New([]charclass.Class{
			{Name: "vowel", Color: "#FF0000", Chars: "aeiou"},
		})
		require.NoError(t, err)
		assert.Equal(t, "vowel", cl.Classify("e"))
		assert.Equal(t, charclass.OtherClass, cl.Classify("x"))
	})

	t.Run("first match wins", func(t *testing.T) {
		cl, err := charclass.New([]charclass.Class{
			{Name: "first", Color: "#FF0000", Chars: "a"},
			{Name: "second", Color: "#00FF00", Chars: "ab"},
		})
		require.NoError(t, err)
		assert.Equal(t, "first", cl.Classify("a"))
		assert.Equal(t, "second", cl.Classify("b"))
	})

	t.Run("other overrides catch-all color", func(t *testing.T) {
		cl, err := charclass.New([]charclass.Class{
			{Name: "Latin", Color: "#112233", Ranges: []charclass.Range{{Lo: 'a', Hi: 'z'}}},
			{Name: charclass.OtherClass, Color: "#445566"},
		})
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{R: 0x44, G: 0x55, B: 0x66, A: 0xFF}, cl.Color(charclass.OtherClass))
	})

	t.Run("missing name rejected", func(t *testing.T) {
		_, err := charclass.New([]charclass.Class{{Color: "#FF0000"}})
		assert.Error(t, err)
	})

	t.Run("bad color rejected", func(t *testing.T) {
		_, err := charclass.New([]charclass.Class{{Name: "x", Color: "red"}})
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "charsets.yaml")
		data := `classes:
  - name: digit
    color: "#E53935"
    ranges:
      - lo: 48
        hi: 57
  - name: Latin
    color: "#1E88E5"
    ranges:
      - lo: 65
        hi: 90
      - lo: 97
        hi: 122
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cl, err := charclass.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "digit", cl.Classify("3"))
		assert.Equal(t, "Latin", cl.Classify("Q"))
		assert.Equal(t, charclass.OtherClass, cl.Classify("中"))
		assert.Equal(t, []string{"digit", "Latin", charclass.OtherClass}, cl.Names())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := charclass.Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty class list", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("classes: []\n"), 0o644))
		_, err := charclass.Load(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("classes: {nope"), 0o644))
		_, err := charclass.Load(path)
		assert.Error(t, err)
	})
}

func TestColor(t *testing.T) {
	cl := charclass.Default()

	// Every declared class resolves to an opaque color.
	for _, name := range cl.Names() {
		c := cl.Color(name)
		assert.Equal(t, uint8(0xFF), c.A, "class %s", name)
	}

	// Unknown names fall back to the catch-all color.
	assert.Equal(t, cl.Color(charclass.OtherClass), cl.Color("no-such-class"))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#FF8000", want: color.RGBA{R: 0xFF, G: 0x80, B: 0x00, A: 0xFF}},
		{in: "ff8000", want: color.RGBA{R: 0xFF, G: 0x80, B: 0x00, A: 0xFF}},
		{in: " #000000 ", want: color.RGBA{A: 0xFF}},
		{in: "#FFF", wantErr: true},
		{in: "", wantErr: true},
		{in: "#GGGGGG", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := charclass.ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
