// Package charclass assigns vocabulary tokens to named character classes.
//
// A class is a display bucket ("CJK", "Latin", "digit", ...) defined by a
// set of Unicode code points: literal characters, code-point ranges, or
// both. Classes form an ordered list; a token belongs to the first class in
// that order whose set contains any rune of the token's surface text
// (first-match-wins, so earlier classes take priority for mixed-script
// tokens). Tokens matching no class fall into the catch-all "other" class.
//
// Definitions are compiled once into a Classifier and reused for every
// token; Classify is pure and never fails.
package charclass

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// OtherClass is the catch-all class name for tokens matching no definition.
const OtherClass = "other"

// Range is an inclusive Unicode code-point interval.
type Range struct {
	Lo rune `yaml:"lo"`
	Hi rune `yaml:"hi"`
}

// Class defines one named character class.
type Class struct {
	Name   string  `yaml:"name"`
	Color  string  `yaml:"color"`
	Chars  string  `yaml:"chars,omitempty"`
	Ranges []Range `yaml:"ranges,omitempty"`
}

// classFile is the on-disk YAML layout.
type classFile struct {
	Classes []Class `yaml:"classes"`
}

// compiledClass is a Class with its membership test and color resolved.
type compiledClass struct {
	name   string
	color  color.RGBA
	chars  map[rune]struct{}
	ranges []Range
}

func (c *compiledClass) contains(r rune) bool {
	if _, ok := c.chars[r]; ok {
		return true
	}
	// ranges are sorted by Lo at compile time
	i := sort.Search(len(c.ranges), func(i int) bool { return c.ranges[i].Hi >= r })
	return i < len(c.ranges) && c.ranges[i].Lo <= r
}

// Classifier maps token surface text to a class name. It is read-only after
// construction and safe for concurrent use.
type Classifier struct {
	classes    []compiledClass
	otherColor color.RGBA
}

// New compiles an ordered class list into a Classifier.
func New(classes []Class) (*Classifier, error) {
	cl := &Classifier{otherColor: color.RGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xFF}}
	for _, c := range classes {
		if c.Name == "" {
			return nil, fmt.Errorf("character class without a name")
		}
		col, err := ParseColor(c.Color)
		if err != nil {
			return nil, fmt.Errorf("class %q: %w", c.Name, err)
		}
		if c.Name == OtherClass {
			// "other" only contributes its color; it matches everything anyway.
			cl.otherColor = col
			continue
		}
		cc := compiledClass{name: c.Name, color: col, ranges: append([]Range(nil), c.Ranges...)}
		if c.Chars != "" {
			cc.chars = make(map[rune]struct{}, len(c.Chars))
			for _, r := range c.Chars {
				cc.chars[r] = struct{}{}
			}
		}
		sort.Slice(cc.ranges, func(i, j int) bool { return cc.ranges[i].Lo < cc.ranges[j].Lo })
		cl.classes = append(cl.classes, cc)
	}
	return cl, nil
}

// Load reads class definitions from a YAML file.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read charsets file: %w", err)
	}
	var f classFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse charsets file: %w", err)
	}
	if len(f.Classes) == 0 {
		return nil, fmt.Errorf("charsets file %s defines no classes", path)
	}
	return New(f.Classes)
}

// Classify returns the class name for a token's surface text. It always
// returns a name from the configured class set, defaulting to OtherClass.
func (cl *Classifier) Classify(text string) string {
	text = strings.TrimSpace(text)
	for i := range cl.classes {
		c := &cl.classes[i]
		for _, r := range text {
			if c.contains(r) {
				return c.name
			}
		}
	}
	return OtherClass
}

// Color returns the draw color for a class name.
func (cl *Classifier) Color(name string) color.RGBA {
	for i := range cl.classes {
		if cl.classes[i].name == name {
			return cl.classes[i].color
		}
	}
	return cl.otherColor
}

// Names returns the class names in priority order, ending with OtherClass.
func (cl *Classifier) Names() []string {
	names := make([]string, 0, len(cl.classes)+1)
	for i := range cl.classes {
		names = append(names, cl.classes[i].name)
	}
	return append(names, OtherClass)
}

// ParseColor parses a "#RRGGBB" hex color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, want #RRGGBB", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}
