package charclass

// Default returns the built-in classifier used when no charsets file is
// configured. Priority order matters: CJK-adjacent scripts come before
// Latin so that mixed tokens such as "中a" keep their CJK color, and digits
// come first so numeric tokens never count as Latin.
func Default() *Classifier {
	cl, err := New(DefaultClasses())
	if err != nil {
		// The built-in table is static; a compile failure is a programming error.
		panic(err)
	}
	return cl
}

// DefaultClasses returns the built-in class definitions in priority order.
func DefaultClasses() []Class {
	return []Class{
		{
			Name:  "digit",
			Color: "#00B894",
			Chars: "0123456789",
		},
		{
			Name:  "CJK",
			Color: "#E17055",
			Ranges: []Range{
				{Lo: 0x4E00, Hi: 0x9FFF},   // CJK Unified Ideographs
				{Lo: 0x3400, Hi: 0x4DBF},   // Extension A
				{Lo: 0xF900, Hi: 0xFAFF},   // Compatibility Ideographs
				{Lo: 0x20000, Hi: 0x2A6DF}, // Extension B
				{Lo: 0x3000, Hi: 0x303F},   // CJK punctuation
			},
		},
		{
			Name:  "Kana",
			Color: "#FD79A8",
			Ranges: []Range{
				{Lo: 0x3040, Hi: 0x309F}, // Hiragana
				{Lo: 0x30A0, Hi: 0x30FF}, // Katakana
				{Lo: 0x31F0, Hi: 0x31FF}, // Katakana phonetic extensions
			},
		},
		{
			Name:  "Hangul",
			Color: "#A29BFE",
			Ranges: []Range{
				{Lo: 0xAC00, Hi: 0xD7AF}, // Syllables
				{Lo: 0x1100, Hi: 0x11FF}, // Jamo
				{Lo: 0x3130, Hi: 0x318F}, // Compatibility Jamo
			},
		},
		{
			Name:  "Latin",
			Color: "#0984E3",
			Ranges: []Range{
				{Lo: 'A', Hi: 'Z'},
				{Lo: 'a', Hi: 'z'},
				{Lo: 0x00C0, Hi: 0x024F}, // Latin-1 supplement + extended A/B letters
			},
		},
		{
			Name:  "Cyrillic",
			Color: "#6C5CE7",
			Ranges: []Range{
				{Lo: 0x0400, Hi: 0x04FF},
				{Lo: 0x0500, Hi: 0x052F},
			},
		},
		{
			Name:   "Greek",
			Color:  "#00CEC9",
			Ranges: []Range{{Lo: 0x0370, Hi: 0x03FF}},
		},
		{
			Name:  "Arabic",
			Color: "#FDCB6E",
			Ranges: []Range{
				{Lo: 0x0600, Hi: 0x06FF},
				{Lo: 0x0750, Hi: 0x077F},
			},
		},
		{
			Name:   "Hebrew",
			Color:  "#E84393",
			Ranges: []Range{{Lo: 0x0590, Hi: 0x05FF}},
		},
		{
			Name:  "symbol",
			Color: "#636E72",
			Ranges: []Range{
				{Lo: 0x0021, Hi: 0x002F},
				{Lo: 0x003A, Hi: 0x0040},
				{Lo: 0x005B, Hi: 0x0060},
				{Lo: 0x007B, Hi: 0x007E},
				{Lo: 0x2000, Hi: 0x206F}, // general punctuation
				{Lo: 0x20A0, Hi: 0x20CF}, // currency
			},
		},
		{
			Name:  OtherClass,
			Color: "#B2BEC3",
		},
	}
}
