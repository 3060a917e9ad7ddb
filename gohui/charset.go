package gohui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// text presentation selector following some arrow glyphs
const (
	variationTextRune = '\uFE0E'
	variationText     = "\uFE0E"
)

const (
	codeSpace    byte = 0x20
	codeQuestion byte = 0x3F
)

// small displays: channel names and the select/assign display
var smallCharset = [128]string{
	"ì", "↑", "→", "↓", "←", "¿", "à", "Ø", // 0x00
	"ø", "ò", "ù", "Ň", "Ç", "ê", "É", "é", // 0x08
	"è", "Æ", "æ", "Å", "å", "Ä", "ä", "Ö", // 0x10
	"ö", "Ü", "ü", "℃", "℉", "ß", "£", "¥", // 0x18
	" ", "!", "\"", "#", "$", "%", "&", "'", // 0x20
	"(", ")", "*", "+", ",", "-", ".", "/",
	"0", "1", "2", "3", "4", "5", "6", "7",
	"8", "9", ":", ";", "<", "=", ">", "?",
	"@", "A", "B", "C", "D", "E", "F", "G",
	"H", "I", "J", "K", "L", "M", "N", "O",
	"P", "Q", "R", "S", "T", "U", "V", "W",
	"X", "Y", "Z", "[", "\\", "]", "^", "_",
	"`", "a", "b", "c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l", "m", "n", "o",
	"p", "q", "r", "s", "t", "u", "v", "w",
	"x", "y", "z", "{", "|", "}", "~", "░", // 0x78
}

// the 2x40 main display, codes below 0x10 render as nothing
var largeCharset = [128]string{
	"", "", "", "", "", "", "", "", // 0x00
	"", "", "", "", "", "", "", "",
	"11", "12", "13", "14", "full", "r4", "r3", "r2", // 0x10
	"r1", "♪", "°C", "°F", "▼", "▶\uFE0E", "◀\uFE0E", "▲",
	" ", "!", "\"", "#", "$", "%", "&", "'", // 0x20
	"(", ")", "*", "+", ",", "-", ".", "/",
	"0", "1", "2", "3", "4", "5", "6", "7",
	"8", "9", ":", ";", "<", "=", ">", "?",
	"@", "A", "B", "C", "D", "E", "F", "G",
	"H", "I", "J", "K", "L", "M", "N", "O",
	"P", "Q", "R", "S", "T", "U", "V", "W",
	"X", "Y", "Z", "[", "\\", "]", "^", "_",
	"`", "a", "b", "c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l", "m", "n", "o",
	"p", "q", "r", "s", "t", "u", "v", "w",
	"x", "y", "z", "{", "|", "}", "→", "←", // 0x78
}

// seven segment time display, 0x10 - 0x1F carry a trailing dot
var timeCharset = [0x31]string{
	"0", "1", "2", "3", "4", "5", "6", "7", // 0x00
	"8", "9", "A", "B", "C", "D", "E", "F",
	"0.", "1.", "2.", "3.", "4.", "5.", "6.", "7.", // 0x10
	"8.", "9.", "A.", "B.", "C.", "D.", "E.", "F.",
	" ",                                    // 0x20
	"?", "?", "?", "?", "?", "?", "?", "?", // 0x21 - 0x2F are unidentified
	"?", "?", "?", "?", "?", "?", "?",
	" .", // 0x30
}

const (
	timeCodeSpace    byte = 0x20
	timeCodeUnknown  byte = 0x21
	timeCodeDotSpace byte = 0x30
	timeCodeMax      byte = 0x30
	timeCodeDot      byte = 0x10
)

var (
	smallCodes = reverseCharset(smallCharset[:])
	largeCodes = reverseCharset(largeCharset[:])
)

// reverseCharset maps the first rune of every single-glyph entry to its code.
// Lower codes win so that ASCII is preferred over look-alikes.
func reverseCharset(table []string) map[rune]byte {
	m := make(map[rune]byte, len(table))
	for code := len(table) - 1; code >= 0; code-- {
		s := table[code]
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || size == 0 {
			continue
		}
		rest := s[size:]
		if rest != "" && rest != variationText {
			continue
		}
		m[r] = byte(code)
	}
	return m
}

func encodeRunes(s string, codes map[rune]byte, dst []byte) {
	i := 0
	for _, r := range s {
		if i >= len(dst) {
			return
		}
		if r == variationTextRune {
			continue
		}
		c, ok := codes[r]
		if !ok {
			c = codeQuestion
		}
		dst[i] = c
		i++
	}
	for ; i < len(dst); i++ {
		dst[i] = codeSpace
	}
}

func renderCodes(codes []byte, table []string) string {
	var b strings.Builder
	for _, c := range codes {
		if int(c) < len(table) {
			b.WriteString(table[c])
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// SmallText is the content of a four character small display as raw codes.
type SmallText [4]byte

// NewSmallText encodes s for a small display. Characters without a code are
// replaced by '?', the text is cut or padded with spaces to four characters.
func NewSmallText(s string) SmallText {
	var t SmallText
	encodeRunes(s, smallCodes, t[:])
	return t
}

// BlankSmallText is four spaces.
func BlankSmallText() SmallText {
	return SmallText{codeSpace, codeSpace, codeSpace, codeSpace}
}

func (t SmallText) String() string {
	return renderCodes(t[:], smallCharset[:])
}

// LargeRow is one 40 character row of the main display as raw codes.
type LargeRow [40]byte

// LargeSlices is the number of ten character slices of the main display.
const LargeSlices = 8

// NewLargeRow encodes s for one row of the main display.
func NewLargeRow(s string) LargeRow {
	var r LargeRow
	encodeRunes(s, largeCodes, r[:])
	return r
}

// BlankLargeRow is forty spaces.
func BlankLargeRow() LargeRow {
	var r LargeRow
	for i := range r {
		r[i] = codeSpace
	}
	return r
}

func (r LargeRow) String() string {
	return renderCodes(r[:], largeCharset[:])
}

// Slice returns ten characters starting at slice index i of the row (0-3).
func (r LargeRow) Slice(i int) (s [10]byte) {
	copy(s[:], r[i*10:i*10+10])
	return s
}

// TimeText is the eight digit time display, index 0 is the leftmost digit.
type TimeText [8]byte

// BlankTimeText is eight blank digits.
func BlankTimeText() TimeText {
	var t TimeText
	for i := range t {
		t[i] = timeCodeSpace
	}
	return t
}

// NewTimeText encodes s for the time display. A '.' attaches to the digit
// before it. Only hex digits, spaces and dots can be shown; anything else
// turns into an error. The text is right aligned, surplus digits on the
// left are dropped.
func NewTimeText(s string) (TimeText, error) {
	var codes []byte
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= '0' && r <= '9':
			codes = append(codes, byte(r-'0'))
		case r >= 'A' && r <= 'F':
			codes = append(codes, byte(r-'A'+10))
		case r == ' ':
			codes = append(codes, timeCodeSpace)
		case r == '.':
			n := len(codes)
			switch {
			case n > 0 && codes[n-1] < timeCodeDot:
				codes[n-1] += timeCodeDot
			case n > 0 && codes[n-1] == timeCodeSpace:
				codes[n-1] = timeCodeDotSpace
			default:
				codes = append(codes, timeCodeDotSpace)
			}
		default:
			return BlankTimeText(), fmt.Errorf("%w: %q in time text", ErrUnknownChar, r)
		}
	}
	t := BlankTimeText()
	if len(codes) > len(t) {
		codes = codes[len(codes)-len(t):]
	}
	copy(t[len(t)-len(codes):], codes)
	return t, nil
}

func (t TimeText) String() string {
	return renderCodes(t[:], timeCharset[:])
}
