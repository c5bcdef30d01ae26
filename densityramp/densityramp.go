// Package densityramp parses the glyph ramp used to map luminance to
// text, from darkest (index 0) to lightest (last index).
package densityramp

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// AsciiDefault is used when no density spec is given and the terminal's
// locale does not advertise UTF-8 support.
const AsciiDefault = " .x?A@"

// UnicodeDefault is used when no density spec is given and the locale
// advertises UTF-8 support.
const UnicodeDefault = " .x?▂▄▆█"

const (
	sentinelAsciiDefault   = "ascii-default"
	sentinelUnicodeDefault = "unicode-default"
)

// ErrEmpty is returned when a density spec parses to zero glyphs.
var ErrEmpty = errors.New("densityramp: spec produced no glyphs")

// Ramp is an ordered, immutable sequence of glyphs from darkest to
// lightest.
type Ramp struct {
	glyphs [][]byte
}

// Parse segments spec into a Ramp. The two sentinel strings select a
// built-in default; anything else is treated as a literal UTF-8 ramp
// and segmented by leading-byte pattern, tolerating invalid leads by
// treating them as single-byte glyphs.
func Parse(spec string) (*Ramp, error) {
	switch spec {
	case sentinelAsciiDefault:
		spec = AsciiDefault
	case sentinelUnicodeDefault:
		spec = UnicodeDefault
	}

	b := []byte(spec)
	var glyphs [][]byte
	for i := 0; i < len(b); {
		n := utf8LeadLen(b[i])
		if i+n > len(b) {
			n = len(b) - i
		}
		glyphs = append(glyphs, b[i:i+n])
		i += n
	}

	if len(glyphs) == 0 {
		return nil, ErrEmpty
	}

	warnNonUnitWidth(glyphs)

	return &Ramp{glyphs: glyphs}, nil
}

// utf8LeadLen returns the byte length of the UTF-8 scalar starting
// with lead, tolerating invalid lead bytes by treating them as length 1.
func utf8LeadLen(lead byte) int {
	switch {
	case lead&0x80 == 0x00:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// warnNonUnitWidth logs (does not fail on) glyphs whose terminal cell
// width isn't 1 — such a glyph would misalign the rendered grid.
func warnNonUnitWidth(glyphs [][]byte) {
	for i, g := range glyphs {
		r := []rune(string(g))
		if len(r) != 1 {
			continue
		}
		if w := runewidth.RuneWidth(r[0]); w != 1 {
			log.Printf("densityramp: glyph %d (%q) has display width %d, expected 1", i, g, w)
		}
	}
}

// AutoDetect picks UnicodeDefault when LANG or LC_ALL mentions UTF-8,
// else AsciiDefault.
func AutoDetect() string {
	if localeMentionsUTF8(os.Getenv("LANG")) || localeMentionsUTF8(os.Getenv("LC_ALL")) {
		return UnicodeDefault
	}
	return AsciiDefault
}

func localeMentionsUTF8(v string) bool {
	return strings.Contains(v, "UTF-8") || strings.Contains(v, "utf8")
}

// Len returns the number of glyphs in the ramp.
func (r *Ramp) Len() int {
	return len(r.glyphs)
}

// Glyph returns the raw bytes of the glyph at idx. Callers must keep
// idx within [0, Len()-1].
func (r *Ramp) Glyph(idx int) []byte {
	return r.glyphs[idx]
}

// Bytes concatenates all glyphs in order, reproducing the original
// parsed byte sequence.
func (r *Ramp) Bytes() []byte {
	var out []byte
	for _, g := range r.glyphs {
		out = append(out, g...)
	}
	return out
}
