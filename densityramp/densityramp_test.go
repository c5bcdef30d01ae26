package densityramp

import (
	"bytes"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	r, err := Parse(sentinelAsciiDefault)
	if err != nil {
		t.Fatalf("ascii-default: %v", err)
	}
	if r.Len() != len(AsciiDefault) {
		t.Fatalf("ascii-default: got %d glyphs, want %d", r.Len(), len(AsciiDefault))
	}

	r, err = Parse(sentinelUnicodeDefault)
	if err != nil {
		t.Fatalf("unicode-default: %v", err)
	}
	// " .x?▂▄▆█" = 4 ascii + 4 three-byte block glyphs
	if r.Len() != 8 {
		t.Fatalf("unicode-default: got %d glyphs, want 8", r.Len())
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, spec := range []string{"abcdef", AsciiDefault, UnicodeDefault, "x"} {
		r, err := Parse(spec)
		if err != nil {
			t.Fatalf("Parse(%q): %v", spec, err)
		}
		if !bytes.Equal(r.Bytes(), []byte(spec)) {
			t.Fatalf("round trip mismatch for %q: got %q", spec, r.Bytes())
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(""); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestParseInvalidLeadIsTolerant(t *testing.T) {
	// 0xFF is not a valid UTF-8 lead byte; tolerant parsing treats it
	// as a single-byte glyph rather than failing.
	spec := string([]byte{0xFF, 'a'})
	r, err := Parse(spec)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("got %d glyphs, want 2", r.Len())
	}
}

func TestAutoDetect(t *testing.T) {
	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv("LC_ALL", "")
	if got := AutoDetect(); got != UnicodeDefault {
		t.Fatalf("AutoDetect with UTF-8 LANG = %q, want unicode default", got)
	}

	t.Setenv("LANG", "C")
	t.Setenv("LC_ALL", "")
	if got := AutoDetect(); got != AsciiDefault {
		t.Fatalf("AutoDetect with C LANG = %q, want ascii default", got)
	}
}

func TestGlyphOrdering(t *testing.T) {
	r, err := Parse("abc")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := string(r.Glyph(i)); got != want {
			t.Fatalf("glyph %d = %q, want %q", i, got, want)
		}
	}
}
