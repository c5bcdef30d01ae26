package terminal

import (
	"os"
	"testing"

	"github.com/mattn/go-isatty"
)

func TestParseCursorReply(t *testing.T) {
	rows, cols, err := parseCursorReply([]byte("\x1b[24;80"))
	if err != nil {
		t.Fatalf("parseCursorReply: %v", err)
	}
	if rows != 24 || cols != 80 {
		t.Fatalf("got rows=%d cols=%d, want 24,80", rows, cols)
	}
}

func TestParseCursorReplyMalformed(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("x"),
		[]byte("[24;80"),
		[]byte("\x1b(24;80"),
		[]byte("\x1b[notanumber"),
	}
	for _, c := range cases {
		if _, _, err := parseCursorReply(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestUsableRowsReservesStatusLine(t *testing.T) {
	if got := UsableRows(24); got != 23 {
		t.Fatalf("UsableRows(24) = %d, want 23", got)
	}
}

func TestEnableRawModeFailsWithoutTTY(t *testing.T) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		t.Skip("stdin is a real tty in this test run")
	}
	p := New()
	if err := p.EnableRawMode(); err != ErrNotATTY {
		t.Fatalf("EnableRawMode() = %v, want ErrNotATTY", err)
	}
}

func TestDisableRawModeBeforeEnableIsNoop(t *testing.T) {
	p := New()
	if err := p.DisableRawMode(); err != nil {
		t.Fatalf("DisableRawMode without Enable: %v", err)
	}
}
