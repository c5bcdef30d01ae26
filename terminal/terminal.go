// Package terminal puts stdin into raw mode, reports the usable
// window size, and batches output into single write syscalls so a
// full frame is never torn across partial writes.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// ErrNotATTY is returned by EnableRawMode when stdin is not a terminal.
var ErrNotATTY = errors.New("terminal: stdin is not a tty")

// Presenter owns raw-mode lifecycle, window-size queries, and batched
// writes to stdout. Its zero value is not usable; use New.
type Presenter struct {
	in, out int

	mu      sync.Mutex
	raw     bool
	orig    unix.Termios
	resizeC chan struct{}
}

// New wires a Presenter to the process's stdin/stdout file descriptors.
func New() *Presenter {
	return &Presenter{in: int(os.Stdin.Fd()), out: int(os.Stdout.Fd())}
}

// EnableRawMode disables input/output processing, echo, canonical
// mode, signal generation, and extended input processing, matching
// the classic termios raw-mode recipe. Idempotent: a second call
// while already raw is a no-op. Fails if stdin is not a terminal.
func (p *Presenter) EnableRawMode() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.raw {
		return nil
	}
	if !isatty.IsTerminal(uintptr(p.in)) {
		return ErrNotATTY
	}

	orig, err := unix.IoctlGetTermios(p.in, ioctlGets)
	if err != nil {
		return fmt.Errorf("terminal: tcgetattr: %w", err)
	}
	p.orig = *orig

	raw := *orig
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 1 // tenths of a second: 100ms

	if err := unix.IoctlSetTermios(p.in, ioctlSets, &raw); err != nil {
		return fmt.Errorf("terminal: tcsetattr: %w", err)
	}
	p.raw = true
	return nil
}

// DisableRawMode restores the terminal attributes captured by
// EnableRawMode and shows the cursor. Idempotent.
func (p *Presenter) DisableRawMode() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.raw {
		return nil
	}
	err := unix.IoctlSetTermios(p.in, ioctlSets, &p.orig)
	p.raw = false
	os.Stdout.WriteString("\x1b[?25h")
	if err != nil {
		return fmt.Errorf("terminal: tcsetattr restore: %w", err)
	}
	return nil
}

// QueryWindowSize returns the terminal's rows and cols, trying an
// ioctl first and falling back to a cursor-position query if the
// ioctl fails or reports zero columns.
func (p *Presenter) QueryWindowSize() (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(p.out, unix.TIOCGWINSZ)
	if err == nil && ws.Col != 0 {
		return int(ws.Row), int(ws.Col), nil
	}
	return p.queryWindowSizeByCursor()
}

func (p *Presenter) queryWindowSizeByCursor() (rows, cols int, err error) {
	origRow, origCol, err := p.queryCursorPosition()
	if err != nil {
		return 0, 0, err
	}

	if _, err := os.Stdout.WriteString("\x1b[999C\x1b[999B"); err != nil {
		return 0, 0, fmt.Errorf("terminal: write margin probe: %w", err)
	}
	rows, cols, err = p.queryCursorPosition()
	if err != nil {
		return 0, 0, err
	}

	seq := "\x1b[" + strconv.Itoa(origRow) + ";" + strconv.Itoa(origCol) + "H"
	os.Stdout.WriteString(seq) // best-effort restore; a failure here is not fatal

	return rows, cols, nil
}

// queryCursorPosition writes ESC[6n and parses the "ESC[rows;colsR"
// reply byte by byte from stdin.
func (p *Presenter) queryCursorPosition() (rows, cols int, err error) {
	if _, err := os.Stdout.WriteString("\x1b[6n"); err != nil {
		return 0, 0, fmt.Errorf("terminal: write cursor query: %w", err)
	}

	r := bufio.NewReader(os.Stdin)
	buf := make([]byte, 0, 32)
	for len(buf) < 31 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("terminal: read cursor reply: %w", err)
		}
		if b == 'R' {
			break
		}
		buf = append(buf, b)
	}

	return parseCursorReply(buf)
}

// parseCursorReply parses "ESC [ rows ; cols" (without the trailing R,
// already consumed by the reader) as written by a terminal responding
// to ESC[6n.
func parseCursorReply(buf []byte) (rows, cols int, err error) {
	if len(buf) < 2 || buf[0] != 0x1b || buf[1] != '[' {
		return 0, 0, errors.New("terminal: malformed cursor position reply")
	}
	n, err := fmt.Sscanf(string(buf[2:]), "%d;%d", &rows, &cols)
	if err != nil || n != 2 {
		return 0, 0, errors.New("terminal: could not parse cursor position reply")
	}
	return rows, cols, nil
}

// WriteBatch writes buf to stdout in a single call so a frame is
// never torn across partial writes.
func (p *Presenter) WriteBatch(buf []byte) error {
	_, err := os.Stdout.Write(buf)
	return err
}

// InstallResizeHandler arms SIGWINCH delivery and returns a channel
// that receives a value each time the window is resized. Call
// StopResizeHandler to release the underlying signal channel.
func (p *Presenter) InstallResizeHandler() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resizeC != nil {
		return p.resizeC
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGWINCH)
	out := make(chan struct{}, 1)
	p.resizeC = out

	go func() {
		for range sig {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out
}

// StopResizeHandler stops delivering resize notifications.
func (p *Presenter) StopResizeHandler() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resizeC == nil {
		return
	}
	signal.Reset(unix.SIGWINCH)
	close(p.resizeC)
	p.resizeC = nil
}

// UsableRows returns rows-1, reserving the last row for a status line.
func UsableRows(rows int) int {
	return rows - 1
}
