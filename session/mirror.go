package session

import (
	"context"
	"io"
	"time"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/raster"
	"github.com/danielfalbo/picturephone/terminal"
)

const (
	frameInterval = 33 * time.Millisecond
	ctrlC         = 3
)

// appendStatus renders the status row, honoring the same cursor-move +
// erase-to-end-of-line convention as every other redraw.
func appendStatus(buf []byte, rows int, msg string, cols int) []byte {
	buf = append(buf, 0x1b, '[')
	buf = appendInt(buf, rows+1)
	buf = append(buf, ';', '1', 'H')
	buf = append(buf, 0x1b, '[', '0', 'K')
	if len(msg) > cols {
		msg = msg[:cols]
	}
	buf = append(buf, msg...)
	return buf
}

func appendInt(buf []byte, v int) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// RunMirror runs the local-only mirror loop: pull the latest capture
// frame, rasterize it fullscreen and mirrored, present at ~30fps,
// until ctx is canceled or the user presses Ctrl-C on stdin.
func RunMirror(ctx context.Context, term *terminal.Presenter, cam *capture.Handle, ramp raster.Ramp, stdin io.Reader) error {
	keys := make(chan byte, 16)
	go readKeys(stdin, keys)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	var buf []byte
	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-keys:
			if b == ctrlC {
				return nil
			}
		default:
		}

		cam.Pull()

		rows, cols, err := term.QueryWindowSize()
		if err == nil {
			usable := terminal.UsableRows(rows)
			if usable > 0 && cols > 0 {
				var f capture.Frame
				if cam.GetFrame(&f) {
					buf = buf[:0]
					buf = append(buf, "\x1b[?25l"...)
					buf = append(buf, "\x1b[H"...)
					buf = raster.RenderBGRA(buf, f.Pixels, f.Width, f.Height, 0, 0, cols, usable, true, ramp)
					buf = appendStatus(buf, usable, "", cols)
					_ = term.WriteBatch(buf)
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readKeys(r io.Reader, out chan<- byte) {
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n > 0 {
			select {
			case out <- b[0]:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}
