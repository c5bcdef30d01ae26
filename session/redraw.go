package session

import (
	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/raster"
)

// redraw composes one append buffer for the networked session's
// current view and returns it; the caller writes it in a single batch
// via WriteBatch. cols/rows
// are the caller's usable terminal size (rows already excludes the
// status line).
func redraw(buf []byte, cam *capture.Handle, ramp raster.Ramp, st *State, cols, rows int, statusMsg string) []byte {
	view, peer, hasPeer := st.Snapshot()

	buf = buf[:0]
	buf = append(buf, "\x1b[?25l"...)
	buf = append(buf, "\x1b[H"...)

	if !hasPeer || peer.Width == 0 || peer.Height == 0 {
		return appendStatus(buf, rows, statusMsg, cols)
	}

	var self capture.Frame
	haveSelf := cam.GetFrame(&self)

	switch view {
	case ViewPiP:
		buf = raster.RenderLuma(buf, peer.Luma, peer.Width, peer.Height, 0, 0, cols, rows, true, ramp)
		if haveSelf {
			sw, sh := cols/4, rows/4
			if sw < 10 {
				sw = 10
			}
			if sh < 5 {
				sh = 5
			}
			buf = raster.RenderBGRA(buf, self.Pixels, self.Width, self.Height,
				cols-sw-2, rows-sh-2, sw, sh, true, ramp)
		}
	case ViewSplit:
		halfW := cols / 2
		buf = raster.RenderLuma(buf, peer.Luma, peer.Width, peer.Height, 0, 0, halfW, rows, true, ramp)
		if haveSelf {
			buf = raster.RenderBGRA(buf, self.Pixels, self.Width, self.Height,
				halfW, 0, cols-halfW, rows, true, ramp)
		}
	}

	return appendStatus(buf, rows, statusMsg, cols)
}
