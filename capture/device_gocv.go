//go:build gocv

package capture

import (
	"fmt"
	"strconv"

	"gocv.io/x/gocv"
)

// deviceSource wraps a real OS camera via OpenCV's VideoCapture. It
// satisfies Source the same way dummySource does, so the rest of the
// package never distinguishes a real device from a synthetic one.
type deviceSource struct {
	ident string
	cap   *gocv.VideoCapture
	frame gocv.Mat
	bgra  gocv.Mat
}

func newDeviceSource(ident string) (Source, error) {
	return &deviceSource{ident: ident, frame: gocv.NewMat(), bgra: gocv.NewMat()}, nil
}

func (d *deviceSource) Init(width, height int) error {
	id, err := strconv.Atoi(d.ident)
	if err != nil {
		id = 0
	}
	cap, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return fmt.Errorf("capture: open device %q: %w", d.ident, err)
	}
	if width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	d.cap = cap
	return nil
}

func (d *deviceSource) Start() error {
	if d.cap == nil {
		return fmt.Errorf("capture: device %q not initialized", d.ident)
	}
	return nil
}

// GetFrame reads one frame from the device, converts it to BGRA, and
// exposes its raw bytes. The returned Frame borrows d.bgra's buffer
// until the next call.
func (d *deviceSource) GetFrame(out *Frame) bool {
	if d.cap == nil || !d.cap.Read(&d.frame) || d.frame.Empty() {
		return false
	}
	if err := gocv.CvtColor(d.frame, &d.bgra, gocv.ColorBGRToBGRA); err != nil {
		return false
	}
	out.Width = d.bgra.Cols()
	out.Height = d.bgra.Rows()
	out.Pixels = d.bgra.ToBytes()
	return true
}

func (d *deviceSource) Close() error {
	d.frame.Close()
	d.bgra.Close()
	if d.cap != nil {
		return d.cap.Close()
	}
	return nil
}
