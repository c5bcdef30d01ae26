package capture

import "fmt"

const (
	dummyWidth  = 640
	dummyHeight = 480
	bounceBox   = 80
)

// dummySource generates synthetic BGRA frames entirely in the calling
// goroutine; it has no background delivery thread of its own.
type dummySource struct {
	kind string

	frameCounter int
	noiseSeed    uint32

	bounceX, bounceY   int
	bounceDX, bounceDY int

	pixels []byte
}

func newDummySource(ident string) (*dummySource, error) {
	switch ident {
	case "dummy-gradient", "dummy-noise", "dummy-bounce":
	default:
		return nil, fmt.Errorf("capture: unknown dummy source %q", ident)
	}
	return &dummySource{
		kind:      ident,
		noiseSeed: 12345,
		bounceX:   100,
		bounceY:   100,
		bounceDX:  8,
		bounceDY:  8,
	}, nil
}

func (d *dummySource) Init(width, height int) error {
	d.pixels = make([]byte, dummyWidth*dummyHeight*4)
	return nil
}

func (d *dummySource) Start() error { return nil }

func (d *dummySource) Close() error { return nil }

// GetFrame renders the next synthetic frame and always returns true.
func (d *dummySource) GetFrame(out *Frame) bool {
	w, h := dummyWidth, dummyHeight

	switch d.kind {
	case "dummy-noise":
		d.renderNoise(w, h)
	case "dummy-bounce":
		d.renderBounce(w, h)
	default:
		d.renderGradient(w, h)
	}

	out.Width = w
	out.Height = h
	out.Pixels = d.pixels
	return true
}

func (d *dummySource) renderGradient(w, h int) {
	d.frameCounter++
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			val := byte((x + y + d.frameCounter) % 255)
			d.pixels[off+0] = val
			d.pixels[off+1] = val
			d.pixels[off+2] = val
		}
	}
}

func (d *dummySource) renderNoise(w, h int) {
	for i := 0; i < w*h*4; i += 4 {
		val := byte(randR(&d.noiseSeed) % 256)
		d.pixels[i+0] = val
		d.pixels[i+1] = val
		d.pixels[i+2] = val
	}
}

func (d *dummySource) renderBounce(w, h int) {
	for i := range d.pixels {
		d.pixels[i] = 0
	}

	d.bounceX += d.bounceDX
	d.bounceY += d.bounceDY

	if d.bounceX < 0 || d.bounceX+bounceBox >= w {
		d.bounceDX = -d.bounceDX
		d.bounceX += d.bounceDX
	}
	if d.bounceY < 0 || d.bounceY+bounceBox >= h {
		d.bounceDY = -d.bounceDY
		d.bounceY += d.bounceDY
	}

	for y := d.bounceY; y < d.bounceY+bounceBox; y++ {
		for x := d.bounceX; x < d.bounceX+bounceBox; x++ {
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			off := (y*w + x) * 4
			d.pixels[off+0] = 255
			d.pixels[off+1] = 255
			d.pixels[off+2] = 255
		}
	}
}

// randR is a reentrant linear congruential generator matching glibc's
// rand_r, seeded and advanced via the caller-owned seed.
func randR(seed *uint32) uint32 {
	next := *seed
	next = next*1103515245 + 12345
	result := (next / 65536) % 2048

	next = next*1103515245 + 12345
	result <<= 10
	result ^= (next / 65536) % 1024

	next = next*1103515245 + 12345
	result <<= 10
	result ^= (next / 65536) % 1024

	*seed = next
	return result
}
