// Package capture delivers BGRA video frames from a real or synthetic
// source into a mutex-guarded latest-frame slot. Frames enter the slot
// only through Handle.Pull, called by the consuming loop; no backend
// delivers from a background goroutine.
package capture

import (
	"fmt"
	"strings"
	"sync"
)

// Frame is a BGRA pixel buffer: width, height, and width*height*4 bytes
// in B,G,R,A order, rows contiguous with no padding.
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// Source is the capability set every backend (real or synthetic)
// implements. Init is advisory: the actual delivered size is whatever
// the device yields.
type Source interface {
	Init(width, height int) error
	Start() error
	GetFrame(out *Frame) bool
	Close() error
}

// Handle owns the latest-frame slot and the source feeding it. The
// slot's dimensions are fixed on first delivery and its pixel
// buffer is allocated exactly once.
type Handle struct {
	mu      sync.Mutex
	slot    Frame
	hasData bool
	running bool

	source Source
}

// Open selects a backend for ident (a device identifier or one of the
// dummy-* synthetic source names) and initializes it at width x height.
func Open(ident string, width, height int) (*Handle, error) {
	src, err := newSource(ident)
	if err != nil {
		return nil, err
	}
	if err := src.Init(width, height); err != nil {
		return nil, fmt.Errorf("capture: init %q: %w", ident, err)
	}
	return &Handle{source: src}, nil
}

// Start marks the handle running and starts the underlying source. It
// spawns no goroutine for any backend, real or synthetic: delivery is
// synchronous, driven by Pull below.
func (h *Handle) Start() error {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()
	return h.source.Start()
}

// Pull asks the underlying source for its next frame and, if one is
// available, copies it into the latest-frame slot under the mutex. It
// is safe to call Pull from the same goroutine that later calls
// GetFrame; every source, real or synthetic, is driven this way since
// none has a background delivery thread of its own.
func (h *Handle) Pull() bool {
	var f Frame
	if !h.source.GetFrame(&f) {
		return false
	}
	h.deliver(f)
	return true
}

// deliver copies a freshly produced frame into the slot under the
// mutex, allocating the slot's backing buffer on first delivery.
func (h *Handle) deliver(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasData {
		h.slot.Width = f.Width
		h.slot.Height = f.Height
		h.slot.Pixels = make([]byte, f.Width*f.Height*4)
		h.hasData = true
	}
	copy(h.slot.Pixels, f.Pixels)
}

// GetFrame locks the mutex and, if a frame has ever been delivered,
// deep-copies it into out and returns true. The deep copy trades a
// memcpy for freedom from the racy-borrowed-pointer window the
// original source code tolerated; see DESIGN.md.
func (h *Handle) GetFrame(out *Frame) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasData {
		return false
	}
	out.Width = h.slot.Width
	out.Height = h.slot.Height
	if cap(out.Pixels) < len(h.slot.Pixels) {
		out.Pixels = make([]byte, len(h.slot.Pixels))
	}
	out.Pixels = out.Pixels[:len(h.slot.Pixels)]
	copy(out.Pixels, h.slot.Pixels)
	return true
}

// Close stops delivery and releases the underlying source.
func (h *Handle) Close() error {
	h.mu.Lock()
	h.running = false
	h.mu.Unlock()
	return h.source.Close()
}

// IsDummy reports whether ident names a synthetic source rather than a
// real device.
func IsDummy(ident string) bool {
	return strings.HasPrefix(ident, "dummy-")
}

func newSource(ident string) (Source, error) {
	if IsDummy(ident) {
		return newDummySource(ident)
	}
	return newDeviceSource(ident)
}
