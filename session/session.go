// Package session holds the shared state and loops (mirror-only and
// networked) that drive a picturephone call once a capture source,
// terminal presenter, and density ramp have been wired up.
package session

import (
	"sync"

	"github.com/danielfalbo/picturephone/protocol"
)

// ViewMode selects how the peer's and the local camera's frames are
// composited on screen during a networked session.
type ViewMode int

const (
	ViewPiP ViewMode = iota
	ViewSplit
)

// PeerFrame is the peer's most recently decoded Picture: a
// single-channel luminance buffer, one byte per cell, no alpha.
type PeerFrame struct {
	Width, Height int
	Luma          []byte
}

// State is the session-lifetime data a Session Loop reads and
// mutates every iteration; see Session Loop in the design notes.
type State struct {
	mu sync.Mutex

	MyRenderW, MyRenderH     int
	PeerRenderW, PeerRenderH int
	ViewMode                 ViewMode
	LastPeer                 PeerFrame
	HasPeerFrame             bool
}

// NewState returns a State with the peer render defaults the wire
// format specifies (80x60) until a Config packet arrives.
func NewState() *State {
	return &State{
		PeerRenderW: protocol.DefaultPeerWidth,
		PeerRenderH: protocol.DefaultPeerHeight,
	}
}

// SetMyRender clamps and stores the terminal cell size we want the
// peer to send at. Returns true if the clamped values differ from
// what was previously stored (the caller should send a Config).
func (s *State) SetMyRender(cols, rows int) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := clamp255(cols)
	h := clamp255(rows)
	if w == s.MyRenderW && h == s.MyRenderH {
		return false
	}
	s.MyRenderW, s.MyRenderH = w, h
	return true
}

// ApplyPeerConfig stores the peer's requested render size. A Config
// with w=0 or h=0 is ignored per the wire format.
func (s *State) ApplyPeerConfig(w, h int) {
	if w == 0 || h == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PeerRenderW, s.PeerRenderH = w, h
}

// ApplyPeerPicture stores the peer's latest decoded frame, reusing the
// existing luma buffer's backing array when its capacity allows.
func (s *State) ApplyPeerPicture(w, h int, luma []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cap(s.LastPeer.Luma) < len(luma) {
		s.LastPeer.Luma = make([]byte, len(luma))
	}
	s.LastPeer.Luma = s.LastPeer.Luma[:len(luma)]
	copy(s.LastPeer.Luma, luma)
	s.LastPeer.Width = w
	s.LastPeer.Height = h
	s.HasPeerFrame = true
}

// ToggleView flips PiP/Split and reports whether a previous peer frame
// exists (so the caller knows whether an immediate redraw is useful).
func (s *State) ToggleView() (hasPeerFrame bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ViewMode == ViewPiP {
		s.ViewMode = ViewSplit
	} else {
		s.ViewMode = ViewPiP
	}
	return s.HasPeerFrame
}

// Snapshot returns a consistent copy of the fields a redraw needs. The
// peer's Picture buffer is laid out at peer.Width x peer.Height (what
// we asked the peer to send via MyRender, decoded off the wire); this
// is independent of PeerRenderSize, which is what the peer asked us to
// send and is only relevant on the send path.
func (s *State) Snapshot() (view ViewMode, peer PeerFrame, has bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	peerCopy := PeerFrame{Width: s.LastPeer.Width, Height: s.LastPeer.Height}
	if len(s.LastPeer.Luma) > 0 {
		peerCopy.Luma = append([]byte(nil), s.LastPeer.Luma...)
	}
	return s.ViewMode, peerCopy, s.HasPeerFrame
}

// PeerRenderSize returns the render size the peer asked us to send at,
// for use on the send path.
func (s *State) PeerRenderSize() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PeerRenderW, s.PeerRenderH
}

func clamp255(v int) int {
	if v < 1 {
		return 1
	}
	if v > 255 {
		return 255
	}
	return v
}
