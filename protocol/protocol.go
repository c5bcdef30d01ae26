// Package protocol implements the peer-to-peer wire framing exchanged
// between two picturephone sessions: a one-byte packet type followed
// by two one-byte dimensions, carrying either a Config request or a
// Picture payload of single-channel luminance bytes.
package protocol

import (
	"errors"
	"io"
)

// Type identifies a packet's purpose.
type Type byte

const (
	// TypeConfig asks the peer to send frames at a given w x h.
	TypeConfig Type = 0x43 // 'C'
	// TypePicture carries w*h luminance bytes, row-major.
	TypePicture Type = 0x50 // 'P'
)

const headerSize = 3

// MaxDim is the largest representable dimension: a single byte.
const MaxDim = 255

// MaxPayload is the largest possible Picture payload, 255*255 bytes.
const MaxPayload = MaxDim * MaxDim

// MaxPacket is the largest possible packet: header plus MaxPayload.
const MaxPacket = headerSize + MaxPayload

// AccumulatorCap is the receive accumulator's capacity: enough to hold
// at least one max-size Picture packet plus slack for a partially
// received second one, per the wire format's size bound.
const AccumulatorCap = 2 * MaxPacket

// DefaultPeerWidth and DefaultPeerHeight are the assumed peer render
// dimensions until a Config packet arrives.
const (
	DefaultPeerWidth  = 80
	DefaultPeerHeight = 60
)

// ErrOverflow is returned by Feed when the not-yet-decoded backlog
// plus the newly fed bytes would exceed AccumulatorCap; the session
// should be closed.
var ErrOverflow = errors.New("protocol: packet would overflow accumulator")

// Packet is a fully decoded wire packet.
type Packet struct {
	Type Type
	W, H int
	// Payload holds w*h luminance bytes for a Picture; nil for Config.
	// It aliases the accumulator's backing array and is only valid
	// until the next Feed call.
	Payload []byte
}

// WriteConfig sends a Config packet requesting frames at w x h,
// clamped to [0, MaxDim]. Per the wire format it is written as the
// 3-byte header in a single write call.
func WriteConfig(w io.Writer, width, height int) error {
	hdr := [headerSize]byte{byte(TypeConfig), clampDim(width), clampDim(height)}
	_, err := w.Write(hdr[:])
	return err
}

// WritePicture sends a Picture packet: the 3-byte header, then the
// payload, as two separate write calls so a transient EAGAIN on the
// payload can be surfaced to the caller without resending the header.
func WritePicture(w io.Writer, width, height int, payload []byte) error {
	hdr := [headerSize]byte{byte(TypePicture), clampDim(width), clampDim(height)}
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

func clampDim(v int) byte {
	if v < 0 {
		return 0
	}
	if v > MaxDim {
		return MaxDim
	}
	return byte(v)
}

// Accumulator buffers bytes read from a peer socket, in a fixed-size
// backing array, and decodes them into packets, resyncing past
// unrecognized type bytes. Its capacity bounds memory per session.
type Accumulator struct {
	data       [AccumulatorCap]byte
	start, end int
}

// NewAccumulator returns an empty accumulator ready to receive bytes.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Feed appends newly read bytes and decodes as many complete packets
// as are available, invoking fn for each. An unrecognized type byte is
// skipped one byte at a time (resync) rather than failing. Feed
// returns ErrOverflow if the unconsumed backlog plus data cannot fit
// in the accumulator's capacity; the caller should close the session.
func (a *Accumulator) Feed(data []byte, fn func(Packet)) error {
	if a.start > 0 {
		copy(a.data[:a.end-a.start], a.data[a.start:a.end])
		a.end -= a.start
		a.start = 0
	}
	if a.end+len(data) > AccumulatorCap {
		return ErrOverflow
	}
	copy(a.data[a.end:], data)
	a.end += len(data)

	for a.end-a.start >= headerSize {
		switch Type(a.data[a.start]) {
		case TypeConfig:
			w := int(a.data[a.start+1])
			h := int(a.data[a.start+2])
			fn(Packet{Type: TypeConfig, W: w, H: h})
			a.start += headerSize

		case TypePicture:
			w := int(a.data[a.start+1])
			h := int(a.data[a.start+2])
			need := headerSize + w*h
			if a.end-a.start < need {
				return nil // wait for more bytes
			}
			fn(Packet{Type: TypePicture, W: w, H: h, Payload: a.data[a.start+headerSize : a.start+need]})
			a.start += need

		default:
			a.start++ // resync: drop one byte and retry
		}
	}
	return nil
}

// Len reports the number of buffered, not-yet-decoded bytes.
func (a *Accumulator) Len() int {
	return a.end - a.start
}
