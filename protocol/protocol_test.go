package protocol

import (
	"bytes"
	"testing"
)

func TestWriteConfigClampsAndFramesThreeBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConfig(&buf, 300, -5); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	want := []byte{byte(TypeConfig), MaxDim, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %v, want %v", buf.Bytes(), want)
	}
}

func TestWritePictureFramesHeaderThenPayload(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3, 4}
	if err := WritePicture(&buf, 2, 2, payload); err != nil {
		t.Fatalf("WritePicture: %v", err)
	}
	want := append([]byte{byte(TypePicture), 2, 2}, payload...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %v, want %v", buf.Bytes(), want)
	}
}

func TestAccumulatorDecodesConfig(t *testing.T) {
	a := NewAccumulator()
	var got []Packet
	err := a.Feed([]byte{byte(TypeConfig), 0x50, 0x28}, func(p Packet) { got = append(got, p) })
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 1 || got[0].Type != TypeConfig || got[0].W != 0x50 || got[0].H != 0x28 {
		t.Fatalf("got %+v", got)
	}
	if a.Len() != 0 {
		t.Fatalf("expected accumulator drained, got %d leftover bytes", a.Len())
	}
}

// TestAccumulatorScenarioS4 mirrors the spec's resync scenario: a junk
// byte X (0x58) followed by a valid Config C 0x50 0x28 should yield
// exactly one skipped byte and one decoded Config.
func TestAccumulatorScenarioS4(t *testing.T) {
	a := NewAccumulator()
	var got []Packet
	input := []byte{0x58, byte(TypeConfig), 0x50, 0x28}
	if err := a.Feed(input, func(p Packet) { got = append(got, p) }); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d packets, want 1", len(got))
	}
	if got[0].W != 80 || got[0].H != 40 {
		t.Fatalf("got W=%d H=%d, want 80,40", got[0].W, got[0].H)
	}
	if a.Len() != 0 {
		t.Fatalf("expected accumulator empty after resync, got %d leftover bytes", a.Len())
	}
}

func TestAccumulatorResyncBetweenTwoValidPackets(t *testing.T) {
	a := NewAccumulator()
	var got []Packet
	input := append([]byte{byte(TypeConfig), 4, 4}, 0xFF)
	input = append(input, byte(TypeConfig), 8, 8)
	if err := a.Feed(input, func(p Packet) { got = append(got, p) }); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d packets, want 2", len(got))
	}
	if got[0].W != 4 || got[0].H != 4 || got[1].W != 8 || got[1].H != 8 {
		t.Fatalf("got %+v", got)
	}
}

func TestAccumulatorPictureWaitsForFullPayload(t *testing.T) {
	a := NewAccumulator()
	var got []Packet
	fn := func(p Packet) { got = append(got, p) }

	// Header plus only 2 of 4 declared payload bytes.
	if err := a.Feed([]byte{byte(TypePicture), 2, 2, 0xAA, 0xBB}, fn); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no packets yet, got %d", len(got))
	}
	if a.Len() != 5 {
		t.Fatalf("expected 5 buffered bytes, got %d", a.Len())
	}

	if err := a.Feed([]byte{0xCC, 0xDD}, fn); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 packet after completing payload, got %d", len(got))
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if !bytes.Equal(got[0].Payload, want) {
		t.Fatalf("payload = %v, want %v", got[0].Payload, want)
	}
	if a.Len() != 0 {
		t.Fatalf("expected accumulator drained, got %d leftover bytes", a.Len())
	}
}

// TestAccumulatorScenarioS3 mirrors the spec's Picture round-trip
// scenario: a 4x2 Picture decodes into the declared dimensions and
// payload bytes in row-major order.
func TestAccumulatorScenarioS3(t *testing.T) {
	a := NewAccumulator()
	var got Packet
	payload := []byte{0, 64, 128, 255, 32, 96, 160, 224}
	input := append([]byte{byte(TypePicture), 4, 2}, payload...)
	if err := a.Feed(input, func(p Packet) { got = p }); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if got.W != 4 || got.H != 2 {
		t.Fatalf("got W=%d H=%d, want 4,2", got.W, got.H)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Fatalf("payload = %v, want %v", got.Payload, payload)
	}
}

func TestAccumulatorOverflowClosesSession(t *testing.T) {
	a := NewAccumulator()
	huge := make([]byte, AccumulatorCap+1)
	if err := a.Feed(huge, func(Packet) {}); err != ErrOverflow {
		t.Fatalf("Feed with oversized input = %v, want ErrOverflow", err)
	}
}

func TestAccumulatorMaxSizePictureFits(t *testing.T) {
	a := NewAccumulator()
	payload := make([]byte, MaxPayload)
	var got Packet
	input := append([]byte{byte(TypePicture), MaxDim, MaxDim}, payload...)
	if err := a.Feed(input, func(p Packet) { got = p }); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if got.W != MaxDim || got.H != MaxDim {
		t.Fatalf("got W=%d H=%d, want %d,%d", got.W, got.H, MaxDim, MaxDim)
	}
}
