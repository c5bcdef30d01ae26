package capture

import "testing"

func TestDummyGradientReportsFixedSize(t *testing.T) {
	h, err := Open("dummy-gradient", 640, 480)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !h.Pull() {
		t.Fatal("expected Pull to succeed on first call")
	}

	var f Frame
	if !h.GetFrame(&f) {
		t.Fatal("expected GetFrame to return a frame after Pull")
	}
	if f.Width != dummyWidth || f.Height != dummyHeight {
		t.Fatalf("got %dx%d, want %dx%d", f.Width, f.Height, dummyWidth, dummyHeight)
	}
	if len(f.Pixels) != dummyWidth*dummyHeight*4 {
		t.Fatalf("got %d pixel bytes, want %d", len(f.Pixels), dummyWidth*dummyHeight*4)
	}
}

func TestGetFrameFalseBeforeFirstDelivery(t *testing.T) {
	h, err := Open("dummy-gradient", 640, 480)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var f Frame
	if h.GetFrame(&f) {
		t.Fatal("expected no frame before the first Pull")
	}
}

func TestDummyGradientFormula(t *testing.T) {
	d, err := newDummySource("dummy-gradient")
	if err != nil {
		t.Fatalf("newDummySource: %v", err)
	}
	if err := d.Init(640, 480); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var out Frame
	d.GetFrame(&out) // frame_counter becomes 1

	x, y := 3, 7
	off := (y*dummyWidth + x) * 4
	want := byte((x + y + 1) % 255)
	if out.Pixels[off] != want {
		t.Fatalf("pixel (%d,%d) B=%d, want %d", x, y, out.Pixels[off], want)
	}
	if out.Pixels[off] != out.Pixels[off+1] || out.Pixels[off] != out.Pixels[off+2] {
		t.Fatalf("expected B==G==R at (%d,%d)", x, y)
	}
}

func TestDummyBounceStaysWithinBounds(t *testing.T) {
	d, err := newDummySource("dummy-bounce")
	if err != nil {
		t.Fatalf("newDummySource: %v", err)
	}
	if err := d.Init(640, 480); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var out Frame
	for i := 0; i < 200; i++ {
		if !d.GetFrame(&out) {
			t.Fatalf("GetFrame failed on iteration %d", i)
		}
		if d.bounceX < -bounceBox || d.bounceX > dummyWidth {
			t.Fatalf("bounceX escaped bounds: %d", d.bounceX)
		}
		if d.bounceY < -bounceBox || d.bounceY > dummyHeight {
			t.Fatalf("bounceY escaped bounds: %d", d.bounceY)
		}
	}
}

func TestDummyNoiseIsDeterministicForAFixedSeed(t *testing.T) {
	d1, _ := newDummySource("dummy-noise")
	d1.Init(640, 480)
	d2, _ := newDummySource("dummy-noise")
	d2.Init(640, 480)

	var f1, f2 Frame
	d1.GetFrame(&f1)
	d2.GetFrame(&f2)

	if len(f1.Pixels) != len(f2.Pixels) {
		t.Fatal("pixel buffer length mismatch")
	}
	for i := range f1.Pixels {
		if f1.Pixels[i] != f2.Pixels[i] {
			t.Fatalf("two fresh dummy-noise sources diverged at byte %d: %d != %d", i, f1.Pixels[i], f2.Pixels[i])
		}
	}
}

func TestUnknownDummyIdentRejected(t *testing.T) {
	if _, err := newDummySource("dummy-nonexistent"); err == nil {
		t.Fatal("expected an error for an unrecognized dummy source")
	}
}

func TestIsDummy(t *testing.T) {
	cases := map[string]bool{
		"dummy-gradient": true,
		"dummy-noise":    true,
		"dummy-bounce":   true,
		"/dev/video0":    false,
		"0":              false,
	}
	for ident, want := range cases {
		if got := IsDummy(ident); got != want {
			t.Fatalf("IsDummy(%q) = %v, want %v", ident, got, want)
		}
	}
}
