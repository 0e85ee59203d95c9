package hw

import "testing"

func TestControllerSerialRead(t *testing.T) {
	c := NewController()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)

	// Strobe high then low latches the state.
	c.WriteStrobe(1)
	c.WriteStrobe(0)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, U, D, L, R
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Errorf("read %d = %d, want %d", i, got, w)
		}
	}

	// Past the 8th read the port returns 1.
	for i := 0; i < 3; i++ {
		if got := c.Read(); got != 1 {
			t.Errorf("read past end = %d, want 1", got)
		}
	}
}

func TestControllerStrobeHigh(t *testing.T) {
	c := NewController()
	c.SetButton(ButtonB, true)

	// While the strobe is high every read reports the live A button.
	c.WriteStrobe(1)
	if got := c.Read(); got != 0 {
		t.Errorf("read = %d, want 0 (A released)", got)
	}
	c.SetButton(ButtonA, true)
	if got := c.Read(); got != 1 {
		t.Errorf("read = %d, want 1 (A pressed)", got)
	}
	if got := c.Read(); got != 1 {
		t.Errorf("repeated read = %d, want 1, index must not advance", got)
	}
}

func TestControllerRelatch(t *testing.T) {
	c := NewController()
	c.SetButton(ButtonRight, true)
	c.WriteStrobe(1)
	c.WriteStrobe(0)

	// Drain a few bits, then strobe again: the shifter restarts from A.
	c.Read()
	c.Read()
	c.SetButton(ButtonA, true)
	c.WriteStrobe(1)
	c.WriteStrobe(0)

	if got := c.Read(); got != 1 {
		t.Errorf("first read after relatch = %d, want 1", got)
	}
}

func TestControllerLatchIgnoresLaterChanges(t *testing.T) {
	c := NewController()
	c.SetButton(ButtonA, true)
	c.WriteStrobe(1)
	c.WriteStrobe(0)

	// Releasing after the latch does not affect the latched report.
	c.SetButton(ButtonA, false)
	if got := c.Read(); got != 1 {
		t.Errorf("read = %d, want latched 1", got)
	}
}
