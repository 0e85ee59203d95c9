package hw

import "testing"

func TestFrameCounterIRQ(t *testing.T) {
	nes := newTestNES(t, nil)
	a := nes.APU

	// Power-up defaults: 4-step sequence, interrupt enabled. The frame
	// interrupt flag goes up at the end of the sequence.
	for i := 0; i < 29840; i++ {
		a.Tick()
	}
	if st := a.PeekStatus(); st&0x40 == 0 {
		t.Fatalf("$4015 = %#02x, frame interrupt flag should be set", st)
	}

	// Reading $4015 acknowledges it.
	if st := a.ReadStatus(); st&0x40 == 0 {
		t.Errorf("$4015 = %#02x, read should still report the flag", st)
	}
	if st := a.PeekStatus(); st&0x40 != 0 {
		t.Errorf("$4015 = %#02x, flag should be clear after the read", st)
	}
}

func TestFrameCounterInhibit(t *testing.T) {
	nes := newTestNES(t, nil)
	a := nes.APU

	a.WriteReg(0x4017, 0x40) // inhibit
	for i := 0; i < 40000; i++ {
		a.Tick()
	}
	if st := a.PeekStatus(); st&0x40 != 0 {
		t.Errorf("$4015 = %#02x, interrupt should be inhibited", st)
	}
}

func TestFrameCounterFiveStepNoIRQ(t *testing.T) {
	nes := newTestNES(t, nil)
	a := nes.APU

	a.WriteReg(0x4017, 0x80) // 5-step mode, interrupt still enabled
	for i := 0; i < 80000; i++ {
		a.Tick()
	}
	if st := a.PeekStatus(); st&0x40 != 0 {
		t.Errorf("$4015 = %#02x, 5-step mode never raises the interrupt", st)
	}
}

func TestFrameCounterInhibitAcksPending(t *testing.T) {
	nes := newTestNES(t, nil)
	a := nes.APU

	for i := 0; i < 29840; i++ {
		a.Tick()
	}
	if st := a.PeekStatus(); st&0x40 == 0 {
		t.Fatal("frame interrupt flag should be set")
	}

	// Setting the inhibit bit clears a pending flag at once.
	a.WriteReg(0x4017, 0x40)
	if st := a.PeekStatus(); st&0x40 != 0 {
		t.Error("inhibit write should clear the pending flag")
	}
}

func TestStatusLengthBits(t *testing.T) {
	nes := newTestNES(t, nil)
	a := nes.APU

	if st := a.PeekStatus(); st&0x0F != 0 {
		t.Fatalf("$4015 = %#02x, all length counters should be clear", st)
	}

	a.WriteReg(0x4015, 0x01) // enable square 1
	a.WriteReg(0x4003, 0x08) // length counter load
	if st := a.PeekStatus(); st&0x01 == 0 {
		t.Errorf("$4015 = %#02x, square 1 should report active", st)
	}

	// Length writes while the channel is disabled are ignored.
	a.WriteReg(0x4015, 0x02)
	a.WriteReg(0x4003, 0x08)
	if st := a.PeekStatus(); st&0x01 != 0 {
		t.Errorf("$4015 = %#02x, square 1 length should have been cleared", st)
	}

	a.WriteReg(0x4007, 0x08)
	if st := a.PeekStatus(); st&0x02 == 0 {
		t.Errorf("$4015 = %#02x, square 2 should report active", st)
	}
}

func TestDMCSampleActivity(t *testing.T) {
	nes := newTestNES(t, nil)
	a := nes.APU

	a.WriteReg(0x4012, 0x00) // sample at $C000
	a.WriteReg(0x4013, 0x01) // 17 bytes
	a.WriteReg(0x4015, 0x10)
	if st := a.PeekStatus(); st&0x10 == 0 {
		t.Errorf("$4015 = %#02x, DMC should have bytes remaining", st)
	}

	a.WriteReg(0x4015, 0x00)
	if st := a.PeekStatus(); st&0x10 != 0 {
		t.Errorf("$4015 = %#02x, disabling should stop the sample", st)
	}
}

func TestDMCFetchStallsCPU(t *testing.T) {
	nes := newTestNES(t, nil)
	a := nes.APU

	nes.CPU.stall = 0 // discard any pending stall
	a.WriteReg(0x4012, 0x00)
	a.WriteReg(0x4013, 0x01)
	a.WriteReg(0x4015, 0x10) // first byte fetched here

	if nes.CPU.stall != 4 {
		t.Errorf("stall = %d cycles after DMC fetch, want 4", nes.CPU.stall)
	}
}
