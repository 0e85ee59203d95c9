package hw

import "testing"

func TestVBlankFlag(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	// After reset the PPU sits at the end of the post-render line. Two
	// dots later the vblank flag goes up (scanline 241, dot 1).
	ppu.Tick()
	ppu.Tick()
	if ppu.Scanline != 241 || ppu.Cycle != 1 {
		t.Fatalf("at scanline %d dot %d, want 241/1", ppu.Scanline, ppu.Cycle)
	}

	if got := ppu.ReadReg(0x2002); got&0x80 == 0 {
		t.Errorf("$2002 = %#02x, vblank bit should be set", got)
	}
	// Reading $2002 clears the flag.
	if got := ppu.ReadReg(0x2002); got&0x80 != 0 {
		t.Errorf("$2002 = %#02x, vblank bit should be clear after read", got)
	}
}

func TestVBlankClearedOnPrerender(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	// Into vblank.
	ppu.Tick()
	ppu.Tick()
	if got := ppu.PeekReg(0x2002); got&0x80 == 0 {
		t.Fatal("vblank bit should be set")
	}

	// Run to the pre-render line, dot 1: the flag drops without a read.
	for !(ppu.Scanline == 261 && ppu.Cycle == 1) {
		ppu.Tick()
	}
	if got := ppu.PeekReg(0x2002); got&0x80 != 0 {
		t.Errorf("$2002 = %#02x, vblank bit should be clear on pre-render", got)
	}
}

func TestFrameLength(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	// With rendering disabled every frame is exactly 341*262 dots.
	for ppu.Frame == 0 {
		ppu.Tick()
	}
	dots := 0
	for ppu.Frame == 1 {
		ppu.Tick()
		dots++
	}
	if want := NumCycles * NumScanlines; dots != want {
		t.Errorf("frame took %d dots, want %d", dots, want)
	}
}

func TestScrollRegisters(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	// The classic $2000/$2005/$2005/$2006/$2006 write sequence, checked
	// against the internal t/v/x/w state it must produce.
	ppu.WriteReg(0x2000, 0x03)
	if got := ppu.t >> 10 & 0x03; got != 0x03 {
		t.Errorf("t nametable = %#02x, want 0x03", got)
	}

	_ = ppu.ReadReg(0x2002) // reset the write toggle

	ppu.WriteReg(0x2005, 0x7D) // coarse X = 15, fine x = 5
	if got := ppu.t & 0x1F; got != 15 {
		t.Errorf("t coarse X = %d, want 15", got)
	}
	if ppu.x != 5 {
		t.Errorf("fine x = %d, want 5", ppu.x)
	}
	if !ppu.w {
		t.Error("write toggle should be set after first $2005 write")
	}

	ppu.WriteReg(0x2005, 0x5E) // coarse Y = 11, fine y = 6
	if got := ppu.t >> 5 & 0x1F; got != 11 {
		t.Errorf("t coarse Y = %d, want 11", got)
	}
	if got := ppu.t >> 12 & 0x07; got != 6 {
		t.Errorf("t fine Y = %d, want 6", got)
	}
	if ppu.w {
		t.Error("write toggle should be clear after second $2005 write")
	}

	// $2006 writes replace t and copy it into v on the second one.
	ppu.WriteReg(0x2006, 0x3D)
	ppu.WriteReg(0x2006, 0xF0)
	if ppu.v != 0x3DF0 {
		t.Errorf("v = %#04x, want 0x3DF0", ppu.v)
	}
}

func TestVRAMReadBuffer(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	// Write two bytes at $2400.
	ppu.WriteReg(0x2006, 0x24)
	ppu.WriteReg(0x2006, 0x00)
	ppu.WriteReg(0x2007, 0x11)
	ppu.WriteReg(0x2007, 0x22)

	// Point back and read: the first read returns the stale buffer.
	ppu.WriteReg(0x2006, 0x24)
	ppu.WriteReg(0x2006, 0x00)
	_ = ppu.ReadReg(0x2007) // stale
	if got := ppu.ReadReg(0x2007); got != 0x11 {
		t.Errorf("buffered read = %#02x, want 0x11", got)
	}
	if got := ppu.ReadReg(0x2007); got != 0x22 {
		t.Errorf("buffered read = %#02x, want 0x22", got)
	}
}

func TestAddressIncrement32(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	ppu.WriteReg(0x2000, 0x04) // +32 per $2007 access
	ppu.WriteReg(0x2006, 0x20)
	ppu.WriteReg(0x2006, 0x00)
	ppu.WriteReg(0x2007, 0xAA)
	ppu.WriteReg(0x2007, 0xBB)

	ppu.WriteReg(0x2000, 0x00) // back to +1
	ppu.WriteReg(0x2006, 0x20)
	ppu.WriteReg(0x2006, 0x20)
	_ = ppu.ReadReg(0x2007)
	if got := ppu.ReadReg(0x2007); got != 0xBB {
		t.Errorf("read at $2020 = %#02x, want 0xBB", got)
	}
}

func TestPaletteMirroring(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	// $3F10 mirrors $3F00.
	ppu.WriteReg(0x2006, 0x3F)
	ppu.WriteReg(0x2006, 0x10)
	ppu.WriteReg(0x2007, 0x2A)

	ppu.WriteReg(0x2006, 0x3F)
	ppu.WriteReg(0x2006, 0x00)
	if got := ppu.ReadReg(0x2007); got&0x3F != 0x2A {
		t.Errorf("palette read at $3F00 = %#02x, want 0x2A", got)
	}
}

func TestOAMAttributeMask(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	// Byte 2 of each OAM entry has no storage for bits 2-4.
	ppu.WriteReg(0x2003, 0x02)
	ppu.WriteReg(0x2004, 0xFF)
	ppu.WriteReg(0x2003, 0x02)
	if got := ppu.ReadReg(0x2004); got != 0xE3 {
		t.Errorf("OAM attribute read = %#02x, want 0xE3", got)
	}
}

func TestNMIOnVBlank(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	ppu.WriteReg(0x2000, 0x80) // NMI enabled

	// Cross into vblank and let the edge delay elapse.
	for i := 0; i < 20; i++ {
		ppu.Tick()
	}
	if !nes.CPU.needNmi {
		t.Error("NMI should be pending after vblank start")
	}
}

func TestNMISuppressionByStatusRead(t *testing.T) {
	nes := newTestNES(t, nil)
	ppu := nes.PPU

	ppu.WriteReg(0x2000, 0x80)

	// Reading $2002 right as the flag goes up clears it before the
	// delayed NMI fires, suppressing the interrupt.
	ppu.Tick()
	ppu.Tick()
	_ = ppu.ReadReg(0x2002)
	for i := 0; i < 20; i++ {
		ppu.Tick()
	}
	if nes.CPU.needNmi {
		t.Error("NMI should have been suppressed by the $2002 read")
	}
}
