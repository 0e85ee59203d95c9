package hw

import "testing"

func TestRAMMirroring(t *testing.T) {
	nes := newTestNES(t, nil)
	bus := nes.Bus

	bus.Write8(0x0000, 0xAB)
	for _, addr := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := bus.Read8(addr); got != 0xAB {
			t.Errorf("Read8(%#04x) = %#02x, want 0xAB", addr, got)
		}
	}

	// Writing through a mirror updates the backing cell.
	bus.Write8(0x1FFF, 0x5C)
	if got := bus.Read8(0x07FF); got != 0x5C {
		t.Errorf("Read8(0x07FF) = %#02x, want 0x5C", got)
	}
}

func TestOpenBusRead(t *testing.T) {
	nes := newTestNES(t, nil)
	bus := nes.Bus

	// $4018-$401F is unmapped: reads return the last driven value.
	bus.Write8(0x0000, 0xD7)
	if got := bus.Read8(0x4018); got != 0xD7 {
		t.Errorf("open bus read = %#02x, want 0xD7", got)
	}

	// A later driven read refreshes the retained value.
	bus.Write8(0x0001, 0x3E)
	bus.Read8(0x0001)
	if got := bus.Read8(0x401F); got != 0x3E {
		t.Errorf("open bus read = %#02x, want 0x3E", got)
	}
}

func TestOpenBusDecay(t *testing.T) {
	nes := newTestNES(t, nil)
	bus := nes.Bus

	bus.Write8(0x0000, 0xFF)
	if got := bus.Read8(0x4018); got != 0xFF {
		t.Fatalf("open bus read = %#02x, want 0xFF", got)
	}

	// Once the decay window has elapsed, undriven bits fall to 0.
	nes.CPU.Cycles += openBusDecayCycles + 1
	if got := bus.Read8(0x4018); got != 0x00 {
		t.Errorf("decayed open bus read = %#02x, want 0x00", got)
	}
}

func TestControllerPortOpenBus(t *testing.T) {
	nes := newTestNES(t, nil)
	bus := nes.Bus

	// Only the low 5 bits of $4016 are driven by the port, the rest
	// retains the open bus value. $4016 reads commonly return $40/$41
	// because the last driven value is the address high byte.
	nes.Controller1.SetButtons(1 << ButtonA)
	bus.Write8(0x4016, 1)
	bus.Write8(0x4016, 0)
	bus.Write8(0x0002, 0x40)
	bus.Read8(0x0002) // drive 0x40 onto the bus

	if got := bus.Read8(0x4016); got != 0x41 {
		t.Errorf("Read8(0x4016) = %#02x, want 0x41", got)
	}
}

func TestAPUStatusOpenBusBit(t *testing.T) {
	nes := newTestNES(t, nil)
	bus := nes.Bus

	// Bit 5 of $4015 is open bus.
	bus.Write8(0x0003, 0x20)
	if got := bus.Read8(0x4015) & 0x20; got != 0x20 {
		t.Errorf("$4015 bit 5 = %#02x, want open bus bit set", got)
	}
}
