package hw

import (
	"bytes"
	"testing"

	"famicore/ines"
)

// flatBus is a bare 64K memory, enough for CPU-only tests.
type flatBus [0x10000]uint8

func (m *flatBus) Read8(addr uint16) uint8       { return m[addr] }
func (m *flatBus) Write8(addr uint16, val uint8) { m[addr] = val }
func (m *flatBus) Peek8(addr uint16) uint8       { return m[addr] }

// newTestCPU returns a CPU about to execute the given program at $8000,
// backed by flat memory.
func newTestCPU(prog ...uint8) (*CPU, *flatBus) {
	mem := new(flatBus)
	copy(mem[0x8000:], prog)
	cpu := NewCPU(mem)
	cpu.PC = 0x8000
	return cpu, mem
}

// buildNROM assembles a minimal mapper 0 image: one 16K PRG bank (mirrored
// at $C000) and one 8K CHR bank, reset vector pointing at $8000.
func buildNROM(tb testing.TB, init func(prg []byte)) *ines.Rom {
	tb.Helper()

	prg := make([]byte, 0x4000)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	if init != nil {
		init(prg)
	}

	hdr := make([]byte, 16)
	copy(hdr, "NES\x1a")
	hdr[4] = 1 // 16K PRG
	hdr[5] = 1 // 8K CHR

	img := append(hdr, prg...)
	img = append(img, make([]byte, 0x2000)...)

	rom := new(ines.Rom)
	if _, err := rom.ReadFrom(bytes.NewReader(img)); err != nil {
		tb.Fatal(err)
	}
	return rom
}

func newTestNES(tb testing.TB, init func(prg []byte)) *NES {
	tb.Helper()

	nes, err := New(buildNROM(tb, init), nil)
	if err != nil {
		tb.Fatal(err)
	}
	return nes
}
