package mappers

import (
	"famicore/hw/snapshot"
	"famicore/ines"
)

// NROM has no banking hardware at all: up to 32KB of PRG ROM (16KB images
// are mirrored) and a fixed 8KB of CHR.
type NROM struct {
	cartridge

	prgMask uint16
}

func newNROM(rom *ines.Rom) Mapper {
	m := &NROM{cartridge: newCartridge(rom)}
	m.prgMask = 0x7FFF
	if len(m.prg) <= 0x4000 {
		m.prgMask = 0x3FFF
	}
	return m
}

func (m *NROM) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.prg[addr&m.prgMask]
	case addr >= 0x6000:
		return m.sram[addr-0x6000]
	default:
		return 0
	}
}

func (m *NROM) WritePRG(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.sram[addr-0x6000] = val
	}
}

func (m *NROM) ReadCHR(addr uint16) uint8 {
	return m.chr[addr]
}

func (m *NROM) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[addr] = val
	}
}

func (m *NROM) SaveState(w *snapshot.Writer) {
	m.cartridge.saveState(w)
}

func (m *NROM) LoadState(r *snapshot.Reader) {
	m.cartridge.loadState(r)
}
