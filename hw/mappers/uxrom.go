package mappers

import (
	"famicore/hw/snapshot"
	"famicore/ines"
)

// UxROM switches a 16KB PRG bank at $8000 while the last bank stays fixed
// at $C000. CHR is an unbanked 8KB, RAM on most boards.
type UxROM struct {
	cartridge

	bank     int
	lastBank int
}

func newUxROM(rom *ines.Rom) Mapper {
	m := &UxROM{cartridge: newCartridge(rom)}
	m.lastBank = (len(m.prg) - 0x4000) / 0x4000
	return m
}

func (m *UxROM) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0xC000:
		return m.prg[m.lastBank*0x4000+int(addr-0xC000)]
	case addr >= 0x8000:
		return m.prg[m.bank*0x4000+int(addr-0x8000)]
	case addr >= 0x6000:
		return m.sram[addr-0x6000]
	default:
		return 0
	}
}

func (m *UxROM) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 {
			m.sram[addr-0x6000] = val
		}
		return
	}

	// The board has no bus conflict protection: the written value is
	// ANDed with the ROM byte at that address.
	val &= m.ReadPRG(addr)
	m.bank = int(val) % (len(m.prg) / 0x4000)
}

func (m *UxROM) ReadCHR(addr uint16) uint8 {
	return m.chr[addr]
}

func (m *UxROM) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[addr] = val
	}
}

func (m *UxROM) SaveState(w *snapshot.Writer) {
	m.cartridge.saveState(w)
	w.U8(uint8(m.bank))
}

func (m *UxROM) LoadState(r *snapshot.Reader) {
	m.cartridge.loadState(r)
	m.bank = int(r.U8())
}
