package mappers

import (
	"famicore/hw/snapshot"
	"famicore/ines"
)

// GxROM switches both the 32KB PRG window and the 8KB CHR window from a
// single register.
type GxROM struct {
	cartridge

	prgBank int
	chrBank int
}

func newGxROM(rom *ines.Rom) Mapper {
	return &GxROM{cartridge: newCartridge(rom)}
}

func (m *GxROM) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.prg[m.prgBank*0x8000+int(addr-0x8000)]
	case addr >= 0x6000:
		return m.sram[addr-0x6000]
	default:
		return 0
	}
}

func (m *GxROM) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 {
			m.sram[addr-0x6000] = val
		}
		return
	}

	m.prgBank = int(val>>4&0x03) % (len(m.prg) / 0x8000)
	m.chrBank = int(val&0x03) % (len(m.chr) / 0x2000)
}

func (m *GxROM) ReadCHR(addr uint16) uint8 {
	return m.chr[m.chrBank*0x2000+int(addr)]
}

func (m *GxROM) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[m.chrBank*0x2000+int(addr)] = val
	}
}

func (m *GxROM) SaveState(w *snapshot.Writer) {
	m.cartridge.saveState(w)
	w.U8(uint8(m.prgBank))
	w.U8(uint8(m.chrBank))
}

func (m *GxROM) LoadState(r *snapshot.Reader) {
	m.cartridge.loadState(r)
	m.prgBank = int(r.U8())
	m.chrBank = int(r.U8())
}
