package mappers

import (
	"famicore/hw/snapshot"
	"famicore/ines"
)

// AxROM switches the whole 32KB PRG window and selects which single
// nametable screen is in use. CHR is an unbanked 8KB RAM.
type AxROM struct {
	cartridge

	bank int
}

func newAxROM(rom *ines.Rom) Mapper {
	m := &AxROM{cartridge: newCartridge(rom)}
	m.mirror = ines.MirrorSingleLow
	return m
}

func (m *AxROM) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.prg[m.bank*0x8000+int(addr-0x8000)]
	case addr >= 0x6000:
		return m.sram[addr-0x6000]
	default:
		return 0
	}
}

func (m *AxROM) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 {
			m.sram[addr-0x6000] = val
		}
		return
	}

	m.bank = int(val&0x07) % (len(m.prg) / 0x8000)
	if val&0x10 != 0 {
		m.mirror = ines.MirrorSingleHigh
	} else {
		m.mirror = ines.MirrorSingleLow
	}
}

func (m *AxROM) ReadCHR(addr uint16) uint8 {
	return m.chr[addr]
}

func (m *AxROM) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[addr] = val
	}
}

func (m *AxROM) SaveState(w *snapshot.Writer) {
	m.cartridge.saveState(w)
	w.U8(uint8(m.bank))
}

func (m *AxROM) LoadState(r *snapshot.Reader) {
	m.cartridge.loadState(r)
	m.bank = int(r.U8())
}
