package mappers

import (
	"famicore/hw/snapshot"
	"famicore/ines"
)

// CNROM keeps PRG fixed like NROM and switches an 8KB CHR ROM bank.
type CNROM struct {
	cartridge

	prgMask uint16
	bank    int
}

func newCNROM(rom *ines.Rom) Mapper {
	m := &CNROM{cartridge: newCartridge(rom)}
	m.prgMask = 0x7FFF
	if len(m.prg) <= 0x4000 {
		m.prgMask = 0x3FFF
	}
	return m
}

func (m *CNROM) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.prg[addr&m.prgMask]
	case addr >= 0x6000:
		return m.sram[addr-0x6000]
	default:
		return 0
	}
}

func (m *CNROM) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 {
			m.sram[addr-0x6000] = val
		}
		return
	}

	// Bus conflicts: the written value is ANDed with the ROM byte.
	val &= m.ReadPRG(addr)
	m.bank = int(val&0x03) % (len(m.chr) / 0x2000)
}

func (m *CNROM) ReadCHR(addr uint16) uint8 {
	return m.chr[m.bank*0x2000+int(addr)]
}

func (m *CNROM) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[m.bank*0x2000+int(addr)] = val
	}
}

func (m *CNROM) SaveState(w *snapshot.Writer) {
	m.cartridge.saveState(w)
	w.U8(uint8(m.bank))
}

func (m *CNROM) LoadState(r *snapshot.Reader) {
	m.cartridge.loadState(r)
	m.bank = int(r.U8())
}
