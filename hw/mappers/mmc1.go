package mappers

import (
	"famicore/emu/log"
	"famicore/hw/snapshot"
	"famicore/ines"
)

// MMC1 configures its banking through a serial port: 5 successive writes
// to $8000-$FFFF shift one bit each into an internal register, the address
// of the fifth write selecting which control register receives the value.
type MMC1 struct {
	cartridge

	// CPU cycle counter, used to ignore the extra writes of
	// double-write instructions. Nil until attached.
	clock     *int64
	prevCycle int64

	serial  shiftReg
	counter uint8 // bits shifted so far

	// CTRL reg bits
	chrMode uint8
	prgMode uint8

	chrBank0 uint8
	chrBank1 uint8

	disableWRAM bool
	prgBank     uint8

	prgOffsets [2]int
	chrOffsets [2]int
}

type shiftReg uint8

func (sr shiftReg) push(val uint8) shiftReg {
	sr >>= 1
	sr |= shiftReg(val << 4 & 0x10)
	return sr
}

func newMMC1(rom *ines.Rom) Mapper {
	m := &MMC1{cartridge: newCartridge(rom)}

	// Power-up state: 16KB PRG mode with the last bank fixed at $C000,
	// needed by the boards that do not wire the PRG banking pins.
	m.prgMode = 3
	m.mirror = ines.MirrorSingleLow
	m.remap()
	return m
}

// AttachClock gives the board access to the CPU cycle counter.
func (m *MMC1) AttachClock(clock *int64) {
	m.clock = clock
}

func (m *MMC1) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		off := int(addr-0x8000) % 0x4000
		return m.prg[m.prgOffsets[(addr-0x8000)/0x4000]+off]
	case addr >= 0x6000:
		if m.disableWRAM {
			return 0
		}
		return m.sram[addr-0x6000]
	default:
		return 0
	}
}

func (m *MMC1) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 && !m.disableWRAM {
			m.sram[addr-0x6000] = val
		}
		return
	}

	// Consecutive-cycle writes are ignored: only the first write of a
	// read-modify-write instruction lands.
	if m.clock != nil {
		cur := *m.clock
		prev := m.prevCycle
		m.prevCycle = cur
		if cur-prev < 2 && val&0x80 == 0 {
			return
		}
	}

	if val&0x80 != 0 {
		// Reset bit: the shift register clears and the PRG mode bits of
		// the control register are set, other bits are unchanged.
		m.serial = 0
		m.counter = 0
		m.prgMode = 3
		m.remap()
		return
	}

	m.serial = m.serial.push(val)
	m.counter++
	if m.counter == 5 {
		m.writeReg(addr, uint8(m.serial))
		m.remap()
		m.serial = 0
		m.counter = 0
	}
}

func (m *MMC1) writeReg(addr uint16, val uint8) {
	switch addr & 0x6000 >> 13 {
	case 0:
		m.writeCtrl(val)
	case 1:
		m.chrBank0 = val & 0x1F
	case 2:
		m.chrBank1 = val & 0x1F
	case 3:
		// [...W PPPP]  W = WRAM disable, P = PRG bank
		m.disableWRAM = val&0x10 != 0
		m.prgBank = val & 0x0F
	}
}

func (m *MMC1) writeCtrl(val uint8) {
	m.chrMode = val & 0x10 >> 4
	m.prgMode = val & 0x0C >> 2

	switch val & 0x03 {
	case 0:
		m.mirror = ines.MirrorSingleLow
	case 1:
		m.mirror = ines.MirrorSingleHigh
	case 2:
		m.mirror = ines.MirrorVertical
	case 3:
		m.mirror = ines.MirrorHorizontal
	}

	log.ModMapper.DebugZ("write CTRL reg").
		Uint8("val", val).
		Uint8("prgmode", m.prgMode).
		Uint8("chrmode", m.chrMode).
		Stringer("mirror", m.mirror).
		End()
}

func (m *MMC1) remap() {
	switch m.prgMode {
	case 0, 1:
		// 32KB mode, low bit of the bank number ignored.
		m.prgOffsets[0] = m.prgBankOffset(int(m.prgBank & 0xFE))
		m.prgOffsets[1] = m.prgBankOffset(int(m.prgBank | 0x01))
	case 2:
		m.prgOffsets[0] = 0
		m.prgOffsets[1] = m.prgBankOffset(int(m.prgBank))
	case 3:
		m.prgOffsets[0] = m.prgBankOffset(int(m.prgBank))
		m.prgOffsets[1] = m.prgBankOffset(-1)
	}

	switch m.chrMode {
	case 0:
		m.chrOffsets[0] = m.chrBankOffset(int(m.chrBank0 & 0xFE))
		m.chrOffsets[1] = m.chrBankOffset(int(m.chrBank0 | 0x01))
	case 1:
		m.chrOffsets[0] = m.chrBankOffset(int(m.chrBank0))
		m.chrOffsets[1] = m.chrBankOffset(int(m.chrBank1))
	}
}

// prgBankOffset resolves a 16KB bank index, negative indexes counting from
// the end, into a byte offset.
func (m *MMC1) prgBankOffset(index int) int {
	index %= len(m.prg) / 0x4000
	if index < 0 {
		index += len(m.prg) / 0x4000
	}
	return index * 0x4000
}

func (m *MMC1) chrBankOffset(index int) int {
	index %= len(m.chr) / 0x1000
	return index * 0x1000
}

func (m *MMC1) ReadCHR(addr uint16) uint8 {
	return m.chr[m.chrOffsets[addr/0x1000]+int(addr%0x1000)]
}

func (m *MMC1) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[m.chrOffsets[addr/0x1000]+int(addr%0x1000)] = val
	}
}

func (m *MMC1) SaveState(w *snapshot.Writer) {
	m.cartridge.saveState(w)
	w.I64(m.prevCycle)
	w.U8(uint8(m.serial))
	w.U8(m.counter)
	w.U8(m.chrMode)
	w.U8(m.prgMode)
	w.U8(m.chrBank0)
	w.U8(m.chrBank1)
	w.Bool(m.disableWRAM)
	w.U8(m.prgBank)
}

func (m *MMC1) LoadState(r *snapshot.Reader) {
	m.cartridge.loadState(r)
	m.prevCycle = r.I64()
	m.serial = shiftReg(r.U8())
	m.counter = r.U8()
	m.chrMode = r.U8()
	m.prgMode = r.U8()
	m.chrBank0 = r.U8()
	m.chrBank1 = r.U8()
	m.disableWRAM = r.Bool()
	m.prgBank = r.U8()
	m.remap()
}
