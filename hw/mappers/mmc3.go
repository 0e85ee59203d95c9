package mappers

import (
	"famicore/emu/log"
	"famicore/hw/snapshot"
	"famicore/ines"
)

// MMC3 banks PRG in 8KB and CHR in 1KB units, and derives a scanline
// counter from the rises of the PPU A12 address line, raising an IRQ when
// the counter hits zero.
type MMC3 struct {
	cartridge

	register uint8
	banks    [8]uint8
	prgMode  uint8
	chrMode  uint8

	ramEnable  bool
	ramProtect bool

	reload     uint8
	counter    uint8
	irqEnable  bool
	irqPending bool

	lastA12 bool

	prgOffsets [4]int
	chrOffsets [8]int
}

func newMMC3(rom *ines.Rom) Mapper {
	m := &MMC3{cartridge: newCartridge(rom), ramEnable: true}
	m.prgOffsets[0] = m.prgBankOffset(0)
	m.prgOffsets[1] = m.prgBankOffset(1)
	m.prgOffsets[2] = m.prgBankOffset(-2)
	m.prgOffsets[3] = m.prgBankOffset(-1)
	return m
}

func (m *MMC3) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		off := int(addr-0x8000) % 0x2000
		return m.prg[m.prgOffsets[(addr-0x8000)/0x2000]+off]
	case addr >= 0x6000:
		if !m.ramEnable {
			return 0
		}
		return m.sram[addr-0x6000]
	default:
		return 0
	}
}

func (m *MMC3) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 && m.ramEnable && !m.ramProtect {
			m.sram[addr-0x6000] = val
		}
		return
	}

	even := addr&0x01 == 0
	switch {
	case addr < 0xA000:
		if even { // $8000: bank select
			m.register = val & 0x07
			m.prgMode = val >> 6 & 0x01
			m.chrMode = val >> 7 & 0x01
		} else { // $8001: bank data
			m.banks[m.register] = val
		}
		m.remap()
	case addr < 0xC000:
		if even { // $A000: mirroring
			if val&0x01 != 0 {
				m.mirror = ines.MirrorHorizontal
			} else {
				m.mirror = ines.MirrorVertical
			}
		} else { // $A001: PRG RAM enable and write protect
			m.ramEnable = val&0x80 != 0
			m.ramProtect = val&0x40 != 0
		}
	case addr < 0xE000:
		if even { // $C000: IRQ latch
			m.reload = val
		} else { // $C001: IRQ reload
			m.counter = 0
		}
	default:
		if even { // $E000: IRQ disable and acknowledge
			m.irqEnable = false
			m.irqPending = false
		} else { // $E001: IRQ enable
			m.irqEnable = true
		}
	}
}

func (m *MMC3) remap() {
	switch m.prgMode {
	case 0:
		m.prgOffsets[0] = m.prgBankOffset(int(m.banks[6]))
		m.prgOffsets[1] = m.prgBankOffset(int(m.banks[7]))
		m.prgOffsets[2] = m.prgBankOffset(-2)
		m.prgOffsets[3] = m.prgBankOffset(-1)
	case 1:
		m.prgOffsets[0] = m.prgBankOffset(-2)
		m.prgOffsets[1] = m.prgBankOffset(int(m.banks[7]))
		m.prgOffsets[2] = m.prgBankOffset(int(m.banks[6]))
		m.prgOffsets[3] = m.prgBankOffset(-1)
	}

	switch m.chrMode {
	case 0:
		m.chrOffsets[0] = m.chrBankOffset(int(m.banks[0] & 0xFE))
		m.chrOffsets[1] = m.chrBankOffset(int(m.banks[0] | 0x01))
		m.chrOffsets[2] = m.chrBankOffset(int(m.banks[1] & 0xFE))
		m.chrOffsets[3] = m.chrBankOffset(int(m.banks[1] | 0x01))
		m.chrOffsets[4] = m.chrBankOffset(int(m.banks[2]))
		m.chrOffsets[5] = m.chrBankOffset(int(m.banks[3]))
		m.chrOffsets[6] = m.chrBankOffset(int(m.banks[4]))
		m.chrOffsets[7] = m.chrBankOffset(int(m.banks[5]))
	case 1:
		m.chrOffsets[0] = m.chrBankOffset(int(m.banks[2]))
		m.chrOffsets[1] = m.chrBankOffset(int(m.banks[3]))
		m.chrOffsets[2] = m.chrBankOffset(int(m.banks[4]))
		m.chrOffsets[3] = m.chrBankOffset(int(m.banks[5]))
		m.chrOffsets[4] = m.chrBankOffset(int(m.banks[0] & 0xFE))
		m.chrOffsets[5] = m.chrBankOffset(int(m.banks[0] | 0x01))
		m.chrOffsets[6] = m.chrBankOffset(int(m.banks[1] & 0xFE))
		m.chrOffsets[7] = m.chrBankOffset(int(m.banks[1] | 0x01))
	}
}

// prgBankOffset resolves an 8KB bank index, negative indexes counting from
// the end, into a byte offset.
func (m *MMC3) prgBankOffset(index int) int {
	if index >= 0x80 {
		index -= 0x100
	}
	index %= len(m.prg) / 0x2000
	if index < 0 {
		index += len(m.prg) / 0x2000
	}
	return index * 0x2000
}

func (m *MMC3) chrBankOffset(index int) int {
	index %= len(m.chr) / 0x0400
	return index * 0x0400
}

func (m *MMC3) ReadCHR(addr uint16) uint8 {
	return m.chr[m.chrOffsets[addr/0x0400]+int(addr%0x0400)]
}

func (m *MMC3) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[m.chrOffsets[addr/0x0400]+int(addr%0x0400)] = val
	}
}

// OnPPUAddress clocks the scanline counter on each rise of the A12 line.
// With the usual pattern table split between background and sprites, A12
// rises once per rendered scanline.
func (m *MMC3) OnPPUAddress(addr uint16) {
	a12 := addr&0x1000 != 0
	if a12 && !m.lastA12 {
		m.clockIRQCounter()
	}
	m.lastA12 = a12
}

func (m *MMC3) clockIRQCounter() {
	if m.counter == 0 {
		m.counter = m.reload
	} else {
		m.counter--
		if m.counter == 0 && m.irqEnable {
			m.irqPending = true
			log.ModMapper.DebugZ("scanline counter expired, IRQ raised").End()
		}
	}
}

func (m *MMC3) PendingIRQ() bool {
	return m.irqPending
}

func (m *MMC3) SaveState(w *snapshot.Writer) {
	m.cartridge.saveState(w)
	w.U8(m.register)
	for _, b := range m.banks {
		w.U8(b)
	}
	w.U8(m.prgMode)
	w.U8(m.chrMode)
	w.U8(m.reload)
	w.U8(m.counter)
	w.Bool(m.irqEnable)
	w.Bool(m.irqPending)
	w.Bool(m.lastA12)
	w.Bool(m.ramEnable)
	w.Bool(m.ramProtect)
}

func (m *MMC3) LoadState(r *snapshot.Reader) {
	m.cartridge.loadState(r)
	m.register = r.U8()
	for i := range m.banks {
		m.banks[i] = r.U8()
	}
	m.prgMode = r.U8()
	m.chrMode = r.U8()
	m.reload = r.U8()
	m.counter = r.U8()
	m.irqEnable = r.Bool()
	m.irqPending = r.Bool()
	m.lastA12 = r.Bool()
	m.ramEnable = r.Bool()
	m.ramProtect = r.Bool()
	m.remap()
}
