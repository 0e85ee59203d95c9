package hw

import (
	"famicore/hw/mappers"
)

// Open bus retention: an undriven bit keeps its last driven value for
// roughly 600ms before decaying to 0.
const openBusDecayCycles = int64(1073864)

// openBus models the retained value of the 8-bit data bus. Every driven
// access refreshes all bits; bits not refreshed decay to 0 individually.
type openBus struct {
	value   uint8
	decayAt [8]int64
}

func (o *openBus) refresh(val uint8, now int64) {
	o.value = val
	for i := range o.decayAt {
		o.decayAt[i] = now + openBusDecayCycles
	}
}

// refreshBits refreshes only the bits selected by mask, leaving the decay
// timers of the other bits running.
func (o *openBus) refreshBits(val, mask uint8, now int64) {
	o.value = o.value&^mask | val&mask
	for i := range o.decayAt {
		if mask&(1<<i) != 0 {
			o.decayAt[i] = now + openBusDecayCycles
		}
	}
}

func (o *openBus) read(now int64) uint8 {
	for i := range o.decayAt {
		if now >= o.decayAt[i] {
			o.value &^= 1 << i
		}
	}
	return o.value
}

// Bus decodes the CPU address space: internal RAM (mirrored 4 times), the
// PPU register window, APU/IO registers, controller ports and cartridge
// space. Reads of unmapped or write-only locations return the open bus.
type Bus struct {
	RAM [0x800]uint8

	ppu    *PPU
	apu    *APU
	dma    *DMA
	ctrl   [2]*Controller
	mapper mappers.Mapper

	openbus openBus

	// clock follows the CPU cycle counter, for open bus decay.
	clock *int64

	// Address of the last read performed, replayed by DMA halt cycles.
	lastReadAddr uint16
}

func NewBus() *Bus {
	var zero int64
	return &Bus{clock: &zero}
}

func (b *Bus) AttachCPU(cpu *CPU)            { b.clock = &cpu.Cycles }
func (b *Bus) AttachPPU(ppu *PPU)            { b.ppu = ppu }
func (b *Bus) AttachAPU(apu *APU)            { b.apu = apu }
func (b *Bus) AttachDMA(dma *DMA)            { b.dma = dma }
func (b *Bus) AttachMapper(m mappers.Mapper) { b.mapper = m }

func (b *Bus) AttachControllers(c1, c2 *Controller) {
	b.ctrl[0] = c1
	b.ctrl[1] = c2
}

func (b *Bus) now() int64 { return *b.clock }

func (b *Bus) Read8(addr uint16) uint8 {
	b.lastReadAddr = addr

	var val uint8
	switch {
	case addr < 0x2000:
		val = b.RAM[addr&0x07FF]
	case addr < 0x4000:
		val = b.ppu.ReadReg(0x2000 | addr&0x0007)
	case addr == 0x4015:
		// Bit 5 is open bus on the APU status port.
		val = b.apu.ReadStatus() | b.openbus.read(b.now())&0x20
	case addr == 0x4016 || addr == 0x4017:
		// Serial data in the low bits, open bus on the unconnected pins.
		data := b.ctrl[addr-0x4016].Read()
		val = data&0x1F | b.openbus.read(b.now())&0xE0
		b.openbus.refreshBits(data, 0x1F, b.now())
		return val
	case addr >= 0x4020:
		val = b.mapper.ReadPRG(addr)
	default:
		// $4000-$4014 are write-only, $4018-$401F is unmapped test space.
		return b.openbus.read(b.now())
	}

	b.openbus.refresh(val, b.now())
	return val
}

// Peek8 reads without side effects, for tracing and debugging.
func (b *Bus) Peek8(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM[addr&0x07FF]
	case addr < 0x4000:
		return b.ppu.PeekReg(0x2000 | addr&0x0007)
	case addr >= 0x4020:
		return b.mapper.ReadPRG(addr)
	}
	return b.openbus.value
}

func (b *Bus) Write8(addr uint16, val uint8) {
	b.openbus.refresh(val, b.now())

	switch {
	case addr < 0x2000:
		b.RAM[addr&0x07FF] = val
	case addr < 0x4000:
		b.ppu.WriteReg(0x2000|addr&0x0007, val)
	case addr == 0x4014:
		b.dma.WriteOAMDMA(val)
	case addr == 0x4016:
		b.ctrl[0].WriteStrobe(val)
		b.ctrl[1].WriteStrobe(val)
	case addr < 0x4018:
		b.apu.WriteReg(addr, val)
	case addr >= 0x4020:
		b.mapper.WritePRG(addr, val)
	}
}

// ReplayLastRead re-issues the most recent read. A CPU halted for DMA keeps
// performing its current read cycle, so side-effecting registers ($2002,
// $4016) trigger again.
func (b *Bus) ReplayLastRead() {
	b.Read8(b.lastReadAddr)
}
