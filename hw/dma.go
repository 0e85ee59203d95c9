package hw

import (
	"famicore/emu/log"
)

// DMA performs the OAM (sprite attributes) transfer to the PPU and the DMC
// sample fetches for the APU, stalling the CPU for the stolen cycles.
type DMA struct {
	cpu *CPU
	bus *Bus
	ppu *PPU

	// Extra cycles charged when a DMC fetch lands inside an in-flight
	// OAM transfer. Hardware measurements put it at 1 to 3 cycles.
	collisionPenalty int64

	// Remaining cycles of the OAM transfer window, counted down as the
	// coordinator consumes the stall.
	oamCyclesLeft int64
}

const defaultCollisionPenalty = 2

func NewDMA(cpu *CPU, bus *Bus, ppu *PPU) *DMA {
	return &DMA{
		cpu:              cpu,
		bus:              bus,
		ppu:              ppu,
		collisionPenalty: defaultCollisionPenalty,
	}
}

// SetCollisionPenalty adjusts the DMC/OAM collision overhead (1 to 3 cycles).
func (dma *DMA) SetCollisionPenalty(n int64) {
	dma.collisionPenalty = min(max(n, 1), 3)
}

func (dma *DMA) reset() {
	dma.oamCyclesLeft = 0
}

// WriteOAMDMA starts a sprite DMA transfer: 256 bytes copied from the given
// page into PPU OAM, one byte per two cycles. The transfer takes 513 cycles,
// one more when started on an odd CPU cycle (the extra alignment read).
func (dma *DMA) WriteOAMDMA(page uint8) {
	log.ModBus.DebugZ("start OAM DMA transfer").Hex8("page", page).End()

	cycles := int64(513)
	if dma.cpu.Cycles&0x01 != 0 {
		cycles++
	}

	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		val := dma.bus.Read8(base + i)
		dma.ppu.WriteOAMByte(val)
	}

	dma.cpu.AddStall(cycles)
	dma.oamCyclesLeft = cycles
}

// tick consumes one CPU cycle of the OAM transfer window.
func (dma *DMA) tick() {
	if dma.oamCyclesLeft > 0 {
		dma.oamCyclesLeft--
	}
}

// runDMCFetch reads one sample byte for the DMC channel. The fetch steals up
// to 4 cycles, or only the collision penalty when it lands inside an OAM
// transfer already holding the bus. The halted CPU keeps repeating its
// current read cycle, so the replay can clock controllers or clear the PPU
// status register again.
func (dma *DMA) runDMCFetch(addr uint16) uint8 {
	if dma.oamCyclesLeft > 0 {
		dma.cpu.AddStall(dma.collisionPenalty)
	} else {
		dma.bus.ReplayLastRead()
		dma.cpu.AddStall(4)
	}
	return dma.bus.Read8(addr)
}
