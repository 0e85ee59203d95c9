package hw

import "famicore/hw/snapshot"

// Per-component state streams for save states. Each component packs its
// whole mutable state; layout changes are caught by the snapshot version.

func (c *CPU) saveState(w *snapshot.Writer) {
	w.U8(c.A)
	w.U8(c.X)
	w.U8(c.Y)
	w.U8(c.SP)
	w.U16(c.PC)
	w.U8(uint8(c.P))
	w.I64(c.Cycles)
	w.I32(int32(c.extraCycles))
	w.Bool(c.needNmi)
	w.U8(uint8(c.irqFlag))
	w.I64(c.stall)
	w.Bool(c.halted)
}

func (c *CPU) loadState(r *snapshot.Reader) {
	c.A = r.U8()
	c.X = r.U8()
	c.Y = r.U8()
	c.SP = r.U8()
	c.PC = r.U16()
	c.P = P(r.U8())
	c.Cycles = r.I64()
	c.extraCycles = int(r.I32())
	c.needNmi = r.Bool()
	c.irqFlag = irqSource(r.U8())
	c.stall = r.I64()
	c.halted = r.Bool()
}

func (b *Bus) saveState(w *snapshot.Writer) {
	w.Bytes(b.RAM[:])
	w.U8(b.openbus.value)
	for _, d := range b.openbus.decayAt {
		w.I64(d)
	}
	w.U16(b.lastReadAddr)
}

func (b *Bus) loadState(r *snapshot.Reader) {
	r.Bytes(b.RAM[:])
	b.openbus.value = r.U8()
	for i := range b.openbus.decayAt {
		b.openbus.decayAt[i] = r.I64()
	}
	b.lastReadAddr = r.U16()
}

func (dma *DMA) saveState(w *snapshot.Writer) {
	w.I64(dma.oamCyclesLeft)
}

func (dma *DMA) loadState(r *snapshot.Reader) {
	dma.oamCyclesLeft = r.I64()
}

// Controller state excludes the live button bits, which belong to the
// host input, not to the console.
func (c *Controller) saveState(w *snapshot.Writer) {
	w.U8(c.latched)
	w.U8(c.index)
	w.Bool(c.strobe)
}

func (c *Controller) loadState(r *snapshot.Reader) {
	c.latched = r.U8()
	c.index = r.U8()
	c.strobe = r.Bool()
}

func (p *PPU) saveState(w *snapshot.Writer) {
	w.I32(int32(p.Cycle))
	w.I32(int32(p.Scanline))
	w.U64(p.Frame)
	w.U64(p.dots)

	w.U16(p.v)
	w.U16(p.t)
	w.U8(p.x)
	w.Bool(p.w)
	w.U8(p.f)

	w.Bytes(p.nametableData[:])
	w.Bytes(p.paletteData[:])
	w.Bytes(p.OAM[:])
	w.Bytes(p.secondaryOAM[:])

	w.Bool(p.addrIncrement32)
	w.U16(p.spriteTable)
	w.U16(p.bgTable)
	w.Bool(p.spriteSize16)
	w.Bool(p.nmiOutput)

	w.Bool(p.grayscale)
	w.Bool(p.showLeftBg)
	w.Bool(p.showLeftSprites)
	w.Bool(p.showBg)
	w.Bool(p.showSprites)
	w.U8(p.emphasis)

	w.Bool(p.spriteZeroHit)
	w.Bool(p.spriteOverflow)
	w.Bool(p.nmiOccurred)

	w.U8(p.oamAddr)
	w.U8(p.bufferedData)
	w.Bool(p.nmiPrevious)
	w.U8(p.nmiDelay)

	w.U8(p.nameTableByte)
	w.U8(p.attributeByte)
	w.U8(p.lowTileByte)
	w.U8(p.highTileByte)
	w.U64(p.tileData)

	w.U8(uint8(p.spriteCount))
	for i := range p.spritePatterns {
		w.U32(p.spritePatterns[i])
		w.U8(p.spritePositions[i])
		w.U8(p.spritePriorities[i])
		w.U8(p.spriteIndexes[i])
	}

	w.U8(p.ioLatch)
	for _, d := range p.ioDecayAt {
		w.U64(d)
	}
}

func (p *PPU) loadState(r *snapshot.Reader) {
	p.Cycle = int(r.I32())
	p.Scanline = int(r.I32())
	p.Frame = r.U64()
	p.dots = r.U64()

	p.v = r.U16()
	p.t = r.U16()
	p.x = r.U8()
	p.w = r.Bool()
	p.f = r.U8()

	r.Bytes(p.nametableData[:])
	r.Bytes(p.paletteData[:])
	r.Bytes(p.OAM[:])
	r.Bytes(p.secondaryOAM[:])

	p.addrIncrement32 = r.Bool()
	p.spriteTable = r.U16()
	p.bgTable = r.U16()
	p.spriteSize16 = r.Bool()
	p.nmiOutput = r.Bool()

	p.grayscale = r.Bool()
	p.showLeftBg = r.Bool()
	p.showLeftSprites = r.Bool()
	p.showBg = r.Bool()
	p.showSprites = r.Bool()
	p.emphasis = r.U8()

	p.spriteZeroHit = r.Bool()
	p.spriteOverflow = r.Bool()
	p.nmiOccurred = r.Bool()

	p.oamAddr = r.U8()
	p.bufferedData = r.U8()
	p.nmiPrevious = r.Bool()
	p.nmiDelay = r.U8()

	p.nameTableByte = r.U8()
	p.attributeByte = r.U8()
	p.lowTileByte = r.U8()
	p.highTileByte = r.U8()
	p.tileData = r.U64()

	p.spriteCount = int(r.U8())
	for i := range p.spritePatterns {
		p.spritePatterns[i] = r.U32()
		p.spritePositions[i] = r.U8()
		p.spritePriorities[i] = r.U8()
		p.spriteIndexes[i] = r.U8()
	}

	p.ioLatch = r.U8()
	for i := range p.ioDecayAt {
		p.ioDecayAt[i] = r.U64()
	}
}
