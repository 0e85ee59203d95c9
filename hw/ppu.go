package hw

import (
	"famicore/emu/log"
	"famicore/hw/mappers"
	"famicore/ines"
)

const (
	NumScanlines = 262 // Number of scanlines per frame.
	NumCycles    = 341 // Number of PPU cycles per scanline.
)

// Visible output dimensions.
const (
	FrameWidth  = 256
	FrameHeight = 240
)

// PPU is the dot-clocked picture generator. One Tick advances one dot; 3
// dots elapse per CPU cycle (NTSC).
type PPU struct {
	cpu    *CPU
	mapper mappers.Mapper

	Cycle    int // dot within the scanline, 0-340
	Scanline int // 0-261; 0-239 visible, 241 vblank start, 261 pre-render
	Frame    uint64

	dots uint64 // total dots, drives IO latch decay

	// Internal scroll registers.
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address
	x uint8  // fine x scroll (3 bits)
	w bool   // second-write toggle
	f uint8  // odd frame flag

	// Memories. The nametable array covers the four-screen case, only the
	// first half is used with mirroring.
	nametableData [4096]uint8
	paletteData   [32]uint8
	OAM           [256]uint8
	secondaryOAM  [32]uint8

	// $2000 PPUCTRL
	addrIncrement32 bool
	spriteTable     uint16 // 0x0000 or 0x1000
	bgTable         uint16
	spriteSize16    bool
	nmiOutput       bool

	// $2001 PPUMASK
	grayscale       bool
	showLeftBg      bool
	showLeftSprites bool
	showBg          bool
	showSprites     bool
	emphasis        uint8

	// $2002 PPUSTATUS
	spriteZeroHit  bool
	spriteOverflow bool
	nmiOccurred    bool

	oamAddr      uint8
	bufferedData uint8 // $2007 read buffer

	// NMI edge bookkeeping. The trigger to the CPU is delayed by a few
	// dots, so a $2002 read racing the vblank flag suppresses the
	// interrupt for that frame.
	nmiPrevious bool
	nmiDelay    uint8

	// Background fetch pipeline.
	nameTableByte uint8
	attributeByte uint8
	lowTileByte   uint8
	highTileByte  uint8
	tileData      uint64

	// Sprite pipeline, filled for the next scanline.
	spriteCount      int
	spritePatterns   [8]uint32
	spritePositions  [8]uint8
	spritePriorities [8]uint8
	spriteIndexes    [8]uint8

	// The PPU IO bus keeps the last driven value, with per-bit decay.
	ioLatch   uint8
	ioDecayAt [8]uint64

	// Framebuffers of final 6-bit color indices. back is being drawn,
	// front holds the last complete frame.
	front *[FrameWidth * FrameHeight]uint8
	back  *[FrameWidth * FrameHeight]uint8
}

func NewPPU(cpu *CPU, mapper mappers.Mapper) *PPU {
	ppu := &PPU{
		cpu:    cpu,
		mapper: mapper,
		front:  new([FrameWidth * FrameHeight]uint8),
		back:   new([FrameWidth * FrameHeight]uint8),
	}
	ppu.Reset()
	return ppu
}

func (p *PPU) Reset() {
	p.Cycle = 340
	p.Scanline = 240
	p.Frame = 0
	p.WriteReg(0x2000, 0)
	p.WriteReg(0x2001, 0)
	p.oamAddr = 0
	p.v, p.t, p.x, p.w, p.f = 0, 0, 0, false, 0
}

// The PPU IO latch decays after about 600ms.
const ioLatchDecayDots = uint64(3221592)

func (p *PPU) refreshLatch(val, mask uint8) {
	p.ioLatch = p.ioLatch&^mask | val&mask
	for i := range p.ioDecayAt {
		if mask&(1<<i) != 0 {
			p.ioDecayAt[i] = p.dots + ioLatchDecayDots
		}
	}
}

func (p *PPU) latchValue() uint8 {
	for i := range p.ioDecayAt {
		if p.dots >= p.ioDecayAt[i] {
			p.ioLatch &^= 1 << i
		}
	}
	return p.ioLatch
}

/* register file */

// ReadReg reads one of the 8 memory-mapped registers. Write-only registers
// return the decayed IO latch.
func (p *PPU) ReadReg(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		val := p.latchValue() & 0x1F
		if p.spriteOverflow {
			val |= 1 << 5
		}
		if p.spriteZeroHit {
			val |= 1 << 6
		}
		if p.nmiOccurred {
			val |= 1 << 7
		}
		p.nmiOccurred = false
		p.nmiChange()
		p.w = false
		p.refreshLatch(val, 0xE0)
		return val

	case 0x2004:
		val := p.OAM[p.oamAddr]
		if p.oamAddr&0x03 == 0x02 {
			// Attribute bytes have no storage for bits 2-4.
			val &= 0xE3
		}
		p.refreshLatch(val, 0xFF)
		return val

	case 0x2007:
		val := p.readVRAM(p.v)
		if p.v&0x3FFF < 0x3F00 {
			val, p.bufferedData = p.bufferedData, val
		} else {
			// Palette reads bypass the buffer, which is refreshed from
			// the nametable underneath.
			p.bufferedData = p.readVRAM(p.v - 0x1000)
		}
		p.incrementV()
		p.refreshLatch(val, 0xFF)
		return val
	}
	return p.latchValue()
}

// PeekReg reads a register without side effects.
func (p *PPU) PeekReg(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		val := p.ioLatch & 0x1F
		if p.spriteOverflow {
			val |= 1 << 5
		}
		if p.spriteZeroHit {
			val |= 1 << 6
		}
		if p.nmiOccurred {
			val |= 1 << 7
		}
		return val
	case 0x2004:
		return p.OAM[p.oamAddr]
	}
	return p.ioLatch
}

func (p *PPU) WriteReg(addr uint16, val uint8) {
	p.refreshLatch(val, 0xFF)

	switch addr {
	case 0x2000:
		p.addrIncrement32 = val&0x04 != 0
		p.spriteTable = uint16(val&0x08) << 9
		p.bgTable = uint16(val&0x10) << 8
		p.spriteSize16 = val&0x20 != 0
		p.nmiOutput = val&0x80 != 0
		p.nmiChange()
		p.t = p.t&0xF3FF | uint16(val&0x03)<<10

	case 0x2001:
		p.grayscale = val&0x01 != 0
		p.showLeftBg = val&0x02 != 0
		p.showLeftSprites = val&0x04 != 0
		p.showBg = val&0x08 != 0
		p.showSprites = val&0x10 != 0
		p.emphasis = val >> 5

	case 0x2003:
		p.oamAddr = val

	case 0x2004:
		p.OAM[p.oamAddr] = val
		p.oamAddr++

	case 0x2005:
		if !p.w {
			p.t = p.t&0xFFE0 | uint16(val)>>3
			p.x = val & 0x07
		} else {
			p.t = p.t&0x8FFF | uint16(val&0x07)<<12
			p.t = p.t&0xFC1F | uint16(val&0xF8)<<2
		}
		p.w = !p.w

	case 0x2006:
		if !p.w {
			p.t = p.t&0x80FF | uint16(val&0x3F)<<8
		} else {
			p.t = p.t&0xFF00 | uint16(val)
			p.v = p.t
		}
		p.w = !p.w

	case 0x2007:
		p.writeVRAM(p.v, val)
		p.incrementV()
	}
}

// WriteOAMByte stores one byte at the current OAM address, used by DMA.
func (p *PPU) WriteOAMByte(val uint8) {
	p.OAM[p.oamAddr] = val
	p.oamAddr++
}

func (p *PPU) incrementV() {
	if p.addrIncrement32 {
		p.v += 32
	} else {
		p.v++
	}
}

/* VRAM bus */

var mirrorLookup = [...][4]uint16{
	ines.MirrorHorizontal: {0, 0, 1, 1},
	ines.MirrorVertical:   {0, 1, 0, 1},
	ines.MirrorSingleLow:  {0, 0, 0, 0},
	ines.MirrorSingleHigh: {1, 1, 1, 1},
	ines.MirrorFourScreen: {0, 1, 2, 3},
}

func mirrorAddress(mode ines.Mirroring, addr uint16) uint16 {
	addr = (addr - 0x2000) % 0x1000
	table := addr / 0x0400
	offset := addr % 0x0400
	return mirrorLookup[mode][table]*0x0400 + offset
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	p.watchAddress(addr)
	switch {
	case addr < 0x2000:
		return p.mapper.ReadCHR(addr)
	case addr < 0x3F00:
		return p.nametableData[mirrorAddress(p.mapper.Mirroring(), addr)]
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) writeVRAM(addr uint16, val uint8) {
	addr &= 0x3FFF
	p.watchAddress(addr)
	switch {
	case addr < 0x2000:
		p.mapper.WriteCHR(addr, val)
	case addr < 0x3F00:
		p.nametableData[mirrorAddress(p.mapper.Mirroring(), addr)] = val
	default:
		p.writePalette(addr, val)
	}
}

// watchAddress reports the VRAM address to mappers watching the A12 line
// for their scanline counter.
func (p *PPU) watchAddress(addr uint16) {
	if watcher, ok := p.mapper.(mappers.PPUAddressWatcher); ok {
		watcher.OnPPUAddress(addr)
	}
}

// readPalette resolves palette RAM mirroring: the backdrop entry of each
// sprite palette mirrors the corresponding background entry.
func (p *PPU) readPalette(addr uint16) uint8 {
	addr &= 0x1F
	if addr >= 16 && addr%4 == 0 {
		addr -= 16
	}
	return p.paletteData[addr]
}

func (p *PPU) writePalette(addr uint16, val uint8) {
	addr &= 0x1F
	if addr >= 16 && addr%4 == 0 {
		addr -= 16
	}
	p.paletteData[addr] = val
}

/* frame output */

// FrameBuffer returns the last completed frame as 6-bit color indices,
// row-major, 256x240.
func (p *PPU) FrameBuffer() *[FrameWidth * FrameHeight]uint8 {
	return p.front
}

// RGBA fills dst with the last completed frame converted through the fixed
// 64-color palette, 4 bytes per pixel. dst must hold 256*240*4 bytes.
func (p *PPU) RGBA(dst []byte) {
	for i, idx := range p.front {
		c := paletteRGB(idx, p.emphasis)
		dst[i*4+0] = uint8(c >> 16)
		dst[i*4+1] = uint8(c >> 8)
		dst[i*4+2] = uint8(c)
		dst[i*4+3] = 0xFF
	}
}

/* NMI plumbing */

func (p *PPU) nmiChange() {
	nmi := p.nmiOutput && p.nmiOccurred
	if nmi && !p.nmiPrevious {
		p.nmiDelay = 15
	}
	p.nmiPrevious = nmi
}

func (p *PPU) setVerticalBlank() {
	p.front, p.back = p.back, p.front
	p.nmiOccurred = true
	p.nmiChange()
	log.ModPPU.DebugZ("vblank start").Uint64("frame", p.Frame).End()
}

func (p *PPU) clearVerticalBlank() {
	p.nmiOccurred = false
	p.nmiChange()
}

/* rendering state machine */

func (p *PPU) renderingEnabled() bool {
	return p.showBg || p.showSprites
}

// advance moves to the next dot, wrapping scanline and frame. On odd frames
// the last dot of the pre-render scanline is skipped when rendering is on.
func (p *PPU) advance() {
	p.dots++

	if p.nmiDelay > 0 {
		p.nmiDelay--
		if p.nmiDelay == 0 && p.nmiOutput && p.nmiOccurred {
			p.cpu.TriggerNMI()
		}
	}

	if p.renderingEnabled() && p.f == 1 && p.Scanline == 261 && p.Cycle == 339 {
		p.Cycle = 0
		p.Scanline = 0
		p.Frame++
		p.f ^= 1
		return
	}
	p.Cycle++
	if p.Cycle > 340 {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline > 261 {
			p.Scanline = 0
			p.Frame++
			p.f ^= 1
		}
	}
}

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	p.advance()

	preLine := p.Scanline == 261
	visibleLine := p.Scanline < 240
	renderLine := preLine || visibleLine
	preFetchCycle := p.Cycle >= 321 && p.Cycle <= 336
	visibleCycle := p.Cycle >= 1 && p.Cycle <= 256
	fetchCycle := preFetchCycle || visibleCycle

	if visibleLine && visibleCycle {
		p.renderPixel()
	}

	if p.renderingEnabled() && renderLine && fetchCycle {
		p.tileData <<= 4
		switch p.Cycle % 8 {
		case 1:
			p.fetchNameTableByte()
		case 3:
			p.fetchAttributeByte()
		case 5:
			p.fetchLowTileByte()
		case 7:
			p.fetchHighTileByte()
		case 0:
			p.storeTileData()
		}
	}

	if p.renderingEnabled() {
		if preLine && p.Cycle >= 280 && p.Cycle <= 304 {
			p.copyY()
		}
		if renderLine {
			if fetchCycle && p.Cycle%8 == 0 {
				p.incrementX()
			}
			if p.Cycle == 256 {
				p.incrementY()
			}
			if p.Cycle == 257 {
				p.copyX()
			}
		}
		if p.Cycle == 257 {
			if visibleLine {
				p.evaluateSprites()
			} else {
				p.spriteCount = 0
			}
		}
	}

	if p.Scanline == 241 && p.Cycle == 1 {
		p.setVerticalBlank()
	}
	if preLine && p.Cycle == 1 {
		p.clearVerticalBlank()
		p.spriteZeroHit = false
		p.spriteOverflow = false
	}
}

/* loopy register operations */

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &^= 0x7000
		y := (p.v & 0x03E0) >> 5
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800
		case 31:
			y = 0
		default:
			y++
		}
		p.v = p.v&^0x03E0 | y<<5
	}
}

func (p *PPU) copyX() {
	p.v = p.v&0xFBE0 | p.t&0x041F
}

func (p *PPU) copyY() {
	p.v = p.v&0x841F | p.t&0x7BE0
}

/* background fetch pipeline */

func (p *PPU) fetchNameTableByte() {
	p.nameTableByte = p.readVRAM(0x2000 | p.v&0x0FFF)
}

func (p *PPU) fetchAttributeByte() {
	addr := 0x23C0 | p.v&0x0C00 | p.v>>4&0x38 | p.v>>2&0x07
	shift := p.v>>4&4 | p.v&2
	p.attributeByte = p.readVRAM(addr) >> shift & 3 << 2
}

func (p *PPU) fetchLowTileByte() {
	fineY := p.v >> 12 & 7
	addr := p.bgTable + uint16(p.nameTableByte)*16 + fineY
	p.lowTileByte = p.readVRAM(addr)
}

func (p *PPU) fetchHighTileByte() {
	fineY := p.v >> 12 & 7
	addr := p.bgTable + uint16(p.nameTableByte)*16 + fineY
	p.highTileByte = p.readVRAM(addr + 8)
}

func (p *PPU) storeTileData() {
	var data uint32
	for range 8 {
		p1 := p.lowTileByte & 0x80 >> 7
		p2 := p.highTileByte & 0x80 >> 6
		p.lowTileByte <<= 1
		p.highTileByte <<= 1
		data = data<<4 | uint32(p.attributeByte|p2|p1)
	}
	p.tileData |= uint64(data)
}

func (p *PPU) backgroundPixel() uint8 {
	if !p.showBg {
		return 0
	}
	data := uint32(p.tileData>>32) >> ((7 - p.x) * 4)
	return uint8(data & 0x0F)
}

func (p *PPU) renderPixel() {
	x := p.Cycle - 1
	y := p.Scanline

	background := p.backgroundPixel()
	i, sprite := p.spritePixel()

	if x < 8 {
		if !p.showLeftBg {
			background = 0
		}
		if !p.showLeftSprites {
			sprite = 0
		}
	}

	b := background%4 != 0
	s := sprite%4 != 0

	var color uint8
	switch {
	case !b && !s:
		color = 0
	case !b && s:
		color = sprite | 0x10
	case b && !s:
		color = background
	default:
		if p.spriteIndexes[i] == 0 && x < 255 {
			p.spriteZeroHit = true
		}
		if p.spritePriorities[i] == 0 {
			color = sprite | 0x10
		} else {
			color = background
		}
	}

	idx := p.readPalette(uint16(color)) & 0x3F
	if p.grayscale {
		idx &= 0x30
	}
	p.back[y*FrameWidth+x] = idx
}
