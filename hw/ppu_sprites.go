package hw

// Sprite evaluation: at the end of each visible scanline, the sprites
// intersecting the next scanline are copied into secondary OAM (8 at most)
// and their pattern rows pre-fetched.

func (p *PPU) spriteHeight() int {
	if p.spriteSize16 {
		return 16
	}
	return 8
}

func (p *PPU) evaluateSprites() {
	h := p.spriteHeight()

	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}

	count := 0
	n := 0
	for ; n < 64 && count < 8; n++ {
		y := p.OAM[n*4]
		row := p.Scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		copy(p.secondaryOAM[count*4:count*4+4], p.OAM[n*4:n*4+4])
		p.spritePatterns[count] = p.fetchSpritePattern(n, row)
		p.spritePositions[count] = p.OAM[n*4+3]
		p.spritePriorities[count] = p.OAM[n*4+2] >> 5 & 1
		p.spriteIndexes[count] = uint8(n)
		count++
	}
	p.spriteCount = count

	if count == 8 {
		p.overflowScan(n, h)
	}
}

// overflowScan reproduces the hardware evaluation bug: once the 8-sprite
// limit is reached, the byte-offset counter keeps incrementing along with
// the sprite counter, so the byte compared against the scanline is not
// always a Y coordinate. Both false positives and false negatives of the
// overflow flag follow from the OAM byte layout.
func (p *PPU) overflowScan(n, h int) {
	m := 0
	for n < 64 {
		y := p.OAM[n*4+m]
		row := p.Scanline - int(y)
		if row >= 0 && row < h {
			p.spriteOverflow = true
			return
		}
		n++
		m = (m + 1) & 3
	}
}

// fetchSpritePattern reads the pattern row of sprite i for the given row,
// pre-decoded into 8 4-bit pixels, honoring flips and 8x16 mode.
func (p *PPU) fetchSpritePattern(i, row int) uint32 {
	tile := p.OAM[i*4+1]
	attributes := p.OAM[i*4+2]

	var addr uint16
	if !p.spriteSize16 {
		if attributes&0x80 != 0 {
			row = 7 - row
		}
		addr = p.spriteTable + uint16(tile)*16 + uint16(row)
	} else {
		if attributes&0x80 != 0 {
			row = 15 - row
		}
		table := uint16(tile&0x01) * 0x1000
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		addr = table + uint16(tile)*16 + uint16(row)
	}

	a := attributes & 0x03 << 2
	low := p.readVRAM(addr)
	high := p.readVRAM(addr + 8)

	var data uint32
	for range 8 {
		var p1, p2 uint8
		if attributes&0x40 != 0 {
			p1 = low & 0x01
			p2 = (high & 0x01) << 1
			low >>= 1
			high >>= 1
		} else {
			p1 = (low & 0x80) >> 7
			p2 = (high & 0x80) >> 6
			low <<= 1
			high <<= 1
		}
		data = data<<4 | uint32(a|p2|p1)
	}
	return data
}

// spritePixel returns the first opaque sprite pixel at the current dot and
// the slot it came from.
func (p *PPU) spritePixel() (int, uint8) {
	if !p.showSprites {
		return 0, 0
	}
	for i := range p.spriteCount {
		offset := p.Cycle - 1 - int(p.spritePositions[i])
		if offset < 0 || offset > 7 {
			continue
		}
		offset = 7 - offset
		color := uint8(p.spritePatterns[i] >> uint8(offset*4) & 0x0F)
		if color%4 == 0 {
			continue
		}
		return i, color
	}
	return 0, 0
}
