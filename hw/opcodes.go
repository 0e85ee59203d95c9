package hw

// addrMode is an addressing mode of the 6502.
type addrMode uint8

const (
	imp addrMode = iota // implied
	acc                 // accumulator
	imm                 // immediate
	zpg                 // zero page
	zpx                 // zero page, X-indexed
	zpy                 // zero page, Y-indexed
	rel                 // relative
	abs                 // absolute
	abx                 // absolute, X-indexed
	aby                 // absolute, Y-indexed
	ind                 // indirect
	izx                 // X-indexed, indirect
	izy                 // indirect, Y-indexed
)

type instruction struct {
	name       string
	mode       addrMode
	size       uint8
	cycles     uint8
	pageCycles uint8
	run        func(c *CPU, addr uint16, mode addrMode)
}

func pagesDiffer(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// operand resolves the effective address of the instruction at PC, and
// reports whether an indexed access crossed a page boundary.
func (c *CPU) operand(mode addrMode) (addr uint16, crossed bool) {
	switch mode {
	case imp, acc:
		// no operand
	case imm:
		addr = c.PC + 1
	case zpg:
		addr = uint16(c.bus.Read8(c.PC + 1))
	case zpx:
		addr = uint16(c.bus.Read8(c.PC+1) + c.X)
	case zpy:
		addr = uint16(c.bus.Read8(c.PC+1) + c.Y)
	case rel:
		off := c.bus.Read8(c.PC + 1)
		addr = c.PC + 2 + uint16(off)
		if off >= 0x80 {
			addr -= 0x100
		}
	case abs:
		addr = c.read16(c.PC + 1)
	case abx:
		base := c.read16(c.PC + 1)
		addr = base + uint16(c.X)
		crossed = pagesDiffer(base, addr)
	case aby:
		base := c.read16(c.PC + 1)
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	case ind:
		addr = c.read16wrap(c.read16(c.PC + 1))
	case izx:
		addr = c.read16wrap(uint16(c.bus.Read8(c.PC+1) + c.X))
	case izy:
		base := c.read16wrap(uint16(c.bus.Read8(c.PC + 1)))
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	}
	return addr, crossed
}

// newInstructionTable builds the 256-entry decode table. The table is built
// per-CPU so that multiple consoles never share mutable decode state.
func newInstructionTable() *[256]instruction {
	return &[256]instruction{
		0x00: {"BRK", imp, 1, 7, 0, opBRK},
		0x01: {"ORA", izx, 2, 6, 0, opORA},
		0x02: {"STP", imp, 1, 2, 0, opSTP},
		0x03: {"SLO", izx, 2, 8, 0, opSLO},
		0x04: {"NOP", zpg, 2, 3, 0, opNOP},
		0x05: {"ORA", zpg, 2, 3, 0, opORA},
		0x06: {"ASL", zpg, 2, 5, 0, opASL},
		0x07: {"SLO", zpg, 2, 5, 0, opSLO},
		0x08: {"PHP", imp, 1, 3, 0, opPHP},
		0x09: {"ORA", imm, 2, 2, 0, opORA},
		0x0A: {"ASL", acc, 1, 2, 0, opASL},
		0x0B: {"ANC", imm, 2, 2, 0, opANC},
		0x0C: {"NOP", abs, 3, 4, 0, opNOP},
		0x0D: {"ORA", abs, 3, 4, 0, opORA},
		0x0E: {"ASL", abs, 3, 6, 0, opASL},
		0x0F: {"SLO", abs, 3, 6, 0, opSLO},
		0x10: {"BPL", rel, 2, 2, 0, opBPL},
		0x11: {"ORA", izy, 2, 5, 1, opORA},
		0x12: {"STP", imp, 1, 2, 0, opSTP},
		0x13: {"SLO", izy, 2, 8, 0, opSLO},
		0x14: {"NOP", zpx, 2, 4, 0, opNOP},
		0x15: {"ORA", zpx, 2, 4, 0, opORA},
		0x16: {"ASL", zpx, 2, 6, 0, opASL},
		0x17: {"SLO", zpx, 2, 6, 0, opSLO},
		0x18: {"CLC", imp, 1, 2, 0, opCLC},
		0x19: {"ORA", aby, 3, 4, 1, opORA},
		0x1A: {"NOP", imp, 1, 2, 0, opNOP},
		0x1B: {"SLO", aby, 3, 7, 0, opSLO},
		0x1C: {"NOP", abx, 3, 4, 1, opNOP},
		0x1D: {"ORA", abx, 3, 4, 1, opORA},
		0x1E: {"ASL", abx, 3, 7, 0, opASL},
		0x1F: {"SLO", abx, 3, 7, 0, opSLO},
		0x20: {"JSR", abs, 3, 6, 0, opJSR},
		0x21: {"AND", izx, 2, 6, 0, opAND},
		0x22: {"STP", imp, 1, 2, 0, opSTP},
		0x23: {"RLA", izx, 2, 8, 0, opRLA},
		0x24: {"BIT", zpg, 2, 3, 0, opBIT},
		0x25: {"AND", zpg, 2, 3, 0, opAND},
		0x26: {"ROL", zpg, 2, 5, 0, opROL},
		0x27: {"RLA", zpg, 2, 5, 0, opRLA},
		0x28: {"PLP", imp, 1, 4, 0, opPLP},
		0x29: {"AND", imm, 2, 2, 0, opAND},
		0x2A: {"ROL", acc, 1, 2, 0, opROL},
		0x2B: {"ANC", imm, 2, 2, 0, opANC},
		0x2C: {"BIT", abs, 3, 4, 0, opBIT},
		0x2D: {"AND", abs, 3, 4, 0, opAND},
		0x2E: {"ROL", abs, 3, 6, 0, opROL},
		0x2F: {"RLA", abs, 3, 6, 0, opRLA},
		0x30: {"BMI", rel, 2, 2, 0, opBMI},
		0x31: {"AND", izy, 2, 5, 1, opAND},
		0x32: {"STP", imp, 1, 2, 0, opSTP},
		0x33: {"RLA", izy, 2, 8, 0, opRLA},
		0x34: {"NOP", zpx, 2, 4, 0, opNOP},
		0x35: {"AND", zpx, 2, 4, 0, opAND},
		0x36: {"ROL", zpx, 2, 6, 0, opROL},
		0x37: {"RLA", zpx, 2, 6, 0, opRLA},
		0x38: {"SEC", imp, 1, 2, 0, opSEC},
		0x39: {"AND", aby, 3, 4, 1, opAND},
		0x3A: {"NOP", imp, 1, 2, 0, opNOP},
		0x3B: {"RLA", aby, 3, 7, 0, opRLA},
		0x3C: {"NOP", abx, 3, 4, 1, opNOP},
		0x3D: {"AND", abx, 3, 4, 1, opAND},
		0x3E: {"ROL", abx, 3, 7, 0, opROL},
		0x3F: {"RLA", abx, 3, 7, 0, opRLA},
		0x40: {"RTI", imp, 1, 6, 0, opRTI},
		0x41: {"EOR", izx, 2, 6, 0, opEOR},
		0x42: {"STP", imp, 1, 2, 0, opSTP},
		0x43: {"SRE", izx, 2, 8, 0, opSRE},
		0x44: {"NOP", zpg, 2, 3, 0, opNOP},
		0x45: {"EOR", zpg, 2, 3, 0, opEOR},
		0x46: {"LSR", zpg, 2, 5, 0, opLSR},
		0x47: {"SRE", zpg, 2, 5, 0, opSRE},
		0x48: {"PHA", imp, 1, 3, 0, opPHA},
		0x49: {"EOR", imm, 2, 2, 0, opEOR},
		0x4A: {"LSR", acc, 1, 2, 0, opLSR},
		0x4B: {"ALR", imm, 2, 2, 0, opALR},
		0x4C: {"JMP", abs, 3, 3, 0, opJMP},
		0x4D: {"EOR", abs, 3, 4, 0, opEOR},
		0x4E: {"LSR", abs, 3, 6, 0, opLSR},
		0x4F: {"SRE", abs, 3, 6, 0, opSRE},
		0x50: {"BVC", rel, 2, 2, 0, opBVC},
		0x51: {"EOR", izy, 2, 5, 1, opEOR},
		0x52: {"STP", imp, 1, 2, 0, opSTP},
		0x53: {"SRE", izy, 2, 8, 0, opSRE},
		0x54: {"NOP", zpx, 2, 4, 0, opNOP},
		0x55: {"EOR", zpx, 2, 4, 0, opEOR},
		0x56: {"LSR", zpx, 2, 6, 0, opLSR},
		0x57: {"SRE", zpx, 2, 6, 0, opSRE},
		0x58: {"CLI", imp, 1, 2, 0, opCLI},
		0x59: {"EOR", aby, 3, 4, 1, opEOR},
		0x5A: {"NOP", imp, 1, 2, 0, opNOP},
		0x5B: {"SRE", aby, 3, 7, 0, opSRE},
		0x5C: {"NOP", abx, 3, 4, 1, opNOP},
		0x5D: {"EOR", abx, 3, 4, 1, opEOR},
		0x5E: {"LSR", abx, 3, 7, 0, opLSR},
		0x5F: {"SRE", abx, 3, 7, 0, opSRE},
		0x60: {"RTS", imp, 1, 6, 0, opRTS},
		0x61: {"ADC", izx, 2, 6, 0, opADC},
		0x62: {"STP", imp, 1, 2, 0, opSTP},
		0x63: {"RRA", izx, 2, 8, 0, opRRA},
		0x64: {"NOP", zpg, 2, 3, 0, opNOP},
		0x65: {"ADC", zpg, 2, 3, 0, opADC},
		0x66: {"ROR", zpg, 2, 5, 0, opROR},
		0x67: {"RRA", zpg, 2, 5, 0, opRRA},
		0x68: {"PLA", imp, 1, 4, 0, opPLA},
		0x69: {"ADC", imm, 2, 2, 0, opADC},
		0x6A: {"ROR", acc, 1, 2, 0, opROR},
		0x6B: {"ARR", imm, 2, 2, 0, opARR},
		0x6C: {"JMP", ind, 3, 5, 0, opJMP},
		0x6D: {"ADC", abs, 3, 4, 0, opADC},
		0x6E: {"ROR", abs, 3, 6, 0, opROR},
		0x6F: {"RRA", abs, 3, 6, 0, opRRA},
		0x70: {"BVS", rel, 2, 2, 0, opBVS},
		0x71: {"ADC", izy, 2, 5, 1, opADC},
		0x72: {"STP", imp, 1, 2, 0, opSTP},
		0x73: {"RRA", izy, 2, 8, 0, opRRA},
		0x74: {"NOP", zpx, 2, 4, 0, opNOP},
		0x75: {"ADC", zpx, 2, 4, 0, opADC},
		0x76: {"ROR", zpx, 2, 6, 0, opROR},
		0x77: {"RRA", zpx, 2, 6, 0, opRRA},
		0x78: {"SEI", imp, 1, 2, 0, opSEI},
		0x79: {"ADC", aby, 3, 4, 1, opADC},
		0x7A: {"NOP", imp, 1, 2, 0, opNOP},
		0x7B: {"RRA", aby, 3, 7, 0, opRRA},
		0x7C: {"NOP", abx, 3, 4, 1, opNOP},
		0x7D: {"ADC", abx, 3, 4, 1, opADC},
		0x7E: {"ROR", abx, 3, 7, 0, opROR},
		0x7F: {"RRA", abx, 3, 7, 0, opRRA},
		0x80: {"NOP", imm, 2, 2, 0, opNOP},
		0x81: {"STA", izx, 2, 6, 0, opSTA},
		0x82: {"NOP", imm, 2, 2, 0, opNOP},
		0x83: {"SAX", izx, 2, 6, 0, opSAX},
		0x84: {"STY", zpg, 2, 3, 0, opSTY},
		0x85: {"STA", zpg, 2, 3, 0, opSTA},
		0x86: {"STX", zpg, 2, 3, 0, opSTX},
		0x87: {"SAX", zpg, 2, 3, 0, opSAX},
		0x88: {"DEY", imp, 1, 2, 0, opDEY},
		0x89: {"NOP", imm, 2, 2, 0, opNOP},
		0x8A: {"TXA", imp, 1, 2, 0, opTXA},
		0x8B: {"ANE", imm, 2, 2, 0, opANE},
		0x8C: {"STY", abs, 3, 4, 0, opSTY},
		0x8D: {"STA", abs, 3, 4, 0, opSTA},
		0x8E: {"STX", abs, 3, 4, 0, opSTX},
		0x8F: {"SAX", abs, 3, 4, 0, opSAX},
		0x90: {"BCC", rel, 2, 2, 0, opBCC},
		0x91: {"STA", izy, 2, 6, 0, opSTA},
		0x92: {"STP", imp, 1, 2, 0, opSTP},
		0x93: {"SHA", izy, 2, 6, 0, opSHA},
		0x94: {"STY", zpx, 2, 4, 0, opSTY},
		0x95: {"STA", zpx, 2, 4, 0, opSTA},
		0x96: {"STX", zpy, 2, 4, 0, opSTX},
		0x97: {"SAX", zpy, 2, 4, 0, opSAX},
		0x98: {"TYA", imp, 1, 2, 0, opTYA},
		0x99: {"STA", aby, 3, 5, 0, opSTA},
		0x9A: {"TXS", imp, 1, 2, 0, opTXS},
		0x9B: {"TAS", aby, 3, 5, 0, opTAS},
		0x9C: {"SHY", abx, 3, 5, 0, opSHY},
		0x9D: {"STA", abx, 3, 5, 0, opSTA},
		0x9E: {"SHX", aby, 3, 5, 0, opSHX},
		0x9F: {"SHA", aby, 3, 5, 0, opSHA},
		0xA0: {"LDY", imm, 2, 2, 0, opLDY},
		0xA1: {"LDA", izx, 2, 6, 0, opLDA},
		0xA2: {"LDX", imm, 2, 2, 0, opLDX},
		0xA3: {"LAX", izx, 2, 6, 0, opLAX},
		0xA4: {"LDY", zpg, 2, 3, 0, opLDY},
		0xA5: {"LDA", zpg, 2, 3, 0, opLDA},
		0xA6: {"LDX", zpg, 2, 3, 0, opLDX},
		0xA7: {"LAX", zpg, 2, 3, 0, opLAX},
		0xA8: {"TAY", imp, 1, 2, 0, opTAY},
		0xA9: {"LDA", imm, 2, 2, 0, opLDA},
		0xAA: {"TAX", imp, 1, 2, 0, opTAX},
		0xAB: {"LXA", imm, 2, 2, 0, opLXA},
		0xAC: {"LDY", abs, 3, 4, 0, opLDY},
		0xAD: {"LDA", abs, 3, 4, 0, opLDA},
		0xAE: {"LDX", abs, 3, 4, 0, opLDX},
		0xAF: {"LAX", abs, 3, 4, 0, opLAX},
		0xB0: {"BCS", rel, 2, 2, 0, opBCS},
		0xB1: {"LDA", izy, 2, 5, 1, opLDA},
		0xB2: {"STP", imp, 1, 2, 0, opSTP},
		0xB3: {"LAX", izy, 2, 5, 1, opLAX},
		0xB4: {"LDY", zpx, 2, 4, 0, opLDY},
		0xB5: {"LDA", zpx, 2, 4, 0, opLDA},
		0xB6: {"LDX", zpy, 2, 4, 0, opLDX},
		0xB7: {"LAX", zpy, 2, 4, 0, opLAX},
		0xB8: {"CLV", imp, 1, 2, 0, opCLV},
		0xB9: {"LDA", aby, 3, 4, 1, opLDA},
		0xBA: {"TSX", imp, 1, 2, 0, opTSX},
		0xBB: {"LAS", aby, 3, 4, 1, opLAS},
		0xBC: {"LDY", abx, 3, 4, 1, opLDY},
		0xBD: {"LDA", abx, 3, 4, 1, opLDA},
		0xBE: {"LDX", aby, 3, 4, 1, opLDX},
		0xBF: {"LAX", aby, 3, 4, 1, opLAX},
		0xC0: {"CPY", imm, 2, 2, 0, opCPY},
		0xC1: {"CMP", izx, 2, 6, 0, opCMP},
		0xC2: {"NOP", imm, 2, 2, 0, opNOP},
		0xC3: {"DCP", izx, 2, 8, 0, opDCP},
		0xC4: {"CPY", zpg, 2, 3, 0, opCPY},
		0xC5: {"CMP", zpg, 2, 3, 0, opCMP},
		0xC6: {"DEC", zpg, 2, 5, 0, opDEC},
		0xC7: {"DCP", zpg, 2, 5, 0, opDCP},
		0xC8: {"INY", imp, 1, 2, 0, opINY},
		0xC9: {"CMP", imm, 2, 2, 0, opCMP},
		0xCA: {"DEX", imp, 1, 2, 0, opDEX},
		0xCB: {"SBX", imm, 2, 2, 0, opSBX},
		0xCC: {"CPY", abs, 3, 4, 0, opCPY},
		0xCD: {"CMP", abs, 3, 4, 0, opCMP},
		0xCE: {"DEC", abs, 3, 6, 0, opDEC},
		0xCF: {"DCP", abs, 3, 6, 0, opDCP},
		0xD0: {"BNE", rel, 2, 2, 0, opBNE},
		0xD1: {"CMP", izy, 2, 5, 1, opCMP},
		0xD2: {"STP", imp, 1, 2, 0, opSTP},
		0xD3: {"DCP", izy, 2, 8, 0, opDCP},
		0xD4: {"NOP", zpx, 2, 4, 0, opNOP},
		0xD5: {"CMP", zpx, 2, 4, 0, opCMP},
		0xD6: {"DEC", zpx, 2, 6, 0, opDEC},
		0xD7: {"DCP", zpx, 2, 6, 0, opDCP},
		0xD8: {"CLD", imp, 1, 2, 0, opCLD},
		0xD9: {"CMP", aby, 3, 4, 1, opCMP},
		0xDA: {"NOP", imp, 1, 2, 0, opNOP},
		0xDB: {"DCP", aby, 3, 7, 0, opDCP},
		0xDC: {"NOP", abx, 3, 4, 1, opNOP},
		0xDD: {"CMP", abx, 3, 4, 1, opCMP},
		0xDE: {"DEC", abx, 3, 7, 0, opDEC},
		0xDF: {"DCP", abx, 3, 7, 0, opDCP},
		0xE0: {"CPX", imm, 2, 2, 0, opCPX},
		0xE1: {"SBC", izx, 2, 6, 0, opSBC},
		0xE2: {"NOP", imm, 2, 2, 0, opNOP},
		0xE3: {"ISC", izx, 2, 8, 0, opISC},
		0xE4: {"CPX", zpg, 2, 3, 0, opCPX},
		0xE5: {"SBC", zpg, 2, 3, 0, opSBC},
		0xE6: {"INC", zpg, 2, 5, 0, opINC},
		0xE7: {"ISC", zpg, 2, 5, 0, opISC},
		0xE8: {"INX", imp, 1, 2, 0, opINX},
		0xE9: {"SBC", imm, 2, 2, 0, opSBC},
		0xEA: {"NOP", imp, 1, 2, 0, opNOP},
		0xEB: {"SBC", imm, 2, 2, 0, opSBC},
		0xEC: {"CPX", abs, 3, 4, 0, opCPX},
		0xED: {"SBC", abs, 3, 4, 0, opSBC},
		0xEE: {"INC", abs, 3, 6, 0, opINC},
		0xEF: {"ISC", abs, 3, 6, 0, opISC},
		0xF0: {"BEQ", rel, 2, 2, 0, opBEQ},
		0xF1: {"SBC", izy, 2, 5, 1, opSBC},
		0xF2: {"STP", imp, 1, 2, 0, opSTP},
		0xF3: {"ISC", izy, 2, 8, 0, opISC},
		0xF4: {"NOP", zpx, 2, 4, 0, opNOP},
		0xF5: {"SBC", zpx, 2, 4, 0, opSBC},
		0xF6: {"INC", zpx, 2, 6, 0, opINC},
		0xF7: {"ISC", zpx, 2, 6, 0, opISC},
		0xF8: {"SED", imp, 1, 2, 0, opSED},
		0xF9: {"SBC", aby, 3, 4, 1, opSBC},
		0xFA: {"NOP", imp, 1, 2, 0, opNOP},
		0xFB: {"ISC", aby, 3, 7, 0, opISC},
		0xFC: {"NOP", abx, 3, 4, 1, opNOP},
		0xFD: {"SBC", abx, 3, 4, 1, opSBC},
		0xFE: {"INC", abx, 3, 7, 0, opINC},
		0xFF: {"ISC", abx, 3, 7, 0, opISC},
	}
}

/* branch helpers */

// doBranch takes a branch: one extra cycle, two if the target lies in
// another page than the next instruction.
func (c *CPU) doBranch(addr uint16) {
	c.extraCycles++
	if pagesDiffer(c.PC, addr) {
		c.extraCycles++
	}
	c.PC = addr
}

/* arithmetic helpers */

func (c *CPU) addWithCarry(val uint8) {
	a := c.A
	carry := uint8(c.P) & Carry
	sum := uint16(a) + uint16(val) + uint16(carry)

	c.A = uint8(sum)
	c.P.setFlag(Carry, sum > 0xFF)
	c.P.setFlag(Overflow, (a^val)&0x80 == 0 && (a^c.A)&0x80 != 0)
	c.P.setNZ(c.A)
}

func (c *CPU) compare(reg, val uint8) {
	c.P.setFlag(Carry, reg >= val)
	c.P.setNZ(reg - val)
}

// rmw performs the read-modify-write sequence: the unmodified value is
// written back before the modified one, as the 6502 does.
func (c *CPU) rmw(addr uint16, old, val uint8) {
	c.bus.Write8(addr, old)
	c.bus.Write8(addr, val)
}

/* official opcodes */

func opLDA(c *CPU, addr uint16, _ addrMode) {
	c.A = c.bus.Read8(addr)
	c.P.setNZ(c.A)
}

func opLDX(c *CPU, addr uint16, _ addrMode) {
	c.X = c.bus.Read8(addr)
	c.P.setNZ(c.X)
}

func opLDY(c *CPU, addr uint16, _ addrMode) {
	c.Y = c.bus.Read8(addr)
	c.P.setNZ(c.Y)
}

func opSTA(c *CPU, addr uint16, _ addrMode) { c.bus.Write8(addr, c.A) }
func opSTX(c *CPU, addr uint16, _ addrMode) { c.bus.Write8(addr, c.X) }
func opSTY(c *CPU, addr uint16, _ addrMode) { c.bus.Write8(addr, c.Y) }

func opTAX(c *CPU, _ uint16, _ addrMode) { c.X = c.A; c.P.setNZ(c.X) }
func opTAY(c *CPU, _ uint16, _ addrMode) { c.Y = c.A; c.P.setNZ(c.Y) }
func opTXA(c *CPU, _ uint16, _ addrMode) { c.A = c.X; c.P.setNZ(c.A) }
func opTYA(c *CPU, _ uint16, _ addrMode) { c.A = c.Y; c.P.setNZ(c.A) }
func opTSX(c *CPU, _ uint16, _ addrMode) { c.X = c.SP; c.P.setNZ(c.X) }
func opTXS(c *CPU, _ uint16, _ addrMode) { c.SP = c.X }

func opPHA(c *CPU, _ uint16, _ addrMode) { c.push8(c.A) }

func opPHP(c *CPU, _ uint16, _ addrMode) {
	p := c.P
	p.setFlags(Break | Reserved)
	c.push8(uint8(p))
}

func opPLA(c *CPU, _ uint16, _ addrMode) {
	c.A = c.pull8()
	c.P.setNZ(c.A)
}

func opPLP(c *CPU, _ uint16, _ addrMode) {
	c.P = P(c.pull8())
	c.P.clearFlags(Break)
	c.P.setFlags(Reserved)
}

func opAND(c *CPU, addr uint16, _ addrMode) {
	c.A &= c.bus.Read8(addr)
	c.P.setNZ(c.A)
}

func opORA(c *CPU, addr uint16, _ addrMode) {
	c.A |= c.bus.Read8(addr)
	c.P.setNZ(c.A)
}

func opEOR(c *CPU, addr uint16, _ addrMode) {
	c.A ^= c.bus.Read8(addr)
	c.P.setNZ(c.A)
}

func opBIT(c *CPU, addr uint16, _ addrMode) {
	val := c.bus.Read8(addr)
	c.P.setFlag(Zero, c.A&val == 0)
	c.P.setFlag(Overflow, val&0x40 != 0)
	c.P.setFlag(Negative, val&0x80 != 0)
}

func opADC(c *CPU, addr uint16, _ addrMode) {
	c.addWithCarry(c.bus.Read8(addr))
}

func opSBC(c *CPU, addr uint16, _ addrMode) {
	c.addWithCarry(^c.bus.Read8(addr))
}

func opCMP(c *CPU, addr uint16, _ addrMode) { c.compare(c.A, c.bus.Read8(addr)) }
func opCPX(c *CPU, addr uint16, _ addrMode) { c.compare(c.X, c.bus.Read8(addr)) }
func opCPY(c *CPU, addr uint16, _ addrMode) { c.compare(c.Y, c.bus.Read8(addr)) }

func opINC(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	val := old + 1
	c.rmw(addr, old, val)
	c.P.setNZ(val)
}

func opDEC(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	val := old - 1
	c.rmw(addr, old, val)
	c.P.setNZ(val)
}

func opINX(c *CPU, _ uint16, _ addrMode) { c.X++; c.P.setNZ(c.X) }
func opINY(c *CPU, _ uint16, _ addrMode) { c.Y++; c.P.setNZ(c.Y) }
func opDEX(c *CPU, _ uint16, _ addrMode) { c.X--; c.P.setNZ(c.X) }
func opDEY(c *CPU, _ uint16, _ addrMode) { c.Y--; c.P.setNZ(c.Y) }

func (c *CPU) asl(old uint8) uint8 {
	c.P.setFlag(Carry, old&0x80 != 0)
	val := old << 1
	c.P.setNZ(val)
	return val
}

func (c *CPU) lsr(old uint8) uint8 {
	c.P.setFlag(Carry, old&0x01 != 0)
	val := old >> 1
	c.P.setNZ(val)
	return val
}

func (c *CPU) rol(old uint8) uint8 {
	carry := uint8(c.P) & Carry
	c.P.setFlag(Carry, old&0x80 != 0)
	val := old<<1 | carry
	c.P.setNZ(val)
	return val
}

func (c *CPU) ror(old uint8) uint8 {
	carry := uint8(c.P) & Carry
	c.P.setFlag(Carry, old&0x01 != 0)
	val := old>>1 | carry<<7
	c.P.setNZ(val)
	return val
}

func opASL(c *CPU, addr uint16, mode addrMode) {
	if mode == acc {
		c.A = c.asl(c.A)
		return
	}
	old := c.bus.Read8(addr)
	c.rmw(addr, old, c.asl(old))
}

func opLSR(c *CPU, addr uint16, mode addrMode) {
	if mode == acc {
		c.A = c.lsr(c.A)
		return
	}
	old := c.bus.Read8(addr)
	c.rmw(addr, old, c.lsr(old))
}

func opROL(c *CPU, addr uint16, mode addrMode) {
	if mode == acc {
		c.A = c.rol(c.A)
		return
	}
	old := c.bus.Read8(addr)
	c.rmw(addr, old, c.rol(old))
}

func opROR(c *CPU, addr uint16, mode addrMode) {
	if mode == acc {
		c.A = c.ror(c.A)
		return
	}
	old := c.bus.Read8(addr)
	c.rmw(addr, old, c.ror(old))
}

func opJMP(c *CPU, addr uint16, _ addrMode) { c.PC = addr }

func opJSR(c *CPU, addr uint16, _ addrMode) {
	c.push16(c.PC - 1)
	c.PC = addr
}

func opRTS(c *CPU, _ uint16, _ addrMode) {
	c.PC = c.pull16() + 1
}

func opRTI(c *CPU, _ uint16, _ addrMode) {
	c.P = P(c.pull8())
	c.P.clearFlags(Break)
	c.P.setFlags(Reserved)
	c.PC = c.pull16()
}

func opBRK(c *CPU, _ uint16, _ addrMode) { c.brk() }

func opBCC(c *CPU, addr uint16, _ addrMode) {
	if !c.P.hasFlag(Carry) {
		c.doBranch(addr)
	}
}

func opBCS(c *CPU, addr uint16, _ addrMode) {
	if c.P.hasFlag(Carry) {
		c.doBranch(addr)
	}
}

func opBEQ(c *CPU, addr uint16, _ addrMode) {
	if c.P.hasFlag(Zero) {
		c.doBranch(addr)
	}
}

func opBNE(c *CPU, addr uint16, _ addrMode) {
	if !c.P.hasFlag(Zero) {
		c.doBranch(addr)
	}
}

func opBMI(c *CPU, addr uint16, _ addrMode) {
	if c.P.hasFlag(Negative) {
		c.doBranch(addr)
	}
}

func opBPL(c *CPU, addr uint16, _ addrMode) {
	if !c.P.hasFlag(Negative) {
		c.doBranch(addr)
	}
}

func opBVC(c *CPU, addr uint16, _ addrMode) {
	if !c.P.hasFlag(Overflow) {
		c.doBranch(addr)
	}
}

func opBVS(c *CPU, addr uint16, _ addrMode) {
	if c.P.hasFlag(Overflow) {
		c.doBranch(addr)
	}
}

func opCLC(c *CPU, _ uint16, _ addrMode) { c.P.clearFlags(Carry) }
func opCLD(c *CPU, _ uint16, _ addrMode) { c.P.clearFlags(Decimal) }
func opCLI(c *CPU, _ uint16, _ addrMode) { c.P.clearFlags(Interrupt) }
func opCLV(c *CPU, _ uint16, _ addrMode) { c.P.clearFlags(Overflow) }
func opSEC(c *CPU, _ uint16, _ addrMode) { c.P.setFlags(Carry) }
func opSED(c *CPU, _ uint16, _ addrMode) { c.P.setFlags(Decimal) }
func opSEI(c *CPU, _ uint16, _ addrMode) { c.P.setFlags(Interrupt) }

func opNOP(c *CPU, addr uint16, mode addrMode) {
	if mode != imp {
		// Addressed NOP variants still perform their read.
		c.bus.Read8(addr)
	}
}

/* unofficial opcodes */

func opLAX(c *CPU, addr uint16, _ addrMode) {
	val := c.bus.Read8(addr)
	c.A = val
	c.X = val
	c.P.setNZ(val)
}

func opSAX(c *CPU, addr uint16, _ addrMode) {
	c.bus.Write8(addr, c.A&c.X)
}

func opDCP(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	val := old - 1
	c.rmw(addr, old, val)
	c.compare(c.A, val)
}

func opISC(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	val := old + 1
	c.rmw(addr, old, val)
	c.addWithCarry(^val)
}

func opSLO(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	c.P.setFlag(Carry, old&0x80 != 0)
	val := old << 1
	c.rmw(addr, old, val)
	c.A |= val
	c.P.setNZ(c.A)
}

func opRLA(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	carry := uint8(c.P) & Carry
	c.P.setFlag(Carry, old&0x80 != 0)
	val := old<<1 | carry
	c.rmw(addr, old, val)
	c.A &= val
	c.P.setNZ(c.A)
}

func opSRE(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	c.P.setFlag(Carry, old&0x01 != 0)
	val := old >> 1
	c.rmw(addr, old, val)
	c.A ^= val
	c.P.setNZ(c.A)
}

func opRRA(c *CPU, addr uint16, _ addrMode) {
	old := c.bus.Read8(addr)
	carry := uint8(c.P) & Carry
	c.P.setFlag(Carry, old&0x01 != 0)
	val := old>>1 | carry<<7
	c.rmw(addr, old, val)
	c.addWithCarry(val)
}

func opANC(c *CPU, addr uint16, _ addrMode) {
	c.A &= c.bus.Read8(addr)
	c.P.setNZ(c.A)
	c.P.setFlag(Carry, c.A&0x80 != 0)
}

func opALR(c *CPU, addr uint16, _ addrMode) {
	c.A &= c.bus.Read8(addr)
	c.A = c.lsr(c.A)
}

func opARR(c *CPU, addr uint16, _ addrMode) {
	c.A &= c.bus.Read8(addr)
	carry := uint8(c.P) & Carry
	c.A = c.A>>1 | carry<<7
	c.P.setNZ(c.A)
	c.P.setFlag(Carry, c.A&0x40 != 0)
	c.P.setFlag(Overflow, (c.A>>6^c.A>>5)&0x01 != 0)
}

func opSBX(c *CPU, addr uint16, _ addrMode) {
	val := c.bus.Read8(addr)
	ax := c.A & c.X
	c.X = ax - val
	c.P.setFlag(Carry, ax >= val)
	c.P.setNZ(c.X)
}

func opLXA(c *CPU, addr uint16, _ addrMode) {
	// Unstable on real silicon: the magic constant models the usual
	// bus capacitance.
	val := (c.A | 0xEE) & c.bus.Read8(addr)
	c.A = val
	c.X = val
	c.P.setNZ(val)
}

func opANE(c *CPU, addr uint16, _ addrMode) {
	c.A = (c.A | 0xEE) & c.X & c.bus.Read8(addr)
	c.P.setNZ(c.A)
}

func opSHA(c *CPU, addr uint16, _ addrMode) {
	c.bus.Write8(addr, c.A&c.X&(uint8(addr>>8)+1))
}

func opSHX(c *CPU, addr uint16, _ addrMode) {
	c.bus.Write8(addr, c.X&(uint8(addr>>8)+1))
}

func opSHY(c *CPU, addr uint16, _ addrMode) {
	c.bus.Write8(addr, c.Y&(uint8(addr>>8)+1))
}

func opTAS(c *CPU, addr uint16, _ addrMode) {
	c.SP = c.A & c.X
	c.bus.Write8(addr, c.SP&(uint8(addr>>8)+1))
}

func opLAS(c *CPU, addr uint16, _ addrMode) {
	val := c.bus.Read8(addr) & c.SP
	c.A = val
	c.X = val
	c.SP = val
	c.P.setNZ(val)
}

func opSTP(c *CPU, _ uint16, _ addrMode) {
	c.halt()
}
