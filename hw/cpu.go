package hw

import (
	"io"

	"famicore/emu/log"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// cpuBus is the memory surface the CPU executes against.
type cpuBus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
	Peek8(addr uint16) uint8
}

type CPU struct {
	bus cpuBus

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	Cycles int64

	instrs *[256]instruction

	// Extra cycles accumulated by the instruction being executed
	// (taken branches, page crossings on indexed reads).
	extraCycles int

	// interrupt handling
	needNmi bool
	irqFlag irqSource

	stall  int64
	halted bool

	// Non-nil when execution tracing is enabled.
	tracer *tracer
}

// NewCPU creates a new CPU at power-up state, executing against bus.
func NewCPU(bus cpuBus) *CPU {
	return &CPU{
		bus:    bus,
		A:      0x00,
		X:      0x00,
		Y:      0x00,
		SP:     0xFD,
		P:      P(0x24),
		PC:     0x0000,
		instrs: newInstructionTable(),
	}
}

func (c *CPU) Reset(soft bool) {
	if soft {
		c.SP -= 0x03
	} else {
		c.A = 0x00
		c.X = 0x00
		c.Y = 0x00
		c.SP = 0xFD
		c.P = P(0x24)
	}
	c.P.setFlags(Interrupt)

	c.PC = c.read16(ResetVector)
	c.needNmi = false
	c.irqFlag = 0
	c.stall = 0
	c.halted = false

	// After a reset/power-up, the CPU burns 7 cycles before going
	// on with ROM execution.
	c.Cycles += 7
}

// Step executes the next instruction and returns the number of cycles it
// consumed. Pending DMA stalls are consumed first, pending interrupts next.
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}

	if c.stall > 0 {
		n := c.stall
		c.stall = 0
		c.Cycles += n
		return int(n)
	}

	if c.needNmi {
		c.needNmi = false
		c.interrupt(NMIVector)
		return 7
	}
	if c.irqFlag != 0 && !c.P.hasFlag(Interrupt) {
		c.interrupt(IRQVector)
		return 7
	}

	c.traceOp()

	opcode := c.bus.Read8(c.PC)
	in := &c.instrs[opcode]

	addr, crossed := c.operand(in.mode)
	c.PC += uint16(in.size)

	c.extraCycles = 0
	in.run(c, addr, in.mode)

	cycles := int(in.cycles) + c.extraCycles
	if crossed {
		cycles += int(in.pageCycles)
	}
	c.Cycles += int64(cycles)

	if c.halted {
		log.ModCPU.WarnZ("CPU halted").
			Hex16("PC", c.PC).
			Hex8("opcode", opcode).
			End()
	}
	return cycles
}

// AddStall forces the CPU to burn n cycles before the next instruction,
// used to model DMA transfers stealing the bus.
func (c *CPU) AddStall(n int64) {
	c.stall += n
}

func (c *CPU) halt() {
	c.halted = true
}

func (c *CPU) IsHalted() bool {
	return c.halted
}

/* memory access helpers */

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.bus.Read8(addr)
	hi := c.bus.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// read16wrap reads a 16-bit pointer that cannot cross a page: the high byte
// is fetched from the start of the same page, reproducing the 6502 indirect
// jump bug.
func (c *CPU) read16wrap(addr uint16) uint16 {
	lo := c.bus.Read8(addr)
	hiaddr := addr&0xFF00 | uint16(uint8(addr)+1)
	hi := c.bus.Read8(hiaddr)
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	c.bus.Write8(0x0100+uint16(c.SP), val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.bus.Read8(0x0100 + uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* interrupt handling */

type irqSource uint8

const (
	external irqSource = 1 << iota
	frameCounter
	dmcSource
)

// setIrqSource asserts a level-sensitive interrupt line. The line stays
// asserted until cleared by its owner.
func (c *CPU) setIrqSource(src irqSource)      { c.irqFlag |= src }
func (c *CPU) hasIrqSource(src irqSource) bool { return (c.irqFlag & src) != 0 }
func (c *CPU) clearIrqSource(src irqSource)    { c.irqFlag &= ^src }

// TriggerNMI latches an NMI edge. The interrupt is serviced at the next
// instruction boundary and is not maskable.
func (c *CPU) TriggerNMI() {
	c.needNmi = true
}

func (c *CPU) interrupt(vector uint16) {
	c.push16(c.PC)

	p := c.P
	p.setFlags(Reserved)
	p.clearFlags(Break)
	c.push8(uint8(p))

	c.P.setFlags(Interrupt)
	c.PC = c.read16(vector)
	c.Cycles += 7
}

// brk enters the interrupt handler with the break flag pushed as set. An NMI
// raised while the break sequence runs hijacks its vector.
func (c *CPU) brk() {
	c.push16(c.PC + 1)

	p := c.P
	p.setFlags(Break | Reserved)
	c.push8(uint8(p))
	c.P.setFlags(Interrupt)

	if c.needNmi {
		c.needNmi = false
		c.PC = c.read16(NMIVector)
	} else {
		c.PC = c.read16(IRQVector)
	}
}

/* tracing */

func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, cpu: c}
}

func (c *CPU) traceOp() {
	if c.tracer != nil {
		c.tracer.write()
	}
}
