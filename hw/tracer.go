package hw

import (
	"fmt"
	"io"
)

// tracer writes one line per executed instruction in the format used by
// reference execution logs: address, raw bytes, disassembly, then registers.
type tracer struct {
	cpu *CPU
	w   io.Writer
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// write the execution trace for the instruction at PC.
func (t *tracer) write() {
	c := t.cpu
	dis := c.Disasm(c.PC)

	buf := dis.Bytes()
	for len(buf) < 48 {
		buf = append(buf, ' ')
	}

	buf = fmt.Appendf(buf, "A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		c.A, c.X, c.Y, uint8(c.P), c.SP, c.Cycles)
	t.w.Write(buf)
}

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

// Disasm decodes the instruction at pc without bus side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	opcode := c.bus.Peek8(pc)
	in := &c.instrs[opcode]

	raw := make([]byte, in.size)
	for i := range raw {
		raw[i] = c.bus.Peek8(pc + uint16(i))
	}

	var oper string
	switch in.mode {
	case imp:
	case acc:
		oper = "A"
	case imm:
		oper = fmt.Sprintf("#$%02X", raw[1])
	case zpg:
		oper = fmt.Sprintf("$%02X", raw[1])
	case zpx:
		oper = fmt.Sprintf("$%02X,X", raw[1])
	case zpy:
		oper = fmt.Sprintf("$%02X,Y", raw[1])
	case rel:
		target := pc + 2 + uint16(raw[1])
		if raw[1] >= 0x80 {
			target -= 0x100
		}
		oper = fmt.Sprintf("$%04X", target)
	case abs:
		oper = fmt.Sprintf("$%02X%02X", raw[2], raw[1])
	case abx:
		oper = fmt.Sprintf("$%02X%02X,X", raw[2], raw[1])
	case aby:
		oper = fmt.Sprintf("$%02X%02X,Y", raw[2], raw[1])
	case ind:
		oper = fmt.Sprintf("($%02X%02X)", raw[2], raw[1])
	case izx:
		oper = fmt.Sprintf("($%02X,X)", raw[1])
	case izy:
		oper = fmt.Sprintf("($%02X),Y", raw[1])
	}

	return DisasmOp{Opcode: in.name, Oper: oper, Buf: raw, PC: pc}
}

// Bytes returns the string representation of a DisasmOp, an optimized
// version suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	off += copy(buf[off:], []byte(d.Opcode))
	if d.Oper != "" {
		buf[off] = ' '
		off++
		buf = append(buf[:off], d.Oper...)
		off += len(d.Oper)
	}

	if off > totalLen {
		return buf[:off]
	}
	buf = buf[:totalLen]
	for i := off; i < totalLen; i++ {
		buf[i] = ' '
	}
	return buf
}
