package hw

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestTraceFormat(t *testing.T) {
	cpu, _ := newTestCPU(0xA9, 0x32) // LDA #$32
	var out bytes.Buffer
	cpu.SetTraceOutput(&out)
	cpu.Step()

	want := fmt.Sprintf("%-48s", "8000  A9 32     LDA #$32") +
		"A:00 X:00 Y:00 P:24 SP:FD CYC:0\n"
	if out.String() != want {
		t.Errorf("trace line\ngot:  %q\nwant: %q", out.String(), want)
	}
}

func TestTraceRegistersFollowExecution(t *testing.T) {
	cpu, _ := newTestCPU(0xA9, 0x32, 0xAA) // LDA #$32, TAX
	var out bytes.Buffer
	cpu.SetTraceOutput(&out)
	cpu.Step()
	cpu.Step()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d trace lines, want 2", len(lines))
	}
	// The second line shows the state before TAX runs: A loaded, X not yet.
	if !strings.Contains(lines[1], "A:32 X:00") {
		t.Errorf("second line = %q, want A:32 X:00", lines[1])
	}
	if !strings.Contains(lines[1], "CYC:2") {
		t.Errorf("second line = %q, want CYC:2", lines[1])
	}
}

func TestDisasmModes(t *testing.T) {
	cases := []struct {
		prog []uint8
		want string
	}{
		{[]uint8{0xA9, 0x44}, "LDA #$44"},
		{[]uint8{0xA5, 0x44}, "LDA $44"},
		{[]uint8{0xB5, 0x44}, "LDA $44,X"},
		{[]uint8{0xAD, 0x34, 0x12}, "LDA $1234"},
		{[]uint8{0xBD, 0x34, 0x12}, "LDA $1234,X"},
		{[]uint8{0xB9, 0x34, 0x12}, "LDA $1234,Y"},
		{[]uint8{0x6C, 0x34, 0x12}, "JMP ($1234)"},
		{[]uint8{0xA1, 0x44}, "LDA ($44,X)"},
		{[]uint8{0xB1, 0x44}, "LDA ($44),Y"},
		{[]uint8{0x0A}, "ASL A"},
		{[]uint8{0xEA}, "NOP"},
		{[]uint8{0xD0, 0x02}, "BNE $8004"},
		{[]uint8{0xD0, 0xFE}, "BNE $8000"},
	}
	for _, tc := range cases {
		cpu, _ := newTestCPU(tc.prog...)
		dis := cpu.Disasm(0x8000)
		got := dis.Opcode
		if dis.Oper != "" {
			got += " " + dis.Oper
		}
		if got != tc.want {
			t.Errorf("Disasm(% x) = %q, want %q", tc.prog, got, tc.want)
		}
	}
}

func TestDisasmNoSideEffects(t *testing.T) {
	nes := newTestNES(t, func(prg []byte) {
		prg[0x0000] = 0xAD // LDA $2002
		prg[0x0001] = 0x02
		prg[0x0002] = 0x20
	})

	// Put the PPU in vblank, then disassemble the $2002 read: the status
	// flags must not be touched.
	nes.PPU.Tick()
	nes.PPU.Tick()
	_ = nes.CPU.Disasm(0x8000)
	if got := nes.PPU.PeekReg(0x2002); got&0x80 == 0 {
		t.Error("disassembly must not clear the vblank flag")
	}
}
