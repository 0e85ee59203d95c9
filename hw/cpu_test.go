package hw

import "testing"

func TestPflagString(t *testing.T) {
	if got := P(0x24).String(); got != "nvUbdIzc" {
		t.Errorf("P(0x24) = %q, want %q", got, "nvUbdIzc")
	}
	if got := P(0xFF).String(); got != "NVUBDIZC" {
		t.Errorf("P(0xFF) = %q, want %q", got, "NVUBDIZC")
	}
}

func TestImmediateLoad(t *testing.T) {
	cpu, _ := newTestCPU(0xA9, 0x32) // LDA #$32
	if cycles := cpu.Step(); cycles != 2 {
		t.Errorf("LDA #imm took %d cycles, want 2", cycles)
	}
	if cpu.A != 0x32 {
		t.Errorf("A = %#02x, want 0x32", cpu.A)
	}
	if cpu.P.hasFlag(Zero) || cpu.P.hasFlag(Negative) {
		t.Errorf("P = %s, Z and N should be clear", cpu.P)
	}

	cpu, _ = newTestCPU(0xA9, 0x00)
	cpu.Step()
	if !cpu.P.hasFlag(Zero) {
		t.Errorf("P = %s, Z should be set", cpu.P)
	}

	cpu, _ = newTestCPU(0xA9, 0x80)
	cpu.Step()
	if !cpu.P.hasFlag(Negative) {
		t.Errorf("P = %s, N should be set", cpu.P)
	}
}

func TestIndexedPageCross(t *testing.T) {
	// LDA $80F0,X with X=$20 lands in the next page: one extra cycle.
	cpu, mem := newTestCPU(0xBD, 0xF0, 0x80)
	cpu.X = 0x20
	mem[0x8110] = 0x42
	if cycles := cpu.Step(); cycles != 5 {
		t.Errorf("LDA abs,X with page cross took %d cycles, want 5", cycles)
	}
	if cpu.A != 0x42 {
		t.Errorf("A = %#02x, want 0x42", cpu.A)
	}

	// Same page: base cost.
	cpu, mem = newTestCPU(0xBD, 0x00, 0x80)
	cpu.X = 0x10
	mem[0x8010] = 0x07
	if cycles := cpu.Step(); cycles != 4 {
		t.Errorf("LDA abs,X without page cross took %d cycles, want 4", cycles)
	}

	// Stores never get the discount, 0x9D has no page cycles to add.
	cpu, mem = newTestCPU(0x9D, 0xF0, 0x80)
	cpu.A = 0x55
	cpu.X = 0x20
	if cycles := cpu.Step(); cycles != 5 {
		t.Errorf("STA abs,X took %d cycles, want 5", cycles)
	}
	if mem[0x8110] != 0x55 {
		t.Errorf("mem[0x8110] = %#02x, want 0x55", mem[0x8110])
	}
}

func TestBranchCycles(t *testing.T) {
	// Not taken: 2 cycles.
	cpu, _ := newTestCPU(0xD0, 0x02) // BNE +2
	cpu.P.setFlags(Zero)
	if cycles := cpu.Step(); cycles != 2 {
		t.Errorf("untaken branch took %d cycles, want 2", cycles)
	}
	if cpu.PC != 0x8002 {
		t.Errorf("PC = %#04x, want 0x8002", cpu.PC)
	}

	// Taken, same page: 3 cycles.
	cpu, _ = newTestCPU(0xD0, 0x02)
	if cycles := cpu.Step(); cycles != 3 {
		t.Errorf("taken branch took %d cycles, want 3", cycles)
	}
	if cpu.PC != 0x8004 {
		t.Errorf("PC = %#04x, want 0x8004", cpu.PC)
	}

	// Taken across a page boundary: 4 cycles.
	cpu, _ = newTestCPU(0xD0, 0xFD) // BNE -3
	if cycles := cpu.Step(); cycles != 4 {
		t.Errorf("page-crossing branch took %d cycles, want 4", cycles)
	}
	if cpu.PC != 0x7FFF {
		t.Errorf("PC = %#04x, want 0x7FFF", cpu.PC)
	}
}

func TestIndirectJumpBug(t *testing.T) {
	// JMP ($02FF): the pointer high byte is fetched from $0200, not $0300.
	cpu, mem := newTestCPU(0x6C, 0xFF, 0x02)
	mem[0x02FF] = 0x34
	mem[0x0200] = 0x12
	mem[0x0300] = 0xFF // must not be used
	cpu.Step()
	if cpu.PC != 0x1234 {
		t.Errorf("PC = %#04x, want 0x1234", cpu.PC)
	}
}

func TestRMWDummyWrite(t *testing.T) {
	// INC writes the unmodified value back before the result. A recording
	// bus observes both writes.
	type write struct {
		addr uint16
		val  uint8
	}
	mem := new(flatBus)
	mem[0x8000] = 0xEE // INC abs
	mem[0x8001] = 0x10
	mem[0x8002] = 0x00
	mem[0x0010] = 0x41

	bus := &recordingBus{mem: mem}
	cpu := NewCPU(bus)
	cpu.PC = 0x8000
	cpu.Step()

	want := []write{{0x0010, 0x41}, {0x0010, 0x42}}
	if len(bus.writes) != len(want) {
		t.Fatalf("got %d writes, want %d", len(bus.writes), len(want))
	}
	for i := range want {
		if bus.writes[i] != [2]uint16{want[i].addr, uint16(want[i].val)} {
			t.Errorf("write %d = %v, want %04x:%02x", i, bus.writes[i], want[i].addr, want[i].val)
		}
	}
}

type recordingBus struct {
	mem    *flatBus
	writes [][2]uint16
}

func (b *recordingBus) Read8(addr uint16) uint8 { return b.mem.Read8(addr) }
func (b *recordingBus) Peek8(addr uint16) uint8 { return b.mem.Peek8(addr) }
func (b *recordingBus) Write8(addr uint16, val uint8) {
	b.writes = append(b.writes, [2]uint16{addr, uint16(val)})
	b.mem.Write8(addr, val)
}

func TestStack(t *testing.T) {
	cpu, mem := newTestCPU(0x48, 0xA9, 0x00, 0x68) // PHA, LDA #0, PLA
	cpu.A = 0x7B
	sp := cpu.SP

	cpu.Step()
	if cpu.SP != sp-1 {
		t.Errorf("SP = %#02x after push, want %#02x", cpu.SP, sp-1)
	}
	if mem[0x0100+uint16(sp)] != 0x7B {
		t.Errorf("stack top = %#02x, want 0x7B", mem[0x0100+uint16(sp)])
	}

	cpu.Step()
	cpu.Step()
	if cpu.A != 0x7B {
		t.Errorf("A = %#02x after pull, want 0x7B", cpu.A)
	}
	if cpu.SP != sp {
		t.Errorf("SP = %#02x after pull, want %#02x", cpu.SP, sp)
	}
}

func TestADCOverflow(t *testing.T) {
	cases := []struct {
		a, val  uint8
		carry   bool
		wantA   uint8
		wantC   bool
		wantV   bool
	}{
		{0x50, 0x10, false, 0x60, false, false},
		{0x50, 0x50, false, 0xA0, false, true},
		{0xD0, 0x90, false, 0x60, true, true},
		{0xFF, 0x01, false, 0x00, true, false},
		{0xFF, 0x00, true, 0x00, true, false},
	}
	for _, tc := range cases {
		cpu, _ := newTestCPU(0x69, tc.val) // ADC #imm
		cpu.A = tc.a
		cpu.P.setFlag(Carry, tc.carry)
		cpu.Step()
		if cpu.A != tc.wantA {
			t.Errorf("%#02x + %#02x: A = %#02x, want %#02x", tc.a, tc.val, cpu.A, tc.wantA)
		}
		if cpu.P.hasFlag(Carry) != tc.wantC {
			t.Errorf("%#02x + %#02x: C = %t, want %t", tc.a, tc.val, cpu.P.hasFlag(Carry), tc.wantC)
		}
		if cpu.P.hasFlag(Overflow) != tc.wantV {
			t.Errorf("%#02x + %#02x: V = %t, want %t", tc.a, tc.val, cpu.P.hasFlag(Overflow), tc.wantV)
		}
	}
}

func TestNMI(t *testing.T) {
	cpu, mem := newTestCPU(0xA9, 0x01) // LDA #1, never reached
	mem[NMIVector] = 0x00
	mem[NMIVector+1] = 0x90

	cpu.TriggerNMI()
	if cycles := cpu.Step(); cycles != 7 {
		t.Errorf("NMI entry took %d cycles, want 7", cycles)
	}
	if cpu.PC != 0x9000 {
		t.Errorf("PC = %#04x, want 0x9000", cpu.PC)
	}
	if !cpu.P.hasFlag(Interrupt) {
		t.Errorf("I flag should be set inside the handler")
	}

	// The pushed status must have B clear.
	pushed := mem[0x0100+uint16(cpu.SP)+1]
	if pushed&Break != 0 {
		t.Errorf("pushed P = %#02x, B should be clear", pushed)
	}
}

func TestIRQMasking(t *testing.T) {
	cpu, mem := newTestCPU(0xA9, 0x01, 0xA9, 0x02)
	mem[IRQVector] = 0x00
	mem[IRQVector+1] = 0xA0

	// Level asserted but I set: the instruction runs normally.
	cpu.P.setFlags(Interrupt)
	cpu.setIrqSource(external)
	cpu.Step()
	if cpu.PC != 0x8002 {
		t.Errorf("PC = %#04x, IRQ should be masked", cpu.PC)
	}

	// I cleared: the interrupt is serviced before the next instruction.
	cpu.P.clearFlags(Interrupt)
	if cycles := cpu.Step(); cycles != 7 {
		t.Errorf("IRQ entry took %d cycles, want 7", cycles)
	}
	if cpu.PC != 0xA000 {
		t.Errorf("PC = %#04x, want 0xA000", cpu.PC)
	}

	// The line is level-sensitive: still pending after the handler
	// clears I, until the source is cleared.
	if !cpu.hasIrqSource(external) {
		t.Errorf("irq line should still be asserted")
	}
}

func TestSTPJamsCPU(t *testing.T) {
	cpu, _ := newTestCPU(0x02) // STP
	cpu.Step()
	if !cpu.IsHalted() {
		t.Fatal("CPU should be halted after STP")
	}
	pc := cpu.PC
	if cycles := cpu.Step(); cycles != 0 {
		t.Errorf("halted CPU stepped %d cycles, want 0", cycles)
	}
	if cpu.PC != pc {
		t.Errorf("halted CPU moved PC from %#04x to %#04x", pc, cpu.PC)
	}

	cpu.Reset(true)
	if cpu.IsHalted() {
		t.Error("reset should clear the halt")
	}
}

func TestUnofficialLAX(t *testing.T) {
	cpu, mem := newTestCPU(0xA7, 0x10) // LAX zpg
	mem[0x0010] = 0xC3
	cpu.Step()
	if cpu.A != 0xC3 || cpu.X != 0xC3 {
		t.Errorf("A = %#02x, X = %#02x, both want 0xC3", cpu.A, cpu.X)
	}
	if !cpu.P.hasFlag(Negative) {
		t.Errorf("P = %s, N should be set", cpu.P)
	}
}
