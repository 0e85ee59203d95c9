package hw

import (
	"famicore/emu/log"
	"famicore/hw/apu"
	"famicore/hw/snapshot"
)

// APU glues the sound channels together: it dispatches register writes,
// drives the frame counter sequencer and clocks every channel once per CPU
// cycle.
type APU struct {
	cpu   *CPU
	mixer *AudioMixer

	sq1   *apu.Square
	sq2   *apu.Square
	tri   *apu.Triangle
	noise *apu.Noise
	dmc   *DMC

	// CPU cycles into the current audio frame, used to timestamp the
	// channel output deltas.
	cycle uint32

	fcCycle   int32
	fcStep    int
	fcMode    int
	fcInhibit bool
	fcNewval  uint8
	fcDelay   int8
}

func NewAPU(cpu *CPU, dma *DMA, mixer *AudioMixer) *APU {
	a := &APU{
		cpu:   cpu,
		mixer: mixer,
		sq1:   apu.NewSquare(mixer, apu.ChanSquare1, true),
		sq2:   apu.NewSquare(mixer, apu.ChanSquare2, false),
		tri:   apu.NewTriangle(mixer),
		noise: apu.NewNoise(mixer),
	}
	a.dmc = newDMC(cpu, dma, mixer)
	return a
}

// cycle counts of each frame counter step, for the 4-step and 5-step
// sequences.
var frameSteps = [2][6]int32{
	{7457, 14913, 22371, 29828, 29829, 29830},
	{7457, 14913, 22371, 29829, 37281, 37282},
}

// WriteReg dispatches a write to one of the $4000-$4017 registers.
func (a *APU) WriteReg(addr uint16, val uint8) {
	if log.ModSound.Enabled(log.DebugLevel) {
		log.ModSound.DebugZ("write register").Hex16("addr", addr).Hex8("val", val).End()
	}

	switch addr {
	case 0x4000:
		a.sq1.WriteControl(val)
	case 0x4001:
		a.sq1.WriteSweep(val)
	case 0x4002:
		a.sq1.WriteTimerLow(val)
	case 0x4003:
		a.sq1.WriteTimerHigh(val)
	case 0x4004:
		a.sq2.WriteControl(val)
	case 0x4005:
		a.sq2.WriteSweep(val)
	case 0x4006:
		a.sq2.WriteTimerLow(val)
	case 0x4007:
		a.sq2.WriteTimerHigh(val)
	case 0x4008:
		a.tri.WriteLinear(val)
	case 0x400A:
		a.tri.WriteTimerLow(val)
	case 0x400B:
		a.tri.WriteTimerHigh(val)
	case 0x400C:
		a.noise.WriteControl(val)
	case 0x400E:
		a.noise.WritePeriod(val)
	case 0x400F:
		a.noise.WriteLength(val)
	case 0x4010:
		a.dmc.writeFlags(val)
	case 0x4011:
		a.dmc.writeLoad(val, a.cycle)
	case 0x4012:
		a.dmc.writeSampleAddr(val)
	case 0x4013:
		a.dmc.writeSampleLen(val)
	case 0x4015:
		a.writeStatus(val)
	case 0x4017:
		a.writeFrameCounter(val)
	}
}

// writeStatus handles $4015: per-channel enable bits. Disabling a channel
// clears its length counter, enabling the DMC restarts its sample if it
// had finished. The DMC interrupt flag is cleared either way.
func (a *APU) writeStatus(val uint8) {
	a.cpu.clearIrqSource(dmcSource)

	a.sq1.SetEnabled(val&0x01 != 0)
	a.sq2.SetEnabled(val&0x02 != 0)
	a.tri.SetEnabled(val&0x04 != 0)
	a.noise.SetEnabled(val&0x08 != 0)
	a.dmc.setEnabled(val&0x10 != 0)
}

// status composes the $4015 value: length counter status of each channel,
// DMC sample activity and the two interrupt flags.
func (a *APU) status() uint8 {
	var st uint8
	if a.sq1.Active() {
		st |= 0x01
	}
	if a.sq2.Active() {
		st |= 0x02
	}
	if a.tri.Active() {
		st |= 0x04
	}
	if a.noise.Active() {
		st |= 0x08
	}
	if a.dmc.active() {
		st |= 0x10
	}
	if a.cpu.hasIrqSource(frameCounter) {
		st |= 0x40
	}
	if a.cpu.hasIrqSource(dmcSource) {
		st |= 0x80
	}
	return st
}

// ReadStatus handles $4015 reads, which clear the frame interrupt flag.
func (a *APU) ReadStatus() uint8 {
	st := a.status()
	a.cpu.clearIrqSource(frameCounter)
	return st
}

// PeekStatus is ReadStatus without the side effect.
func (a *APU) PeekStatus() uint8 {
	return a.status()
}

// writeFrameCounter handles $4017. The mode switch lands 3 or 4 cycles
// after the write depending on its parity; setting the inhibit bit clears
// a pending frame interrupt at once.
func (a *APU) writeFrameCounter(val uint8) {
	a.fcNewval = val
	if a.cpu.Cycles&0x01 != 0 {
		a.fcDelay = 4
	} else {
		a.fcDelay = 3
	}
	a.fcInhibit = val&0x40 != 0
	if a.fcInhibit {
		a.cpu.clearIrqSource(frameCounter)
	}
}

// Tick advances the whole APU by one CPU cycle.
func (a *APU) Tick() {
	a.cycle++
	a.tickFrameCounter()

	a.sq1.Tick(a.cycle)
	a.sq2.Tick(a.cycle)
	a.tri.Tick(a.cycle)
	a.noise.Tick(a.cycle)
	a.dmc.tick(a.cycle)
}

func (a *APU) tickFrameCounter() {
	if a.fcDelay > 0 {
		a.fcDelay--
		if a.fcDelay == 0 {
			a.fcMode = int(a.fcNewval >> 7)
			a.fcStep = 0
			a.fcCycle = 0
			if a.fcMode == 1 {
				// Switching to 5-step mode clocks the sequencer units
				// immediately.
				a.clockQuarterFrame()
				a.clockHalfFrame()
			}
		}
	}

	a.fcCycle++
	if a.fcCycle < frameSteps[a.fcMode][a.fcStep] {
		return
	}

	// The frame interrupt flag is raised on the last three steps of the
	// 4-step sequence.
	if a.fcMode == 0 && a.fcStep >= 3 && !a.fcInhibit {
		a.cpu.setIrqSource(frameCounter)
	}

	switch a.fcStep {
	case 0, 2:
		a.clockQuarterFrame()
	case 1, 4:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	}

	a.fcStep++
	if a.fcStep == 6 {
		a.fcStep = 0
		a.fcCycle = 0
	}
}

func (a *APU) clockQuarterFrame() {
	a.sq1.TickEnvelope()
	a.sq2.TickEnvelope()
	a.tri.TickLinear()
	a.noise.TickEnvelope()
}

func (a *APU) clockHalfFrame() {
	a.sq1.TickLength()
	a.sq2.TickLength()
	a.tri.TickLength()
	a.noise.TickLength()
	a.sq1.TickSweep()
	a.sq2.TickSweep()
}

// EndFrame flushes the accumulated output deltas into audio samples and
// restarts the frame clock.
func (a *APU) EndFrame() {
	a.mixer.PlayAudioBuffer(a.cycle)
	a.cycle = 0
}

// Reset puts the APU back in its power-up or post-reset state. As on
// hardware, it behaves as if $00 had been written to $4017 shortly before
// the first instruction runs.
func (a *APU) Reset(soft bool) {
	a.sq1.Reset(soft)
	a.sq2.Reset(soft)
	a.tri.Reset(soft)
	a.noise.Reset(soft)
	a.dmc.reset(soft)

	a.cycle = 0

	a.fcCycle = 0
	a.fcStep = 0
	if !soft {
		a.fcMode = 0
	}
	a.fcNewval = 0
	if a.fcMode != 0 {
		a.fcNewval = 0x80
	}
	a.fcDelay = 3
	a.fcInhibit = false
}

func (a *APU) saveState(w *snapshot.Writer) {
	a.sq1.SaveState(w)
	a.sq2.SaveState(w)
	a.tri.SaveState(w)
	a.noise.SaveState(w)
	a.dmc.saveState(w)

	w.U32(a.cycle)
	w.I32(a.fcCycle)
	w.U8(uint8(a.fcStep))
	w.U8(uint8(a.fcMode))
	w.Bool(a.fcInhibit)
	w.U8(a.fcNewval)
	w.I8(a.fcDelay)
}

func (a *APU) loadState(r *snapshot.Reader) {
	a.sq1.LoadState(r)
	a.sq2.LoadState(r)
	a.tri.LoadState(r)
	a.noise.LoadState(r)
	a.dmc.loadState(r)

	a.cycle = r.U32()
	a.fcCycle = r.I32()
	a.fcStep = int(r.U8())
	a.fcMode = int(r.U8())
	a.fcInhibit = r.Bool()
	a.fcNewval = r.U8()
	a.fcDelay = r.I8()
}
