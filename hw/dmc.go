package hw

import (
	"famicore/emu/log"
	"famicore/hw/apu"
	"famicore/hw/snapshot"
)

// DMC plays samples made of 1-bit deltas fetched from CPU memory. Each
// fetch goes through the DMA unit, which stalls the CPU for the stolen
// cycles.
//
//	+----------+    +---------+
//	|DMA Reader|    |  Timer  |
//	+----------+    +---------+
//	     |               |
//	     |               v
//	+----------+    +---------+     +---------+     +---------+
//	|  Buffer  |----| Output  |---->| Counter |---->|   DAC   |
//	+----------+    +---------+     +---------+     +---------+
type DMC struct {
	cpu   *CPU
	dma   *DMA
	mixer *AudioMixer

	lastOut int8

	irqEnabled bool
	loop       bool
	period     uint16
	timer      uint16
	level      uint8

	sampleAddr uint16
	sampleLen  uint16
	curAddr    uint16
	remaining  uint16

	readBuf  uint8
	bufEmpty bool

	shiftReg uint8
	bitsLeft uint8
	silence  bool
}

// Timer periods in CPU cycles, minus one for the countdown.
var dmcPeriodLUT = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

func newDMC(cpu *CPU, dma *DMA, mixer *AudioMixer) *DMC {
	return &DMC{
		cpu:      cpu,
		dma:      dma,
		mixer:    mixer,
		silence:  true,
		bufEmpty: true,
		bitsLeft: 8,
		period:   dmcPeriodLUT[0] - 1,
		timer:    dmcPeriodLUT[0] - 1,
	}
}

func (d *DMC) reset(soft bool) {
	if !soft {
		d.sampleAddr = 0xC000
		d.sampleLen = 1
	}

	d.lastOut = 0
	d.irqEnabled = false
	d.loop = false
	d.level = 0

	d.curAddr = 0
	d.remaining = 0
	d.readBuf = 0
	d.bufEmpty = true

	d.shiftReg = 0
	d.bitsLeft = 8
	d.silence = true

	d.period = dmcPeriodLUT[0] - 1

	// Keeps the timer from clocking on the very first cycle.
	d.timer = d.period
}

// writeFlags handles $4010: IRQ enable, loop flag and timer period.
func (d *DMC) writeFlags(val uint8) {
	d.irqEnabled = val&0x80 != 0
	d.loop = val&0x40 != 0
	d.period = dmcPeriodLUT[val&0x0F] - 1
	if !d.irqEnabled {
		d.cpu.clearIrqSource(dmcSource)
	}
}

// writeLoad handles $4011: direct 7-bit DAC load, applied right away.
func (d *DMC) writeLoad(val uint8, time uint32) {
	d.level = val & 0x7F
	d.addOutput(time, int8(d.level))
}

// writeSampleAddr handles $4012: sample start is $C000 + 64*val.
func (d *DMC) writeSampleAddr(val uint8) {
	d.sampleAddr = 0xC000 | uint16(val)<<6
}

// writeSampleLen handles $4013: sample length is 16*val + 1 bytes.
func (d *DMC) writeSampleLen(val uint8) {
	d.sampleLen = uint16(val)<<4 | 1
}

func (d *DMC) setEnabled(enabled bool) {
	if !enabled {
		d.remaining = 0
		return
	}
	if d.remaining == 0 {
		d.restartSample()
		d.fillBuffer()
	}
}

func (d *DMC) active() bool {
	return d.remaining > 0
}

func (d *DMC) restartSample() {
	d.curAddr = d.sampleAddr
	d.remaining = d.sampleLen
}

// fillBuffer fetches the next sample byte when the buffer is empty and
// bytes remain. The fetch halts the CPU through the DMA unit.
func (d *DMC) fillBuffer() {
	if !d.bufEmpty || d.remaining == 0 {
		return
	}

	d.readBuf = d.dma.runDMCFetch(d.curAddr)
	d.bufEmpty = false

	if d.curAddr == 0xFFFF {
		d.curAddr = 0x8000
	} else {
		d.curAddr++
	}

	d.remaining--
	if d.remaining == 0 {
		if d.loop {
			d.restartSample()
		} else if d.irqEnabled {
			d.cpu.setIrqSource(dmcSource)
			log.ModSound.DebugZ("sample finished, IRQ raised").End()
		}
	}
}

// tick advances the channel by one CPU cycle.
func (d *DMC) tick(time uint32) {
	if d.timer > 0 {
		d.timer--
		return
	}
	d.timer = d.period

	if !d.silence {
		if d.shiftReg&0x01 != 0 {
			if d.level <= 125 {
				d.level += 2
			}
		} else if d.level >= 2 {
			d.level -= 2
		}
		d.addOutput(time, int8(d.level))
	}
	d.shiftReg >>= 1

	d.bitsLeft--
	if d.bitsLeft == 0 {
		d.bitsLeft = 8
		if d.bufEmpty {
			d.silence = true
		} else {
			d.silence = false
			d.shiftReg = d.readBuf
			d.bufEmpty = true
			d.fillBuffer()
		}
	}
}

func (d *DMC) output() uint8 {
	return d.level
}

func (d *DMC) addOutput(time uint32, level int8) {
	if level == d.lastOut {
		return
	}
	d.mixer.AddDelta(apu.ChanDMC, time, int16(level-d.lastOut))
	d.lastOut = level
}

func (d *DMC) saveState(w *snapshot.Writer) {
	w.I8(d.lastOut)
	w.Bool(d.irqEnabled)
	w.Bool(d.loop)
	w.U16(d.period)
	w.U16(d.timer)
	w.U8(d.level)
	w.U16(d.sampleAddr)
	w.U16(d.sampleLen)
	w.U16(d.curAddr)
	w.U16(d.remaining)
	w.U8(d.readBuf)
	w.Bool(d.bufEmpty)
	w.U8(d.shiftReg)
	w.U8(d.bitsLeft)
	w.Bool(d.silence)
}

func (d *DMC) loadState(r *snapshot.Reader) {
	d.lastOut = r.I8()
	d.irqEnabled = r.Bool()
	d.loop = r.Bool()
	d.period = r.U16()
	d.timer = r.U16()
	d.level = r.U8()
	d.sampleAddr = r.U16()
	d.sampleLen = r.U16()
	d.curAddr = r.U16()
	d.remaining = r.U16()
	d.readBuf = r.U8()
	d.bufEmpty = r.Bool()
	d.shiftReg = r.U8()
	d.bitsLeft = r.U8()
	d.silence = r.Bool()
}
