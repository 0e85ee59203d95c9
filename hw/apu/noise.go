package apu

import "famicore/hw/snapshot"

// Noise generates pseudo-random 1-bit noise at 16 frequencies from a
// 15-bit linear feedback shift register.
//
//	      Timer --> Shift Register   Length Counter
//	                    |                |
//	                    v                v
//	Envelope -------> Gate ----------> Gate --> (to mixer)
type Noise struct {
	out output
	env envelope

	shiftReg uint16
	mode     bool
	period   uint16
	timer    uint16
}

func NewNoise(m Mixer) *Noise {
	return &Noise{
		out:      output{ch: ChanNoise, mixer: m},
		shiftReg: 1,
		period:   noisePeriodLUT[0] - 1,
	}
}

// Timer periods in CPU cycles.
var noisePeriodLUT = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// WriteControl handles $400C: the envelope register.
func (n *Noise) WriteControl(val uint8) {
	n.env.write(val)
}

// WritePeriod handles $400E: mode flag and timer period index.
func (n *Noise) WritePeriod(val uint8) {
	n.period = noisePeriodLUT[val&0x0F] - 1
	n.mode = val&0x80 != 0
}

// WriteLength handles $400F: length counter load, envelope restart.
func (n *Noise) WriteLength(val uint8) {
	n.env.lc.load(val >> 3)
	n.env.restart()
}

// Tick advances the channel by one CPU cycle.
func (n *Noise) Tick(time uint32) {
	if n.timer > 0 {
		n.timer--
		return
	}
	n.timer = n.period

	// Feedback is the exclusive-OR of bit 0 and bit 6 (mode set) or
	// bit 1 (mode clear).
	modebit := 1
	if n.mode {
		modebit = 6
	}
	feedback := n.shiftReg&0x01 ^ n.shiftReg>>modebit&0x01
	n.shiftReg >>= 1
	n.shiftReg |= feedback << 14

	if n.shiftReg&0x01 != 0 {
		n.out.set(time, 0)
	} else {
		n.out.set(time, int8(n.env.level()))
	}
}

// TickEnvelope is the quarter-frame clock.
func (n *Noise) TickEnvelope() { n.env.tick() }

// TickLength is the half-frame clock of the length counter.
func (n *Noise) TickLength() { n.env.lc.tick() }

func (n *Noise) SetEnabled(enabled bool) {
	n.env.lc.setEnabled(enabled)
}

// Active reports whether the length counter is nonzero.
func (n *Noise) Active() bool {
	return n.env.lc.active()
}

// Output is the current DAC level.
func (n *Noise) Output() uint8 {
	return uint8(n.out.last)
}

func (n *Noise) Reset(soft bool) {
	n.env.reset(soft)
	n.out.last = 0

	n.shiftReg = 1
	n.mode = false
	n.period = noisePeriodLUT[0] - 1
	n.timer = 0
}

func (n *Noise) SaveState(w *snapshot.Writer) {
	n.env.saveState(w)
	w.I8(n.out.last)
	w.U16(n.shiftReg)
	w.Bool(n.mode)
	w.U16(n.period)
	w.U16(n.timer)
}

func (n *Noise) LoadState(r *snapshot.Reader) {
	n.env.loadState(r)
	n.out.last = r.I8()
	n.shiftReg = r.U16()
	n.mode = r.Bool()
	n.period = r.U16()
	n.timer = r.U16()
}
