package apu

import "famicore/hw/snapshot"

// Triangle is the triangle wave channel: a timer, a 32-step sequencer, a
// length counter and a linear counter feeding a 4-bit DAC.
//
//	+---------+    +---------+
//	|LinearCtr|    | Length  |
//	+---------+    +---------+
//	     |              |
//	     v              v
//	+---------+        |\             |\         +---------+    +---------+
//	|  Timer  |------->| >----------->| >------->|Sequencer|--->|   DAC   |
//	+---------+        |/             |/         +---------+    +---------+
type Triangle struct {
	out output
	lc  lengthCounter

	linearCounter uint8
	linearReload  uint8
	reloadFlag    bool
	control       bool

	pos    uint8 // position in triangleSequence
	period uint16
	timer  uint16
}

func NewTriangle(m Mixer) *Triangle {
	return &Triangle{
		out: output{ch: ChanTriangle, mixer: m},
	}
}

var triangleSequence = [32]int8{
	15, 14, 13, 12, 11, 10, 9, 8,
	7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

// WriteLinear handles $4008: control flag and linear counter reload value.
func (t *Triangle) WriteLinear(val uint8) {
	t.control = val&0x80 != 0
	t.linearReload = val & 0x7F
	t.lc.setHalt(t.control)
}

// WriteTimerLow handles $400A.
func (t *Triangle) WriteTimerLow(val uint8) {
	t.period = t.period&0xFF00 | uint16(val)
}

// WriteTimerHigh handles $400B: top period bits and the length counter
// load. Sets the linear counter reload flag as a side effect.
func (t *Triangle) WriteTimerHigh(val uint8) {
	t.lc.load(val >> 3)
	t.period = t.period&0x00FF | uint16(val&0x07)<<8
	t.reloadFlag = true
}

// Tick advances the channel by one CPU cycle. The sequencer steps as long
// as both the linear counter and the length counter are nonzero.
func (t *Triangle) Tick(time uint32) {
	if t.timer > 0 {
		t.timer--
		return
	}
	t.timer = t.period
	if !t.lc.active() || t.linearCounter == 0 {
		return
	}
	t.pos = (t.pos + 1) & 0x1F

	// Periods below 2 produce ultrasonic frequencies which come out as
	// pops, skip the DAC update for those.
	if t.period >= 2 {
		t.out.set(time, triangleSequence[t.pos])
	}
}

// TickLinear is the quarter-frame clock of the linear counter.
func (t *Triangle) TickLinear() {
	if t.reloadFlag {
		t.linearCounter = t.linearReload
	} else if t.linearCounter > 0 {
		t.linearCounter--
	}
	if !t.control {
		t.reloadFlag = false
	}
}

// TickLength is the half-frame clock of the length counter.
func (t *Triangle) TickLength() { t.lc.tick() }

func (t *Triangle) SetEnabled(enabled bool) {
	t.lc.setEnabled(enabled)
}

// Active reports whether the length counter is nonzero.
func (t *Triangle) Active() bool {
	return t.lc.active()
}

// Output is the current DAC level.
func (t *Triangle) Output() uint8 {
	return uint8(t.out.last)
}

func (t *Triangle) Reset(soft bool) {
	t.lc.reset(soft)
	t.out.last = 0

	t.linearCounter = 0
	t.linearReload = 0
	t.reloadFlag = false
	t.control = false
	t.pos = 0
	t.period = 0
	t.timer = 0
}

func (t *Triangle) SaveState(w *snapshot.Writer) {
	t.lc.saveState(w)
	w.I8(t.out.last)
	w.U8(t.linearCounter)
	w.U8(t.linearReload)
	w.Bool(t.reloadFlag)
	w.Bool(t.control)
	w.U8(t.pos)
	w.U16(t.period)
	w.U16(t.timer)
}

func (t *Triangle) LoadState(r *snapshot.Reader) {
	t.lc.loadState(r)
	t.out.last = r.I8()
	t.linearCounter = r.U8()
	t.linearReload = r.U8()
	t.reloadFlag = r.Bool()
	t.control = r.Bool()
	t.pos = r.U8()
	t.period = r.U16()
	t.timer = r.U16()
}
