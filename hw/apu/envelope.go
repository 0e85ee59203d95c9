package apu

import "famicore/hw/snapshot"

// envelope produces either a constant volume or a 15-to-0 decaying one,
// restarting on length register writes. The halt flag of the embedded
// length counter doubles as the envelope loop flag.
type envelope struct {
	lc lengthCounter

	constantVolume bool
	volume         uint8 // divider reload value, also the constant volume
	start          bool
	divider        uint8
	decay          uint8
}

func (e *envelope) write(val uint8) {
	e.lc.setHalt(val&0x20 != 0)
	e.constantVolume = val&0x10 != 0
	e.volume = val & 0x0F
}

func (e *envelope) restart() {
	e.start = true
}

// tick is the quarter-frame clock.
func (e *envelope) tick() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.volume
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.volume
	if e.decay > 0 {
		e.decay--
	} else if e.lc.halt {
		e.decay = 15
	}
}

// level returns the current DAC input, 0 when the length counter has
// expired.
func (e *envelope) level() uint8 {
	if !e.lc.active() {
		return 0
	}
	if e.constantVolume {
		return e.volume
	}
	return e.decay
}

func (e *envelope) reset(soft bool) {
	e.lc.reset(soft)
	e.constantVolume = false
	e.volume = 0
	e.start = false
	e.divider = 0
	e.decay = 0
}

func (e *envelope) saveState(w *snapshot.Writer) {
	e.lc.saveState(w)
	w.Bool(e.constantVolume)
	w.U8(e.volume)
	w.Bool(e.start)
	w.U8(e.divider)
	w.U8(e.decay)
}

func (e *envelope) loadState(r *snapshot.Reader) {
	e.lc.loadState(r)
	e.constantVolume = r.Bool()
	e.volume = r.U8()
	e.start = r.Bool()
	e.divider = r.U8()
	e.decay = r.U8()
}
