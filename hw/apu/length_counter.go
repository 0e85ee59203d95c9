package apu

import "famicore/hw/snapshot"

// lengthLUT maps the 5-bit load value of the length registers to a
// duration in half-frame ticks.
var lengthLUT = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22,
	192, 24, 72, 26, 16, 28, 32, 30,
}

// lengthCounter silences its channel once the programmed duration has
// elapsed, unless the halt flag keeps it frozen.
type lengthCounter struct {
	enabled bool
	halt    bool
	counter uint8
}

func (lc *lengthCounter) setHalt(halt bool) {
	lc.halt = halt
}

// load reloads the counter from the duration table. Ignored while the
// channel is disabled through the status register.
func (lc *lengthCounter) load(idx uint8) {
	if lc.enabled {
		lc.counter = lengthLUT[idx&0x1F]
	}
}

// tick is the half-frame clock.
func (lc *lengthCounter) tick() {
	if !lc.halt && lc.counter > 0 {
		lc.counter--
	}
}

// setEnabled follows the channel bit of the status register. Disabling
// clears the counter immediately.
func (lc *lengthCounter) setEnabled(enabled bool) {
	lc.enabled = enabled
	if !enabled {
		lc.counter = 0
	}
}

func (lc *lengthCounter) active() bool {
	return lc.counter > 0
}

func (lc *lengthCounter) reset(soft bool) {
	lc.enabled = false
	if !soft {
		lc.halt = false
	}
	lc.counter = 0
}

func (lc *lengthCounter) saveState(w *snapshot.Writer) {
	w.Bool(lc.enabled)
	w.Bool(lc.halt)
	w.U8(lc.counter)
}

func (lc *lengthCounter) loadState(r *snapshot.Reader) {
	lc.enabled = r.Bool()
	lc.halt = r.Bool()
	lc.counter = r.U8()
}
