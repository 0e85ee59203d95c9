package apu

import "famicore/hw/snapshot"

// Square is one of the two square wave channels: an envelope generator, a
// sweep unit, a timer with divide-by-two on the output, an 8-step duty
// sequencer and a length counter.
//
//	               +---------+    +---------+
//	               |  Sweep  |--->|Timer / 2|
//	               +---------+    +---------+
//	                    |              |
//	                    |              v
//	                    |         +---------+    +---------+
//	                    |         |Sequencer|    | Length  |
//	                    |         +---------+    +---------+
//	                    |              |              |
//	                    v              v              v
//	+---------+        |\             |\             |\          +---------+
//	|Envelope |------->| >----------->| >----------->| >-------->|   DAC   |
//	+---------+        |/             |/             |/          +---------+
type Square struct {
	out output
	env envelope

	channel1 bool

	duty    uint8
	dutyPos uint8

	// 11-bit period in APU cycles. The timer counts CPU cycles, so its
	// reload value is realPeriod*2+1.
	realPeriod uint16
	timer      uint16

	sweepEnabled bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepDivider uint8
	sweepTarget  uint32
}

func NewSquare(m Mixer, ch Channel, channel1 bool) *Square {
	return &Square{
		out:      output{ch: ch, mixer: m},
		channel1: channel1,
	}
}

// duty cycle sequences, indexed by the duty bits of the control register.
var squareDuty = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0, 0, 1, 1},
	{0, 0, 0, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 0, 0},
}

// WriteControl handles $4000/$4004: duty bits plus the envelope register.
func (s *Square) WriteControl(val uint8) {
	s.env.write(val)
	s.duty = val >> 6
}

// WriteSweep handles $4001/$4005.
func (s *Square) WriteSweep(val uint8) {
	s.sweepEnabled = val&0x80 != 0
	s.sweepNegate = val&0x08 != 0
	s.sweepPeriod = (val>>4)&0x07 + 1
	s.sweepShift = val & 0x07
	s.updateSweepTarget()
	s.sweepReload = true
}

// WriteTimerLow handles $4002/$4006.
func (s *Square) WriteTimerLow(val uint8) {
	s.setPeriod(s.realPeriod&0x0700 | uint16(val))
}

// WriteTimerHigh handles $4003/$4007: top period bits and the length
// counter load. The sequencer and the envelope restart.
func (s *Square) WriteTimerHigh(val uint8) {
	s.env.lc.load(val >> 3)
	s.setPeriod(s.realPeriod&0x00FF | uint16(val&0x07)<<8)
	s.dutyPos = 0
	s.env.restart()
}

func (s *Square) setPeriod(period uint16) {
	s.realPeriod = period
	s.updateSweepTarget()
}

func (s *Square) updateSweepTarget() {
	shifted := s.realPeriod >> s.sweepShift
	if s.sweepNegate {
		s.sweepTarget = uint32(s.realPeriod - shifted)
		if s.channel1 {
			// Channel 1 uses one's complement negation, so it subtracts
			// one extra.
			s.sweepTarget--
		}
	} else {
		s.sweepTarget = uint32(s.realPeriod) + uint32(shifted)
	}
}

// muted reports whether the DAC is forced to zero: a period below 8 or a
// sweep target overflowing the 11-bit period silence the channel even when
// the sweep unit is disabled.
func (s *Square) muted() bool {
	return s.realPeriod < 8 || (!s.sweepNegate && s.sweepTarget > 0x7FF)
}

// Tick advances the channel by one CPU cycle.
func (s *Square) Tick(time uint32) {
	if s.timer == 0 {
		s.timer = s.realPeriod*2 + 1
		s.dutyPos = (s.dutyPos - 1) & 0x07
		s.updateOutput(time)
	} else {
		s.timer--
	}
}

func (s *Square) updateOutput(time uint32) {
	if s.muted() {
		s.out.set(time, 0)
	} else {
		s.out.set(time, int8(squareDuty[s.duty][s.dutyPos]*s.env.level()))
	}
}

// TickEnvelope is the quarter-frame clock.
func (s *Square) TickEnvelope() { s.env.tick() }

// TickLength is the half-frame clock of the length counter.
func (s *Square) TickLength() { s.env.lc.tick() }

// TickSweep is the half-frame clock of the sweep unit.
func (s *Square) TickSweep() {
	s.sweepDivider--
	if s.sweepDivider == 0 {
		if s.sweepShift > 0 && s.sweepEnabled && s.realPeriod >= 8 && s.sweepTarget <= 0x7FF {
			s.setPeriod(uint16(s.sweepTarget))
		}
		s.sweepDivider = s.sweepPeriod
	}
	if s.sweepReload {
		s.sweepDivider = s.sweepPeriod
		s.sweepReload = false
	}
}

func (s *Square) SetEnabled(enabled bool) {
	s.env.lc.setEnabled(enabled)
}

// Active reports whether the length counter is nonzero.
func (s *Square) Active() bool {
	return s.env.lc.active()
}

// Output is the current DAC level.
func (s *Square) Output() uint8 {
	return uint8(s.out.last)
}

func (s *Square) Reset(soft bool) {
	s.env.reset(soft)
	s.out.last = 0

	s.duty = 0
	s.dutyPos = 0
	s.realPeriod = 0
	s.timer = 0

	s.sweepEnabled = false
	s.sweepPeriod = 0
	s.sweepNegate = false
	s.sweepShift = 0
	s.sweepReload = false
	s.sweepDivider = 0
	s.updateSweepTarget()
}

func (s *Square) SaveState(w *snapshot.Writer) {
	s.env.saveState(w)
	w.I8(s.out.last)
	w.U8(s.duty)
	w.U8(s.dutyPos)
	w.U16(s.realPeriod)
	w.U16(s.timer)
	w.Bool(s.sweepEnabled)
	w.U8(s.sweepPeriod)
	w.Bool(s.sweepNegate)
	w.U8(s.sweepShift)
	w.Bool(s.sweepReload)
	w.U8(s.sweepDivider)
	w.U32(s.sweepTarget)
}

func (s *Square) LoadState(r *snapshot.Reader) {
	s.env.loadState(r)
	s.out.last = r.I8()
	s.duty = r.U8()
	s.dutyPos = r.U8()
	s.realPeriod = r.U16()
	s.timer = r.U16()
	s.sweepEnabled = r.Bool()
	s.sweepPeriod = r.U8()
	s.sweepNegate = r.Bool()
	s.sweepShift = r.U8()
	s.sweepReload = r.Bool()
	s.sweepDivider = r.U8()
	s.sweepTarget = r.U32()
}
