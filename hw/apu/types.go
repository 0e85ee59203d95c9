// Package apu implements the tone generator channels of the audio
// processing unit: the two square wave channels, the triangle channel and
// the noise channel, together with their envelope, sweep and length counter
// units.
//
// Channels are clocked one CPU cycle at a time and report level changes of
// their DAC as deltas to a Mixer, stamped with the cycle they happened at.
package apu

// Channel identifies one of the 5 sound channels.
type Channel uint8

const (
	ChanSquare1 Channel = iota
	ChanSquare2
	ChanTriangle
	ChanNoise
	ChanDMC

	NumChannels = 5
)

// Mixer receives DAC level changes from the channels. time counts CPU
// cycles from the start of the current audio frame.
type Mixer interface {
	AddDelta(ch Channel, time uint32, delta int16)
}

// output tracks the last DAC level a channel sent to the mixer and
// converts level changes into deltas.
type output struct {
	ch    Channel
	mixer Mixer
	last  int8
}

func (o *output) set(time uint32, level int8) {
	if level == o.last {
		return
	}
	if o.mixer != nil {
		o.mixer.AddDelta(o.ch, time, int16(level-o.last))
	}
	o.last = level
}
