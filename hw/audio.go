package hw

import (
	"slices"

	"github.com/arl/blip"

	"famicore/hw/apu"
)

const SampleRate = 48000

// Enough room for a whole frame of samples, with headroom for overclocked
// frames and the stereo interleaving.
const maxSamplesPerFrame = SampleRate / 60 * 4 * 2

// Upper bound on the CPU cycle count of a single frame.
const cycleLength = 35000

const ntscClockRate = 1789773

// AudioMixer combines the DAC level deltas of the 5 channels into 16-bit
// samples. Deltas are accumulated per channel and per cycle during the
// frame; at frame end they are folded through the non-linear DAC mix and
// band-limited by a blip buffer.
type AudioMixer struct {
	outbuf [maxSamplesPerFrame]int16
	buf    *blip.Buffer

	prevOut int16

	volumes [apu.NumChannels]float64

	timestamps []uint32
	chanoutput [apu.NumChannels][cycleLength]int16
	curOutput  [apu.NumChannels]int16

	// play receives the stereo-interleaved samples of each frame.
	play func(samples []int16)
}

// NewAudioMixer creates a mixer sending each frame of samples to play,
// which may be nil to discard audio.
func NewAudioMixer(play func(samples []int16)) *AudioMixer {
	am := &AudioMixer{
		buf:  blip.NewBuffer(maxSamplesPerFrame),
		play: play,
	}
	am.Reset()
	return am
}

func (am *AudioMixer) Reset() {
	am.prevOut = 0
	am.buf.Clear()
	am.buf.SetRates(ntscClockRate, SampleRate)
	am.timestamps = am.timestamps[:0]

	for i := range am.volumes {
		am.volumes[i] = 0.8
	}
	for i := range am.chanoutput {
		clear(am.chanoutput[i][:])
	}
	clear(am.curOutput[:])
}

// AddDelta records a DAC level change of a channel at the given cycle of
// the current frame.
func (am *AudioMixer) AddDelta(ch apu.Channel, time uint32, delta int16) {
	if delta == 0 {
		return
	}
	if time >= cycleLength {
		time = cycleLength - 1
	}
	am.timestamps = append(am.timestamps, time)
	am.chanoutput[ch][time] += delta
}

func (am *AudioMixer) channelOutput(ch apu.Channel) float64 {
	return float64(am.curOutput[ch]) * am.volumes[ch]
}

// outputVolume folds the current channel levels through the DAC mixing
// formulas.
func (am *AudioMixer) outputVolume() int16 {
	squareOutput := am.channelOutput(apu.ChanSquare1) + am.channelOutput(apu.ChanSquare2)
	tndOutput := am.channelOutput(apu.ChanDMC) +
		2.7516713261*am.channelOutput(apu.ChanTriangle) +
		1.8493587125*am.channelOutput(apu.ChanNoise)

	squareVolume := uint16(95.88 * 5000.0 / (8128.0/squareOutput + 100.0))
	tndVolume := uint16(159.79 * 5000.0 / (22638.0/tndOutput + 100.0))

	return int16(squareVolume + tndVolume)
}

// EndFrame folds the deltas accumulated since the previous frame into the
// blip buffer. time is the cycle count of the frame.
func (am *AudioMixer) EndFrame(time uint32) {
	slices.Sort(am.timestamps)
	am.timestamps = slices.Compact(am.timestamps)

	for _, stamp := range am.timestamps {
		for ch := range apu.NumChannels {
			am.curOutput[ch] += am.chanoutput[ch][stamp]
		}

		out := am.outputVolume() * 4
		am.buf.AddDelta(uint64(stamp), int32(out-am.prevOut))
		am.prevOut = out
	}

	am.buf.EndFrame(int(time))

	am.timestamps = am.timestamps[:0]
	for i := range am.chanoutput {
		clear(am.chanoutput[i][:])
	}
}

// PlayAudioBuffer ends the frame, reads the band-limited samples and hands
// them to the consumer as interleaved stereo.
func (am *AudioMixer) PlayAudioBuffer(time uint32) {
	am.EndFrame(time)

	out := am.outbuf[:]
	n := am.buf.ReadSamples(out, maxSamplesPerFrame/2, blip.Stereo)

	// Mono source: copy the left channel over the right one.
	for i := 0; i < n*2; i += 2 {
		out[i+1] = out[i]
	}

	if am.play != nil && n > 0 {
		am.play(out[:n*2])
	}
}
