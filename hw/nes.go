package hw

import (
	"errors"
	"time"

	"famicore/emu/log"
	"famicore/hw/mappers"
	"famicore/hw/snapshot"
	"famicore/ines"
)

// ErrCPUJammed is returned once a STP instruction has halted the CPU.
// Only a reset brings the console back.
var ErrCPUJammed = errors.New("cpu jammed, reset required")

// NES wires the chips together and drives them with the right clock
// ratios: for each CPU cycle the PPU advances 3 dots and the APU one
// cycle.
type NES struct {
	CPU    *CPU
	PPU    *PPU
	APU    *APU
	Bus    *Bus
	DMA    *DMA
	Mixer  *AudioMixer
	Mapper mappers.Mapper
	Rom    *ines.Rom

	Controller1 *Controller
	Controller2 *Controller
}

// New builds a console around the given ROM image. Audio frames are handed
// to play, which may be nil.
func New(rom *ines.Rom, play func(samples []int16)) (*NES, error) {
	mapper, err := mappers.New(rom)
	if err != nil {
		return nil, err
	}

	bus := NewBus()
	cpu := NewCPU(bus)
	ppu := NewPPU(cpu, mapper)
	dma := NewDMA(cpu, bus, ppu)
	mixer := NewAudioMixer(play)
	apu := NewAPU(cpu, dma, mixer)
	ctrl1, ctrl2 := NewController(), NewController()

	bus.AttachCPU(cpu)
	bus.AttachPPU(ppu)
	bus.AttachAPU(apu)
	bus.AttachDMA(dma)
	bus.AttachMapper(mapper)
	bus.AttachControllers(ctrl1, ctrl2)

	if ca, ok := mapper.(mappers.ClockAware); ok {
		ca.AttachClock(&cpu.Cycles)
	}

	nes := &NES{
		CPU:         cpu,
		PPU:         ppu,
		APU:         apu,
		Bus:         bus,
		DMA:         dma,
		Mixer:       mixer,
		Mapper:      mapper,
		Rom:         rom,
		Controller1: ctrl1,
		Controller2: ctrl2,
	}
	nes.Reset(false)
	return nes, nil
}

// Reset performs a power cycle (soft=false) or a reset button press
// (soft=true).
func (nes *NES) Reset(soft bool) {
	if !soft {
		clear(nes.Bus.RAM[:])
	}
	nes.CPU.Reset(soft)
	nes.PPU.Reset()
	nes.APU.Reset(soft)
	nes.DMA.reset()
	nes.Mixer.Reset()

	log.ModEmu.InfoZ("console reset").Bool("soft", soft).End()
}

// StepInstruction executes one CPU instruction and advances the rest of
// the console by the cycles it consumed. It returns the CPU cycle count.
func (nes *NES) StepInstruction() (int, error) {
	if nes.CPU.IsHalted() {
		return 0, ErrCPUJammed
	}

	cycles := nes.CPU.Step()
	for range cycles {
		nes.DMA.tick()
		nes.APU.Tick()
		nes.PPU.Tick()
		nes.PPU.Tick()
		nes.PPU.Tick()
	}

	nes.pollMapperIRQ()
	return cycles, nil
}

// pollMapperIRQ mirrors the level of the cartridge interrupt line into the
// CPU, for boards that have one.
func (nes *NES) pollMapperIRQ() {
	src, ok := nes.Mapper.(mappers.IRQSource)
	if !ok {
		return
	}
	if src.PendingIRQ() {
		nes.CPU.setIrqSource(external)
	} else {
		nes.CPU.clearIrqSource(external)
	}
}

// RunFrame executes instructions until the PPU finishes the current frame,
// then closes the audio frame.
func (nes *NES) RunFrame() error {
	frame := nes.PPU.Frame
	for nes.PPU.Frame == frame {
		if _, err := nes.StepInstruction(); err != nil {
			return err
		}
	}
	nes.APU.EndFrame()
	return nil
}

// SaveState captures the whole console into a snapshot.
func (nes *NES) SaveState() *snapshot.State {
	st := &snapshot.State{
		Version: snapshot.Version,
		ROMCRC:  nes.Rom.CRC(),
		Time:    time.Now().Unix(),
		Frame:   nes.PPU.Frame,
	}

	section := func(save func(*snapshot.Writer)) []byte {
		var w snapshot.Writer
		save(&w)
		return w.Data()
	}

	st.CPU = section(nes.CPU.saveState)
	st.PPU = section(nes.PPU.saveState)
	st.APU = section(nes.APU.saveState)
	st.Bus = section(nes.Bus.saveState)
	st.DMA = section(nes.DMA.saveState)
	st.Mapper = section(nes.Mapper.SaveState)
	st.Input[0] = section(nes.Controller1.saveState)
	st.Input[1] = section(nes.Controller2.saveState)
	return st
}

// RestoreState replaces the whole console state with a snapshot, after
// checking it matches the loaded ROM and the current layout version.
func (nes *NES) RestoreState(st *snapshot.State) error {
	if st.Version != snapshot.Version {
		return &snapshot.VersionError{Got: st.Version}
	}
	if crc := nes.Rom.CRC(); st.ROMCRC != crc {
		return &snapshot.ROMMismatchError{Want: crc, Got: st.ROMCRC}
	}

	section := func(name string, data []byte, load func(*snapshot.Reader)) error {
		r := snapshot.NewReader(data)
		load(r)
		if err := r.Err(); err != nil {
			return &snapshot.SectionError{Section: name, Err: err}
		}
		return nil
	}

	restore := []struct {
		name string
		data func(st *snapshot.State) []byte
		load func(*snapshot.Reader)
	}{
		{"cpu", func(st *snapshot.State) []byte { return st.CPU }, nes.CPU.loadState},
		{"ppu", func(st *snapshot.State) []byte { return st.PPU }, nes.PPU.loadState},
		{"apu", func(st *snapshot.State) []byte { return st.APU }, nes.APU.loadState},
		{"bus", func(st *snapshot.State) []byte { return st.Bus }, nes.Bus.loadState},
		{"dma", func(st *snapshot.State) []byte { return st.DMA }, nes.DMA.loadState},
		{"mapper", func(st *snapshot.State) []byte { return st.Mapper }, nes.Mapper.LoadState},
		{"input0", func(st *snapshot.State) []byte { return st.Input[0] }, nes.Controller1.loadState},
		{"input1", func(st *snapshot.State) []byte { return st.Input[1] }, nes.Controller2.loadState},
	}

	// A restore that fails halfway must not leave a mix of old and new
	// state: the live state is captured first and put back on error.
	prev := nes.SaveState()
	for _, sec := range restore {
		if err := section(sec.name, sec.data(st), sec.load); err != nil {
			for _, s := range restore {
				section(s.name, s.data(prev), s.load)
			}
			return err
		}
	}

	log.ModEmu.InfoZ("state restored").Uint64("frame", st.Frame).End()
	return nil
}
