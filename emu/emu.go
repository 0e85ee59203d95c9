// Package emu runs the console: it owns the frame loop, feeds input and
// video/audio to the host output, and handles save states and battery RAM
// persistence.
package emu

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"famicore/emu/log"
	"famicore/hw"
	"famicore/hw/mappers"
	"famicore/ines"
)

// Output abstracts the host side: window, renderer, audio queue and
// input. Implemented by the SDL front end, and by test doubles.
type Output interface {
	// Poll pumps host events. It returns false once the user asked to
	// quit.
	Poll() bool

	// Render presents one RGBA frame.
	Render(rgba []byte)

	// Buttons returns the live state of the controller plugged into the
	// given port, one bit per button.
	Buttons(port int) uint8

	Close()
}

// AudioOutput is implemented by outputs able to play sound.
type AudioOutput interface {
	QueueAudio(samples []int16)
}

// NTSC frame rate is 60.0988 Hz.
const frameDuration = time.Second * 10000 / 600988

type Emulator struct {
	NES *hw.NES
	out Output
	cfg Config

	// Accessed concurrently by the frame loop and the UI.
	quit    atomic.Bool
	paused  atomic.Bool
	reset   atomic.Bool
	restart atomic.Bool
}

// Launch powers up a console for the given ROM and connects it to the
// output. It does not start the frame loop, call Run for that.
func Launch(rom *ines.Rom, out Output, cfg Config) (*Emulator, error) {
	var play func([]int16)
	if !cfg.Audio.DisableAudio {
		if ao, ok := out.(AudioOutput); ok {
			play = ao.QueueAudio
		}
	}

	nes, err := hw.New(rom, play)
	if err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	if n := cfg.Emulation.DMCCollisionPenalty; n != 0 {
		nes.DMA.SetCollisionPenalty(int64(n))
	}
	if cfg.TraceOut != nil {
		nes.CPU.SetTraceOutput(cfg.TraceOut)
	}

	e := &Emulator{
		NES: nes,
		out: out,
		cfg: cfg,
	}
	e.loadBatteryRAM()
	return e, nil
}

func (e *Emulator) runOneFrame() error {
	e.NES.Controller1.SetButtons(e.out.Buttons(0))
	e.NES.Controller2.SetButtons(e.out.Buttons(1))

	if err := e.NES.RunFrame(); err != nil {
		return err
	}

	rgba := make([]byte, hw.FrameWidth*hw.FrameHeight*4)
	e.NES.PPU.RGBA(rgba)
	e.out.Render(rgba)
	return nil
}

// Run drives the frame loop until the output closes or Stop is called.
func (e *Emulator) Run() {
	defer e.out.Close()
	defer e.saveBatteryRAM()

	last := time.Now()
	for e.out.Poll() {
		if e.shouldStop() {
			break
		}
		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if err := e.runOneFrame(); err != nil {
			if errors.Is(err, hw.ErrCPUJammed) {
				log.ModEmu.ErrorZ("emulation stopped").Error("err", err).End()
				break
			}
			log.ModEmu.ErrorZ("frame error").Error("err", err).End()
			break
		}

		if e.cfg.Video.DisableVSync {
			// No display sync to lean on, pace frames manually.
			if d := frameDuration - time.Since(last); d > 0 {
				time.Sleep(d)
			}
		}
		last = time.Now()

		e.handleReset()
	}

	log.ModEmu.InfoZ("emulation loop exited").End()
}

// SetPause, Stop, Reset and Restart control the frame loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) TogglePause()        { e.paused.Store(!e.paused.Load()) }
func (e *Emulator) Reset()              { e.reset.Store(true) }
func (e *Emulator) Restart()            { e.restart.Store(true) }
func (e *Emulator) Stop()               { e.quit.Store(true) }

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) shouldStop() bool {
	return e.quit.Load()
}

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("performing soft reset").End()
		e.NES.Reset(true)
	} else if e.restart.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("performing hard reset").End()
		e.NES.Reset(false)
	}
}

func (e *Emulator) batteryBacked() (mappers.BatteryBacked, bool) {
	if !e.NES.Rom.HasBattery() {
		return nil, false
	}
	bb, ok := e.NES.Mapper.(mappers.BatteryBacked)
	return bb, ok
}
