package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"famicore/emu"
	"famicore/emu/log"
	"famicore/ines"
	"famicore/ui"
)

func init() {
	// SDL video and events must run on the main OS thread.
	runtime.LockOSThread()
}

func emuMain(cli CLI) {
	if cli.Run.CPUProfile != "" {
		f, err := os.Create(cli.Run.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		defer f.Close()

		checkf(pprof.StartCPUProfile(f), "failed to start cpu profiling")
		defer pprof.StopCPUProfile()
	}

	rom, err := ines.Open(cli.Run.RomPath)
	checkf(err, "failed to load ROM %s", cli.Run.RomPath)

	cfg := emu.LoadConfigOrDefault()
	if cli.Run.NoAudio {
		cfg.Audio.DisableAudio = true
	}
	if cli.Run.Trace != nil {
		cfg.TraceOut = cli.Run.Trace
	}

	win, err := ui.New("famicore", cfg)
	checkf(err, "failed to create window")

	emulator, err := emu.Launch(rom, win, cfg)
	checkf(err, "failed to launch emulation")

	win.Hotkeys = ui.Hotkeys{
		TogglePause: emulator.TogglePause,
		Reset:       emulator.Reset,
		SaveState: func(slot int) {
			if err := emulator.SaveStateSlot(slot); err != nil {
				log.ModEmu.WarnZ("save state failed").Int("slot", int64(slot)).Error("err", err).End()
			}
		},
		LoadState: func(slot int) {
			if err := emulator.LoadStateSlot(slot); err != nil {
				log.ModEmu.WarnZ("load state failed").Int("slot", int64(slot)).Error("err", err).End()
			}
		},
	}

	emulator.Run()
}

func versionMain() {
	fmt.Println("famicore", version)
}
