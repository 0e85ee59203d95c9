// Command famicore is a NES emulator.
package main

import "os"

// overridden at build time with -ldflags "-X main.version=..."
var version = "devel"

func main() {
	cfg := parseArgs(os.Args[1:])

	switch cfg.mode {
	case runMode:
		emuMain(cfg)
	case romInfoMode:
		romInfoMain(cfg.RomInfo.RomPath)
	case versionMode:
		versionMain()
	}
}
