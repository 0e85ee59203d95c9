package main

import (
	"fmt"

	"famicore/hw/mappers"
	"famicore/ines"
)

func romInfoMain(path string) {
	rom, err := ines.Open(path)
	checkf(err, "failed to load ROM %s", path)

	support := "no"
	if mappers.Supported(rom.Mapper()) {
		support = "yes"
	}

	fmt.Println("file:     ", path)
	fmt.Printf("crc:       %08X\n", rom.CRC())
	fmt.Printf("mapper:    %d (%s)\n", rom.Mapper(), mappers.Name(rom.Mapper()))
	fmt.Println("supported:", support)
	fmt.Printf("prg rom:   %dK\n", len(rom.PRG)/1024)
	if len(rom.CHR) == 0 {
		fmt.Println("chr:       RAM")
	} else {
		fmt.Printf("chr rom:   %dK\n", len(rom.CHR)/1024)
	}
	fmt.Println("mirroring:", rom.Mirror())
	fmt.Println("battery:  ", rom.HasBattery())
	fmt.Println("trainer:  ", len(rom.Trainer) != 0)
	fmt.Println("nes 2.0:  ", rom.IsNES2())
}
