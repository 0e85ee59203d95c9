// Package mappers implements the cartridge boards: PRG/CHR banking,
// nametable mirroring control and, for boards that have them, interrupt
// counters and battery-backed RAM.
package mappers

import (
	"fmt"

	"famicore/emu/log"
	"famicore/hw/snapshot"
	"famicore/ines"
)

// Mapper is the cartridge seen from both buses. ReadPRG and WritePRG
// receive every CPU access from $4020 up, ReadCHR and WriteCHR every PPU
// pattern table access.
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, val uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)

	// Mirroring returns the current nametable arrangement, which some
	// boards switch at runtime.
	Mirroring() ines.Mirroring

	SaveState(w *snapshot.Writer)
	LoadState(r *snapshot.Reader)
}

// IRQSource is implemented by boards wired to the CPU interrupt line.
type IRQSource interface {
	// PendingIRQ reports the level of the board interrupt line.
	PendingIRQ() bool
}

// PPUAddressWatcher is implemented by boards snooping the PPU address bus,
// typically to derive a scanline clock from the A12 line.
type PPUAddressWatcher interface {
	OnPPUAddress(addr uint16)
}

// BatteryBacked is implemented by boards with battery-backed work RAM. The
// returned slice aliases the live RAM.
type BatteryBacked interface {
	BatteryRAM() []byte
}

// ClockAware is implemented by boards that observe the CPU cycle counter,
// like the MMC1 and its write filtering.
type ClockAware interface {
	AttachClock(clock *int64)
}

// Desc describes a supported board.
type Desc struct {
	Name string
	New  func(*ines.Rom) Mapper
}

var table = map[uint16]Desc{
	0:  {"NROM", newNROM},
	1:  {"MMC1", newMMC1},
	2:  {"UxROM", newUxROM},
	3:  {"CNROM", newCNROM},
	4:  {"MMC3", newMMC3},
	7:  {"AxROM", newAxROM},
	66: {"GxROM", newGxROM},
}

// UnsupportedError is returned by New for mapper numbers with no
// implementation.
type UnsupportedError struct {
	Mapper uint16
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported mapper %d", e.Mapper)
}

// New creates the board for the given ROM image.
func New(rom *ines.Rom) (Mapper, error) {
	desc, ok := table[rom.Mapper()]
	if !ok {
		return nil, &UnsupportedError{Mapper: rom.Mapper()}
	}

	log.ModMapper.InfoZ("cartridge board").
		Uint16("mapper", rom.Mapper()).
		String("name", desc.Name).
		End()
	return desc.New(rom), nil
}

// Name returns the board name of a mapper number, or the empty string if
// unsupported.
func Name(num uint16) string {
	return table[num].Name
}

// Supported reports whether the mapper number has an implementation.
func Supported(num uint16) bool {
	_, ok := table[num]
	return ok
}

// cartridge holds what every board shares: the ROM banks, CHR memory
// (RAM when the image carries no CHR ROM), work RAM and the current
// mirroring.
type cartridge struct {
	prg    []byte
	chr    []byte
	chrRAM bool
	sram   [0x2000]byte
	mirror ines.Mirroring
}

func newCartridge(rom *ines.Rom) cartridge {
	c := cartridge{
		prg:    rom.PRG,
		chr:    rom.CHR,
		mirror: rom.Mirror(),
	}
	if len(c.chr) == 0 {
		c.chr = make([]byte, 0x2000)
		c.chrRAM = true
	}
	return c
}

func (c *cartridge) Mirroring() ines.Mirroring {
	return c.mirror
}

func (c *cartridge) BatteryRAM() []byte {
	return c.sram[:]
}

func (c *cartridge) saveState(w *snapshot.Writer) {
	w.Bytes(c.sram[:])
	w.U8(uint8(c.mirror))
	if c.chrRAM {
		w.Bytes(c.chr)
	}
}

func (c *cartridge) loadState(r *snapshot.Reader) {
	r.Bytes(c.sram[:])
	c.mirror = ines.Mirroring(r.U8())
	if c.chrRAM {
		r.Bytes(c.chr)
	}
}
