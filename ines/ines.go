// Package ines reads roms in the iNES and NES 2.0 container formats, used
// for the distribution of NES binary programs.
package ines

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// Magic is the 4-byte signature opening every iNES file.
const Magic = "NES\x1a"

var (
	// ErrBadMagic reports a file that is not an iNES container at all.
	ErrBadMagic = errors.New("ines: bad magic number")

	// ErrHeaderTooShort reports a file smaller than the 16-byte header.
	ErrHeaderTooShort = errors.New("ines: header requires 16 bytes")
)

// A TruncatedError reports a container whose declared section sizes exceed
// the actual file length.
type TruncatedError struct {
	Section string // "trainer", "prg" or "chr"
	Want    int
	Got     int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("ines: truncated %s section: want %d bytes, got %d", e.Section, e.Want, e.Got)
}

// Mirroring is a nametable mirroring arrangement.
type Mirroring uint8

//go:generate go tool stringer -type=Mirroring -trimprefix=Mirror

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingleLow
	MirrorSingleHigh
	MirrorFourScreen
)

type Rom struct {
	header
	Trainer []byte // 512 bytes if present, or empty.
	PRG     []byte // PRG ROM data, a multiple of 16k.
	CHR     []byte // CHR ROM data, a multiple of 8k. Empty means CHR RAM.
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements the io.ReaderFrom interface.
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	var off int
	if err := rom.decode(buf); err != nil {
		return 0, err
	}
	off += 16

	if rom.HasTrainer() {
		if len(buf) < off+512 {
			return 0, &TruncatedError{Section: "trainer", Want: 512, Got: len(buf) - off}
		}
		rom.Trainer = buf[off : off+512]
		off += 512
	}

	if len(buf) < off+rom.prgsz {
		return 0, &TruncatedError{Section: "prg", Want: rom.prgsz, Got: len(buf) - off}
	}
	rom.PRG = buf[off : off+rom.prgsz]
	off += rom.prgsz

	if len(buf) < off+rom.chrsz {
		return 0, &TruncatedError{Section: "chr", Want: rom.chrsz, Got: len(buf) - off}
	}
	rom.CHR = buf[off : off+rom.chrsz]
	off += rom.chrsz

	return int64(len(buf)), nil
}

// CRC returns the CRC-32 of the PRG and CHR data, identifying the rom
// independently of its container header.
func (rom *Rom) CRC() uint32 {
	crc := crc32.NewIEEE()
	crc.Write(rom.PRG)
	crc.Write(rom.CHR)
	return crc.Sum32()
}

type header struct {
	raw   [16]byte
	prgsz int
	chrsz int
}

func (hdr *header) decode(p []byte) error {
	if len(p) < 16 {
		return ErrHeaderTooShort
	}
	if string(p[:4]) != Magic {
		return ErrBadMagic
	}
	copy(hdr.raw[:], p[:16])

	if hdr.IsNES2() {
		// NES 2.0 extends the size fields with the high nibbles of byte 9.
		hdr.prgsz = (int(hdr.raw[9]&0x0F)<<8 | int(hdr.raw[4])) * 16384
		hdr.chrsz = (int(hdr.raw[9]&0xF0)<<4 | int(hdr.raw[5])) * 8192
	} else {
		hdr.prgsz = int(hdr.raw[4]) * 16384
		hdr.chrsz = int(hdr.raw[5]) * 8192
	}
	return nil
}

// IsNES2 reports whether the header uses the NES 2.0 extended variant,
// signalled by bits 2-3 of flags 7.
func (hdr *header) IsNES2() bool {
	return hdr.raw[7]&0x0C == 0x08
}

// HasTrainer indicates the presence of a 512-byte trainer section.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasBattery indicates the presence of battery-backed persistent memory.
func (hdr *header) HasBattery() bool {
	return hdr.raw[6]&0x02 != 0
}

// Mapper returns the mapper number. iNES carries 8 bits, NES 2.0 carries 12.
func (hdr *header) Mapper() uint16 {
	m := uint16(hdr.raw[6]>>4) | uint16(hdr.raw[7]&0xF0)
	if hdr.IsNES2() {
		m |= uint16(hdr.raw[8]&0x0F) << 8
	}
	return m
}

// Submapper returns the NES 2.0 submapper number, 0 for plain iNES files.
func (hdr *header) Submapper() uint8 {
	if hdr.IsNES2() {
		return hdr.raw[8] >> 4
	}
	return 0
}

// Mirror returns the hardwired nametable arrangement declared in flags 6.
func (hdr *header) Mirror() Mirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return MirrorFourScreen
	case hdr.raw[6]&0x01 != 0:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

// PRGSize and CHRSize report the declared rom section sizes in bytes.
func (hdr *header) PRGSize() int { return hdr.prgsz }
func (hdr *header) CHRSize() int { return hdr.chrsz }
