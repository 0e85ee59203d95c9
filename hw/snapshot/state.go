package snapshot

import (
	"fmt"
	"hash/crc32"

	"github.com/go-faster/jx"
)

// Version of the snapshot layout. Bumped whenever a component stream
// changes; older snapshots are rejected rather than misread.
const Version = 1

// State is a full console snapshot: identification header plus the opaque
// state stream of each component.
type State struct {
	Version int
	ROMCRC  uint32 // identity of the loaded ROM image
	Time    int64  // unix seconds at save time
	Frame   uint64

	CPU    []byte
	PPU    []byte
	APU    []byte
	Bus    []byte
	DMA    []byte
	Mapper []byte
	Input  [2][]byte
}

// VersionError reports a snapshot from an incompatible layout version.
type VersionError struct {
	Got int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("snapshot version %d, want %d", e.Got, Version)
}

// ROMMismatchError reports a snapshot taken from a different ROM image.
type ROMMismatchError struct {
	Want, Got uint32
}

func (e *ROMMismatchError) Error() string {
	return fmt.Sprintf("snapshot is from another ROM (crc %08X, loaded %08X)", e.Got, e.Want)
}

// ChecksumError reports a corrupted snapshot payload.
type ChecksumError struct {
	Want, Got uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("snapshot checksum mismatch (stored %08X, computed %08X)", e.Want, e.Got)
}

// SectionError reports a component stream too short for the current
// layout, typically a truncated file that still passed the checksum of a
// partial write.
type SectionError struct {
	Section string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("bad snapshot section %q: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

// checksum covers every component stream, in a fixed order.
func (s *State) checksum() uint32 {
	h := crc32.NewIEEE()
	h.Write(s.CPU)
	h.Write(s.PPU)
	h.Write(s.APU)
	h.Write(s.Bus)
	h.Write(s.DMA)
	h.Write(s.Mapper)
	h.Write(s.Input[0])
	h.Write(s.Input[1])
	return h.Sum32()
}

// Encode serializes the snapshot as JSON, component streams as base64.
func (s *State) Encode() []byte {
	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("version")
	e.Int(s.Version)
	e.FieldStart("rom_crc")
	e.UInt32(s.ROMCRC)
	e.FieldStart("time")
	e.Int64(s.Time)
	e.FieldStart("frame")
	e.UInt64(s.Frame)
	e.FieldStart("checksum")
	e.UInt32(s.checksum())

	e.FieldStart("cpu")
	e.Base64(s.CPU)
	e.FieldStart("ppu")
	e.Base64(s.PPU)
	e.FieldStart("apu")
	e.Base64(s.APU)
	e.FieldStart("bus")
	e.Base64(s.Bus)
	e.FieldStart("dma")
	e.Base64(s.DMA)
	e.FieldStart("mapper")
	e.Base64(s.Mapper)
	e.FieldStart("input0")
	e.Base64(s.Input[0])
	e.FieldStart("input1")
	e.Base64(s.Input[1])

	e.ObjEnd()
	return e.Bytes()
}

// Decode parses a snapshot and verifies its payload checksum. Version and
// ROM identity checks are left to the caller, which knows the loaded ROM.
func Decode(data []byte) (*State, error) {
	s := &State{}
	var sum uint32
	hasSum := false

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Int()
		case "rom_crc":
			s.ROMCRC, err = d.UInt32()
		case "time":
			s.Time, err = d.Int64()
		case "frame":
			s.Frame, err = d.UInt64()
		case "checksum":
			sum, err = d.UInt32()
			hasSum = true
		case "cpu":
			s.CPU, err = d.Base64()
		case "ppu":
			s.PPU, err = d.Base64()
		case "apu":
			s.APU, err = d.Base64()
		case "bus":
			s.Bus, err = d.Base64()
		case "dma":
			s.DMA, err = d.Base64()
		case "mapper":
			s.Mapper, err = d.Base64()
		case "input0":
			s.Input[0], err = d.Base64()
		case "input1":
			s.Input[1], err = d.Base64()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}

	// An absent checksum field is treated like a wrong one, otherwise
	// stripping it would bypass verification entirely.
	if got := s.checksum(); !hasSum || got != sum {
		return nil, &ChecksumError{Want: sum, Got: got}
	}
	return s, nil
}
