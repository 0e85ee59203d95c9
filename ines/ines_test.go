package ines

import (
	"bytes"
	"errors"
	"testing"
)

// buildRom assembles a container in memory: a 16-byte header followed by the
// given sections.
func buildRom(mod func(hdr []byte), sections ...[]byte) []byte {
	hdr := make([]byte, 16)
	copy(hdr, Magic)
	if mod != nil {
		mod(hdr)
	}
	buf := hdr
	for _, s := range sections {
		buf = append(buf, s...)
	}
	return buf
}

func TestReadFrom(t *testing.T) {
	prg := bytes.Repeat([]byte{0xEA}, 16384)
	chr := bytes.Repeat([]byte{0x42}, 8192)
	buf := buildRom(func(hdr []byte) {
		hdr[4] = 1
		hdr[5] = 1
		hdr[6] = 0x01 // vertical mirroring
	}, prg, chr)

	var rom Rom
	n, err := rom.ReadFrom(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(buf)) {
		t.Errorf("ReadFrom read %d bytes, want %d", n, len(buf))
	}
	if len(rom.PRG) != 16384 || len(rom.CHR) != 8192 {
		t.Errorf("section sizes = %d/%d, want 16384/8192", len(rom.PRG), len(rom.CHR))
	}
	if rom.Mapper() != 0 {
		t.Errorf("mapper = %d, want 0", rom.Mapper())
	}
	if rom.Mirror() != MirrorVertical {
		t.Errorf("mirror = %s, want Vertical", rom.Mirror())
	}
	if rom.HasBattery() || rom.HasTrainer() || rom.IsNES2() {
		t.Errorf("unexpected battery/trainer/nes2 flags")
	}
}

func TestReadFromTrainer(t *testing.T) {
	trainer := bytes.Repeat([]byte{0x55}, 512)
	prg := make([]byte, 16384)
	buf := buildRom(func(hdr []byte) {
		hdr[4] = 1
		hdr[6] = 0x04
	}, trainer, prg)

	var rom Rom
	if _, err := rom.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatal(err)
	}
	if len(rom.Trainer) != 512 || rom.Trainer[0] != 0x55 {
		t.Errorf("trainer not read")
	}
}

func TestReadFromErrors(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		var rom Rom
		_, err := rom.ReadFrom(bytes.NewReader(make([]byte, 32)))
		if !errors.Is(err, ErrBadMagic) {
			t.Errorf("err = %v, want ErrBadMagic", err)
		}
	})

	t.Run("short header", func(t *testing.T) {
		var rom Rom
		_, err := rom.ReadFrom(bytes.NewReader([]byte(Magic)))
		if !errors.Is(err, ErrHeaderTooShort) {
			t.Errorf("err = %v, want ErrHeaderTooShort", err)
		}
	})

	t.Run("truncated prg", func(t *testing.T) {
		buf := buildRom(func(hdr []byte) { hdr[4] = 2 }, make([]byte, 100))
		var rom Rom
		_, err := rom.ReadFrom(bytes.NewReader(buf))
		var terr *TruncatedError
		if !errors.As(err, &terr) || terr.Section != "prg" {
			t.Errorf("err = %v, want truncated prg", err)
		}
	})

	t.Run("truncated chr", func(t *testing.T) {
		buf := buildRom(func(hdr []byte) {
			hdr[4] = 1
			hdr[5] = 1
		}, make([]byte, 16384))
		var rom Rom
		_, err := rom.ReadFrom(bytes.NewReader(buf))
		var terr *TruncatedError
		if !errors.As(err, &terr) || terr.Section != "chr" {
			t.Errorf("err = %v, want truncated chr", err)
		}
	})
}

func TestNES2Header(t *testing.T) {
	buf := buildRom(func(hdr []byte) {
		hdr[4] = 1
		hdr[6] = 0x40 // mapper low nibble = 4
		hdr[7] = 0x18 // NES 2.0 signature, mapper bits 4-7 = 1
		hdr[8] = 0x21 // submapper 2, mapper bits 8-11 = 1
	}, make([]byte, 16384))

	var rom Rom
	if _, err := rom.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatal(err)
	}
	if !rom.IsNES2() {
		t.Fatal("IsNES2() = false")
	}
	if got, want := rom.Mapper(), uint16(0x114); got != want {
		t.Errorf("mapper = %#x, want %#x", got, want)
	}
	if got := rom.Submapper(); got != 2 {
		t.Errorf("submapper = %d, want 2", got)
	}
}

func TestCRC(t *testing.T) {
	prg := bytes.Repeat([]byte{0xA9}, 16384)
	buf := buildRom(func(hdr []byte) { hdr[4] = 1 }, prg)

	var rom1, rom2 Rom
	if _, err := rom1.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatal(err)
	}
	if _, err := rom2.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatal(err)
	}
	if rom1.CRC() != rom2.CRC() {
		t.Errorf("identical roms have different CRCs")
	}

	buf[16] ^= 0xFF
	var rom3 Rom
	if _, err := rom3.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatal(err)
	}
	if rom1.CRC() == rom3.CRC() {
		t.Errorf("different roms have the same CRC")
	}
}
