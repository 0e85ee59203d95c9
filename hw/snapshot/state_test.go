package snapshot

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStreamRoundTrip(t *testing.T) {
	var w Writer
	w.U8(0xAB)
	w.I8(-5)
	w.U16(0xBEEF)
	w.U32(0xDEADBEEF)
	w.U64(0x0123456789ABCDEF)
	w.I32(-123456)
	w.I64(-1)
	w.Bool(true)
	w.Bool(false)
	w.Bytes([]byte{1, 2, 3})

	r := NewReader(w.Data())
	if got := r.U8(); got != 0xAB {
		t.Errorf("U8 = %#02x, want 0xAB", got)
	}
	if got := r.I8(); got != -5 {
		t.Errorf("I8 = %d, want -5", got)
	}
	if got := r.U16(); got != 0xBEEF {
		t.Errorf("U16 = %#04x, want 0xBEEF", got)
	}
	if got := r.U32(); got != 0xDEADBEEF {
		t.Errorf("U32 = %#08x, want 0xDEADBEEF", got)
	}
	if got := r.U64(); got != 0x0123456789ABCDEF {
		t.Errorf("U64 = %#x", got)
	}
	if got := r.I32(); got != -123456 {
		t.Errorf("I32 = %d, want -123456", got)
	}
	if got := r.I64(); got != -1 {
		t.Errorf("I64 = %d, want -1", got)
	}
	if got := r.Bool(); !got {
		t.Error("Bool = false, want true")
	}
	if got := r.Bool(); got {
		t.Error("Bool = true, want false")
	}
	dst := make([]byte, 3)
	r.Bytes(dst)
	if !bytes.Equal(dst, []byte{1, 2, 3}) {
		t.Errorf("Bytes = %v, want [1 2 3]", dst)
	}
	if err := r.Err(); err != nil {
		t.Errorf("Err = %v, want nil", err)
	}
}

func TestStreamLittleEndian(t *testing.T) {
	var w Writer
	w.U16(0x1234)
	w.U32(0x89ABCDEF)
	want := []byte{0x34, 0x12, 0xEF, 0xCD, 0xAB, 0x89}
	if !bytes.Equal(w.Data(), want) {
		t.Errorf("stream = % x, want % x", w.Data(), want)
	}
}

func TestReaderShortStream(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	_ = r.U32()
	if !errors.Is(r.Err(), io.ErrUnexpectedEOF) {
		t.Fatalf("Err = %v, want ErrUnexpectedEOF", r.Err())
	}

	// The error latches: further reads return zero values.
	if got := r.U8(); got != 0 {
		t.Errorf("U8 after error = %#02x, want 0", got)
	}
	if !errors.Is(r.Err(), io.ErrUnexpectedEOF) {
		t.Errorf("Err = %v, should stay latched", r.Err())
	}
}

func TestReaderBytesLengthMismatch(t *testing.T) {
	var w Writer
	w.Bytes([]byte{1, 2, 3})

	r := NewReader(w.Data())
	dst := make([]byte, 4)
	r.Bytes(dst)
	if r.Err() == nil {
		t.Error("Bytes into a wrong-size buffer should set an error")
	}
}

func testState() *State {
	return &State{
		Version: Version,
		ROMCRC:  0xCAFEBABE,
		Time:    1724500000,
		Frame:   12345,
		CPU:     []byte{1, 2, 3},
		PPU:     []byte{4, 5},
		APU:     []byte{6},
		Bus:     []byte{7, 8, 9, 10},
		DMA:     []byte{11},
		Mapper:  []byte{12, 13},
		Input:   [2][]byte{{14}, {15}},
	}
}

func TestStateRoundTrip(t *testing.T) {
	st := testState()
	got, err := Decode(st.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(st, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStateChecksum(t *testing.T) {
	data := testState().Encode()

	// Corrupt the cpu section: [1 2 3] encodes to "AQID".
	tampered := bytes.Replace(data, []byte(`"AQID"`), []byte(`"AQIE"`), 1)
	if bytes.Equal(tampered, data) {
		t.Fatal("cpu section not found in encoded snapshot")
	}

	_, err := Decode(tampered)
	var cerr *ChecksumError
	if !errors.As(err, &cerr) {
		t.Fatalf("Decode error = %v, want ChecksumError", err)
	}
}

func TestStateMissingChecksum(t *testing.T) {
	data := testState().Encode()

	// Strip the checksum field from the envelope.
	i := bytes.Index(data, []byte(`,"checksum":`))
	j := bytes.Index(data, []byte(`,"cpu":`))
	if i < 0 || j < 0 || i >= j {
		t.Fatal("checksum field not found in encoded snapshot")
	}
	stripped := append(append([]byte{}, data[:i]...), data[j:]...)

	_, err := Decode(stripped)
	var cerr *ChecksumError
	if !errors.As(err, &cerr) {
		t.Fatalf("Decode error = %v, want ChecksumError", err)
	}
}

func TestStateMalformed(t *testing.T) {
	if _, err := Decode([]byte(`{`)); err == nil {
		t.Error("Decode of truncated JSON should fail")
	}
	if _, err := Decode([]byte(`[]`)); err == nil {
		t.Error("Decode of non-object JSON should fail")
	}
}

func TestStateUnknownFieldsSkipped(t *testing.T) {
	st := testState()
	data := st.Encode()

	// Splice an unknown field in: forward compatible decoders skip it.
	data = bytes.Replace(data, []byte(`{"version"`), []byte(`{"future":42,"version"`), 1)
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != Version {
		t.Errorf("Version = %d, want %d", got.Version, Version)
	}
}
