// Package snapshot serializes and restores the full console state.
//
// Component state is packed into flat little-endian byte streams through
// Writer and Reader, then wrapped into a versioned JSON envelope.
package snapshot

import "io"

// Writer accumulates component state as a flat little-endian stream.
// The zero value is ready to use.
type Writer struct {
	buf []byte
}

func (w *Writer) U8(v uint8)  { w.buf = append(w.buf, v) }
func (w *Writer) I8(v int8)   { w.U8(uint8(v)) }
func (w *Writer) U16(v uint16) {
	w.buf = append(w.buf, uint8(v), uint8(v>>8))
}
func (w *Writer) U32(v uint32) {
	w.buf = append(w.buf, uint8(v), uint8(v>>8), uint8(v>>16), uint8(v>>24))
}
func (w *Writer) U64(v uint64) {
	w.U32(uint32(v))
	w.U32(uint32(v >> 32))
}
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }
func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// Bytes writes a length-prefixed byte slice.
func (w *Writer) Bytes(b []byte) {
	w.U32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// Data returns the accumulated stream.
func (w *Writer) Data() []byte { return w.buf }

// Reader decodes a stream produced by Writer. After the first short read
// every accessor returns zero values and Err reports io.ErrUnexpectedEOF,
// so callers only need a single error check once done.
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) I8() int8 { return int8(r.U8()) }

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (r *Reader) U64() uint64 {
	lo := r.U32()
	hi := r.U32()
	return uint64(hi)<<32 | uint64(lo)
}

func (r *Reader) I32() int32 { return int32(r.U32()) }
func (r *Reader) I64() int64 { return int64(r.U64()) }

func (r *Reader) Bool() bool { return r.U8() != 0 }

// Bytes reads a length-prefixed byte slice into dst, which must have the
// same length as the stored slice.
func (r *Reader) Bytes(dst []byte) {
	n := int(r.U32())
	b := r.take(n)
	if b == nil {
		return
	}
	if n != len(dst) {
		r.err = io.ErrUnexpectedEOF
		return
	}
	copy(dst, b)
}

// RawBytes reads a length-prefixed byte slice and returns a copy of it.
func (r *Reader) RawBytes() []byte {
	n := int(r.U32())
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
