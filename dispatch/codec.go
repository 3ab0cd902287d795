package dispatch

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned by Reader when the input ends mid-value.
var ErrShortBuffer = errors.New("dispatch: short buffer")

// Encoder is implemented by every generated error variant.
type Encoder interface {
	EncodeTo(w *Writer)
}

// Encode returns the canonical encoding of v.
func Encode(v Encoder) []byte {
	var w Writer
	v.EncodeTo(&w)
	return w.Bytes()
}

// Writer appends fixed-width little endian values.
type Writer struct {
	buf []byte
}

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) PutU8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) PutU16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *Writer) PutU32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *Writer) PutU64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *Writer) PutI8(v int8)    { w.PutU8(uint8(v)) }
func (w *Writer) PutI16(v int16)  { w.PutU16(uint16(v)) }
func (w *Writer) PutI32(v int32)  { w.PutU32(uint32(v)) }
func (w *Writer) PutI64(v int64)  { w.PutU64(uint64(v)) }

func (w *Writer) PutBool(v bool) {
	if v {
		w.PutU8(1)
		return
	}
	w.PutU8(0)
}

// PutFixed appends b as is; the length is part of the type, not the encoding.
func (w *Writer) PutFixed(b []byte) { w.buf = append(w.buf, b...) }

// Reader consumes values written by Writer.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("dispatch: invalid bool byte %#x", v)
	}
}

// Fixed fills dst from the input.
func (r *Reader) Fixed(dst []byte) error {
	b, err := r.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// UnknownVariantError reports an index with no matching variant.
type UnknownVariantError struct {
	Type  string
	Index uint8
}

func (e UnknownVariantError) Error() string {
	return fmt.Sprintf("dispatch: %s has no variant with index %d", e.Type, e.Index)
}
