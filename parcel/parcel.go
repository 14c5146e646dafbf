package parcel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMalformed is wrapped by every error a Reader returns for input that does
// not follow the parcel layout.
var ErrMalformed = errors.New("parcel: malformed data")

const (
	nullLength = -1

	markerNull    = 0
	markerPresent = 1
)

// Parcelable is a value that knows how to flatten itself into a Writer.
type Parcelable interface {
	WriteToParcel(w *Writer)
}

// Writer appends parcel-encoded values to an in-memory buffer. The zero value
// is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the encoded contents. The slice aliases the writer's buffer
// until the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteInt32 appends a little-endian int32.
func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInt64 appends a little-endian int64.
func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// WriteBool appends a bool as an int32 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteInt32(1)
		return
	}
	w.WriteInt32(0)
}

// WriteString appends a non-null string.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
	w.pad()
}

// WriteNullString appends the null string marker.
func (w *Writer) WriteNullString() { w.WriteInt32(nullLength) }

// WriteSequence appends a length-prefixed sequence of n present elements,
// calling each to write the i-th element.
func (w *Writer) WriteSequence(n int, each func(w *Writer, i int)) {
	w.WriteInt32(int32(n))
	for i := 0; i < n; i++ {
		w.WriteInt32(markerPresent)
		each(w, i)
	}
}

// WriteNullSequence appends the null sequence marker.
func (w *Writer) WriteNullSequence() { w.WriteInt32(nullLength) }

// WriteParcelable appends p preceded by its type tag.
func (w *Writer) WriteParcelable(tag string, p Parcelable) {
	w.WriteString(tag)
	p.WriteToParcel(w)
}

// WriteNullParcelable appends the marker for an absent parcelable.
func (w *Writer) WriteNullParcelable() { w.WriteNullString() }

func (w *Writer) pad() {
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

// Reader consumes parcel-encoded values from a byte slice.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader over data. The slice is not copied.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Finish returns an error if any bytes remain unread.
func (r *Reader) Finish() error {
	if n := r.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformed, n)
	}
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, r.off, r.Remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// ReadBool reads an int32 that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool value %d", ErrMalformed, v)
	}
}

// ReadNullableString reads a string, returning nil for the null marker.
func (r *Reader) ReadNullableString() (*string, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n == nullLength {
		return nil, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: string length %d", ErrMalformed, n)
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: string is not valid UTF-8", ErrMalformed)
	}
	if _, err := r.take(padding(int(n))); err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// ReadString reads a string. The null marker reads as "".
func (r *Reader) ReadString() (string, error) {
	s, err := r.ReadNullableString()
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

// ReadSequence reads a sequence written by WriteSequence, calling each for
// every present element. Null elements are skipped. It reports false when the
// sequence itself was null.
//
// Errors returned by each are passed through unchanged.
func (r *Reader) ReadSequence(each func(r *Reader) error) (bool, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return false, err
	}
	if n == nullLength {
		return false, nil
	}
	if n < 0 {
		return false, fmt.Errorf("%w: sequence length %d", ErrMalformed, n)
	}
	// Every element carries at least its 4-byte presence marker.
	if int(n) > r.Remaining()/4 {
		return false, fmt.Errorf("%w: sequence length %d exceeds remaining input", ErrMalformed, n)
	}
	for i := int32(0); i < n; i++ {
		marker, err := r.ReadInt32()
		if err != nil {
			return false, err
		}
		switch marker {
		case markerNull:
			continue
		case markerPresent:
		default:
			return false, fmt.Errorf("%w: element marker %d", ErrMalformed, marker)
		}
		if err := each(r); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ReadParcelable reads a parcelable written by WriteParcelable. A null tag
// reports false without calling read. A tag other than want is malformed.
func (r *Reader) ReadParcelable(want string, read func(r *Reader) error) (bool, error) {
	tag, err := r.ReadNullableString()
	if err != nil {
		return false, err
	}
	if tag == nil {
		return false, nil
	}
	if *tag != want {
		return false, fmt.Errorf("%w: parcelable tag %q, want %q", ErrMalformed, *tag, want)
	}
	if err := read(r); err != nil {
		return false, err
	}
	return true, nil
}

// ReadCount reads a non-negative element count and checks that at least
// minSize bytes per element remain.
func (r *Reader) ReadCount(minSize int) (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: count %d", ErrMalformed, n)
	}
	if minSize > 0 && int(n) > r.Remaining()/minSize {
		return 0, fmt.Errorf("%w: count %d exceeds remaining input", ErrMalformed, n)
	}
	return int(n), nil
}

func padding(n int) int {
	return (4 - n%4) % 4
}
