package parcel

import (
	"errors"
	"testing"
)

type point struct{ x, y int32 }

func (p point) WriteToParcel(w *Writer) {
	w.WriteInt32(p.x)
	w.WriteInt32(p.y)
}

func TestWriter_Alignment(t *testing.T) {
	w := NewWriter()
	w.WriteString("abcde")
	// 4 length + 5 bytes + 3 pad
	if w.Len() != 12 {
		t.Fatalf("expected 12 bytes, got %d", w.Len())
	}
	w.WriteString("")
	if w.Len() != 16 {
		t.Fatalf("expected 16 bytes after empty string, got %d", w.Len())
	}
}

func TestReader_Primitives(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(-7)
	w.WriteInt64(1 << 40)
	w.WriteBool(true)
	w.WriteString("héllo")
	w.WriteNullString()
	w.WriteString("")

	r := NewReader(w.Bytes())
	if v, err := r.ReadInt32(); err != nil || v != -7 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != 1<<40 {
		t.Fatalf("ReadInt64 = %d, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "héllo" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if v, err := r.ReadNullableString(); err != nil || v != nil {
		t.Fatalf("expected null string, got %v, %v", v, err)
	}
	v, err := r.ReadNullableString()
	if err != nil || v == nil || *v != "" {
		t.Fatalf("expected present empty string, got %v, %v", v, err)
	}
	if err := r.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestReader_Sequence(t *testing.T) {
	w := NewWriter()
	pts := []point{{1, 2}, {3, 4}}
	w.WriteSequence(len(pts), func(w *Writer, i int) { pts[i].WriteToParcel(w) })
	w.WriteNullSequence()
	w.WriteSequence(0, nil)

	r := NewReader(w.Bytes())
	var got []point
	present, err := r.ReadSequence(func(r *Reader) error {
		x, err := r.ReadInt32()
		if err != nil {
			return err
		}
		y, err := r.ReadInt32()
		if err != nil {
			return err
		}
		got = append(got, point{x, y})
		return nil
	})
	if err != nil || !present {
		t.Fatalf("ReadSequence: present=%v err=%v", present, err)
	}
	if len(got) != 2 || got[0] != pts[0] || got[1] != pts[1] {
		t.Fatalf("unexpected elements %v", got)
	}

	present, err = r.ReadSequence(func(*Reader) error { t.Fatal("callback on null sequence"); return nil })
	if err != nil || present {
		t.Fatalf("null sequence: present=%v err=%v", present, err)
	}
	present, err = r.ReadSequence(func(*Reader) error { t.Fatal("callback on empty sequence"); return nil })
	if err != nil || !present {
		t.Fatalf("empty sequence: present=%v err=%v", present, err)
	}
}

func TestReader_SequenceSkipsNullElements(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(2)
	w.WriteInt32(markerNull)
	w.WriteInt32(markerPresent)
	w.WriteInt32(9)

	var got []int32
	_, err := NewReader(w.Bytes()).ReadSequence(func(r *Reader) error {
		v, err := r.ReadInt32()
		got = append(got, v)
		return err
	})
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(got) != 1 || got[0] != 9 {
		t.Fatalf("expected [9], got %v", got)
	}
}

func TestReader_SequencePassesCallbackError(t *testing.T) {
	sentinel := errors.New("boom")
	w := NewWriter()
	w.WriteSequence(1, func(w *Writer, _ int) { w.WriteInt32(1) })
	_, err := NewReader(w.Bytes()).ReadSequence(func(*Reader) error { return sentinel })
	if err != sentinel {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestReader_Parcelable(t *testing.T) {
	w := NewWriter()
	w.WriteParcelable("point", point{5, 6})
	w.WriteNullParcelable()
	w.WriteParcelable("other", point{0, 0})

	r := NewReader(w.Bytes())
	var p point
	ok, err := r.ReadParcelable("point", func(r *Reader) error {
		var err error
		if p.x, err = r.ReadInt32(); err != nil {
			return err
		}
		p.y, err = r.ReadInt32()
		return err
	})
	if err != nil || !ok || p != (point{5, 6}) {
		t.Fatalf("ReadParcelable: ok=%v p=%v err=%v", ok, p, err)
	}
	ok, err = r.ReadParcelable("point", nil)
	if err != nil || ok {
		t.Fatalf("null parcelable: ok=%v err=%v", ok, err)
	}
	_, err = r.ReadParcelable("point", nil)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for wrong tag, got %v", err)
	}
}

func TestReader_Malformed(t *testing.T) {
	le := func(vs ...int32) []byte {
		w := NewWriter()
		for _, v := range vs {
			w.WriteInt32(v)
		}
		return w.Bytes()
	}

	cases := []struct {
		name string
		data []byte
		read func(r *Reader) error
	}{
		{"short int32", []byte{1, 2}, func(r *Reader) error { _, err := r.ReadInt32(); return err }},
		{"short int64", le(1), func(r *Reader) error { _, err := r.ReadInt64(); return err }},
		{"bad bool", le(2), func(r *Reader) error { _, err := r.ReadBool(); return err }},
		{"negative string length", le(-2), func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"string past end", le(100), func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"missing padding", append(le(1), 'a'), func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"invalid utf8", append(le(2), 0xff, 0xfe, 0, 0), func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"negative sequence", le(-5), func(r *Reader) error { _, err := r.ReadSequence(nil); return err }},
		{"huge sequence", le(1 << 30), func(r *Reader) error { _, err := r.ReadSequence(nil); return err }},
		{"bad marker", le(1, 7), func(r *Reader) error { _, err := r.ReadSequence(nil); return err }},
		{"huge count", le(1000), func(r *Reader) error { _, err := r.ReadCount(8); return err }},
		{"trailing", le(1), func(r *Reader) error { return r.Finish() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.read(NewReader(tc.data))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}
