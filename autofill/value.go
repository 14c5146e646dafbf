package autofill

import (
	"fmt"
	"strconv"

	"github.com/ggoodman/autofill-go/parcel"
)

// ValueKind distinguishes the shapes a field value can take.
type ValueKind int32

const (
	KindText   ValueKind = 1
	KindToggle ValueKind = 2
	KindList   ValueKind = 3
	KindDate   ValueKind = 4
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindToggle:
		return "toggle"
	case KindList:
		return "list"
	case KindDate:
		return "date"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the content a dataset assigns to one field. The zero Value is
// invalid and is rejected by DatasetBuilder.
type Value struct {
	kind   ValueKind
	text   string
	toggle bool
	index  int32
	date   int64
}

// TextValue returns a value for text fields.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// ToggleValue returns a value for checkable fields.
func ToggleValue(on bool) Value { return Value{kind: KindToggle, toggle: on} }

// ListValue returns a value selecting the option at index in a list field.
func ListValue(index int32) Value { return Value{kind: KindList, index: index} }

// DateValue returns a value for date fields, in milliseconds since the Unix epoch.
func DateValue(unixMillis int64) Value { return Value{kind: KindDate, date: unixMillis} }

// Kind reports the shape of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid reports whether v was produced by one of the constructors.
func (v Value) IsValid() bool { return v.kind >= KindText && v.kind <= KindDate }

// Text returns the text of a text value.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

// Toggle returns the state of a toggle value.
func (v Value) Toggle() (bool, bool) { return v.toggle, v.kind == KindToggle }

// ListIndex returns the selected index of a list value.
func (v Value) ListIndex() (int32, bool) { return v.index, v.kind == KindList }

// Date returns the milliseconds of a date value.
func (v Value) Date() (int64, bool) { return v.date, v.kind == KindDate }

func (v Value) String() string {
	switch v.kind {
	case KindText:
		// Field content may be sensitive; only its size is printed.
		return fmt.Sprintf("text(%d chars)", len([]rune(v.text)))
	case KindToggle:
		return fmt.Sprintf("toggle(%t)", v.toggle)
	case KindList:
		return fmt.Sprintf("list(%d)", v.index)
	case KindDate:
		return fmt.Sprintf("date(%d)", v.date)
	default:
		return "invalid"
	}
}

// WriteToParcel implements parcel.Parcelable.
func (v Value) WriteToParcel(w *parcel.Writer) {
	w.WriteInt32(int32(v.kind))
	switch v.kind {
	case KindText:
		w.WriteString(v.text)
	case KindToggle:
		w.WriteBool(v.toggle)
	case KindList:
		w.WriteInt32(v.index)
	case KindDate:
		w.WriteInt64(v.date)
	}
}

func readValue(r *parcel.Reader) (Value, error) {
	kind, err := r.ReadInt32()
	if err != nil {
		return Value{}, err
	}
	switch ValueKind(kind) {
	case KindText:
		s, err := r.ReadString()
		return TextValue(s), err
	case KindToggle:
		b, err := r.ReadBool()
		return ToggleValue(b), err
	case KindList:
		i, err := r.ReadInt32()
		return ListValue(i), err
	case KindDate:
		d, err := r.ReadInt64()
		return DateValue(d), err
	default:
		return Value{}, fmt.Errorf("%w: value kind %d", parcel.ErrMalformed, kind)
	}
}
