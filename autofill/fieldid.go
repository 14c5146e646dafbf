package autofill

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ggoodman/autofill-go/parcel"
)

// FieldID identifies one fillable field in the host UI. A field is either a
// concrete view or a virtual child of one. FieldID is comparable and can be
// used as a map key.
type FieldID struct {
	viewID    int32
	virtualID int32
	virtual   bool
}

// NewFieldID returns the id of a concrete view.
func NewFieldID(viewID int32) FieldID {
	return FieldID{viewID: viewID}
}

// NewVirtualFieldID returns the id of a virtual child of parentID.
func NewVirtualFieldID(parentID, virtualID int32) FieldID {
	return FieldID{viewID: parentID, virtualID: virtualID, virtual: true}
}

// ParseFieldID parses the form produced by String: "12" or "12:3".
func ParseFieldID(s string) (FieldID, error) {
	view, virt, isVirtual := strings.Cut(s, ":")
	v, err := strconv.ParseInt(view, 10, 32)
	if err != nil {
		return FieldID{}, &InvalidArgumentError{Field: "field id", Reason: fmt.Sprintf("%q: %v", s, err)}
	}
	if !isVirtual {
		return NewFieldID(int32(v)), nil
	}
	c, err := strconv.ParseInt(virt, 10, 32)
	if err != nil {
		return FieldID{}, &InvalidArgumentError{Field: "field id", Reason: fmt.Sprintf("%q: %v", s, err)}
	}
	return NewVirtualFieldID(int32(v), int32(c)), nil
}

// ViewID returns the id of the view, or of the parent view for a virtual field.
func (f FieldID) ViewID() int32 { return f.viewID }

// VirtualID returns the child id of a virtual field and 0 otherwise.
func (f FieldID) VirtualID() int32 { return f.virtualID }

// IsVirtual reports whether f names a virtual child.
func (f FieldID) IsVirtual() bool { return f.virtual }

func (f FieldID) String() string {
	if f.virtual {
		return strconv.FormatInt(int64(f.viewID), 10) + ":" + strconv.FormatInt(int64(f.virtualID), 10)
	}
	return strconv.FormatInt(int64(f.viewID), 10)
}

// WriteToParcel implements parcel.Parcelable.
func (f FieldID) WriteToParcel(w *parcel.Writer) {
	w.WriteBool(f.virtual)
	w.WriteInt32(f.viewID)
	if f.virtual {
		w.WriteInt32(f.virtualID)
	}
}

func readFieldID(r *parcel.Reader) (FieldID, error) {
	virtual, err := r.ReadBool()
	if err != nil {
		return FieldID{}, err
	}
	view, err := r.ReadInt32()
	if err != nil {
		return FieldID{}, err
	}
	if !virtual {
		return NewFieldID(view), nil
	}
	child, err := r.ReadInt32()
	if err != nil {
		return FieldID{}, err
	}
	return NewVirtualFieldID(view, child), nil
}
