package autofill

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ggoodman/autofill-go/parcel"
)

// Dataset is one named suggestion: a group of field values that are filled
// together when the user picks it. A Dataset is immutable once built.
type Dataset struct {
	name     string
	fieldIDs []FieldID
	values   map[FieldID]Value
	extras   *Bundle
	auth     *AuthHandle
}

// Name returns the label shown to the user. Names are unique within a response.
func (d *Dataset) Name() string { return d.name }

// FieldIDs returns the fields this dataset fills, in the order they were first set.
func (d *Dataset) FieldIDs() []FieldID { return slices.Clone(d.fieldIDs) }

// Value returns the value assigned to id.
func (d *Dataset) Value(id FieldID) (Value, bool) {
	v, ok := d.values[id]
	return v, ok
}

// Values returns a copy of all field assignments.
func (d *Dataset) Values() map[FieldID]Value { return maps.Clone(d.values) }

// Extras returns the dataset extras, or nil.
func (d *Dataset) Extras() *Bundle { return d.extras }

// Authentication returns the dataset-level authentication handle, or nil.
func (d *Dataset) Authentication() *AuthHandle { return d.auth }

// Equal reports whether d and o carry the same name, fields, values, extras
// and authentication.
func (d *Dataset) Equal(o *Dataset) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.name == o.name &&
		slices.Equal(d.fieldIDs, o.fieldIDs) &&
		maps.Equal(d.values, o.values) &&
		d.extras.Equal(o.extras) &&
		d.auth.Equal(o.auth)
}

func (d *Dataset) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dataset[name=%s, fields=[", d.name)
	for i, id := range d.fieldIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", id, d.values[id])
	}
	fmt.Fprintf(&sb, "], hasExtras=%t, hasAuthentication=%t]", d.extras != nil, d.auth != nil)
	return sb.String()
}

// WriteToParcel implements parcel.Parcelable.
func (d *Dataset) WriteToParcel(w *parcel.Writer) {
	w.WriteString(d.name)
	w.WriteInt32(int32(len(d.fieldIDs)))
	for _, id := range d.fieldIDs {
		id.WriteToParcel(w)
		d.values[id].WriteToParcel(w)
	}
	writeBundle(w, d.extras)
	writeAuthHandle(w, d.auth)
}

// readDataset decodes a dataset by replaying a DatasetBuilder so that decoded
// datasets obey the same rules as programmatically built ones.
func readDataset(r *parcel.Reader) (*Dataset, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	b, err := NewDatasetBuilder(name)
	if err != nil {
		return nil, err
	}
	// id (at least 8 bytes) plus value (at least 8 bytes) per field
	n, err := r.ReadCount(16)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		id, err := readFieldID(r)
		if err != nil {
			return nil, err
		}
		v, err := readValue(r)
		if err != nil {
			return nil, err
		}
		if err := b.SetValue(id, v).Err(); err != nil {
			return nil, err
		}
	}
	extras, err := readBundle(r)
	if err != nil {
		return nil, err
	}
	auth, err := readAuthHandle(r)
	if err != nil {
		return nil, err
	}
	return b.SetExtras(extras).SetAuthentication(auth).Build()
}

// DatasetBuilder assembles a Dataset. It is single use and not safe for
// concurrent use. Setters return the builder for chaining; the first failure
// is retained, reported by Err, and returned again by Build.
type DatasetBuilder struct {
	name     string
	fieldIDs []FieldID
	values   map[FieldID]Value
	extras   *Bundle
	auth     *AuthHandle
	built    bool
	err      error
}

// NewDatasetBuilder starts a dataset labelled name.
func NewDatasetBuilder(name string) (*DatasetBuilder, error) {
	if name == "" {
		return nil, &InvalidArgumentError{Field: "dataset name", Reason: "cannot be empty"}
	}
	if err := checkUTF8("dataset name", name); err != nil {
		return nil, err
	}
	return &DatasetBuilder{name: name, values: make(map[FieldID]Value)}, nil
}

func (b *DatasetBuilder) mutable() bool {
	if b.err != nil {
		return false
	}
	if b.built {
		b.err = ErrAlreadyBuilt
		return false
	}
	return true
}

// SetValue assigns v to the field id. Setting a field again replaces its value
// and keeps its original position.
func (b *DatasetBuilder) SetValue(id FieldID, v Value) *DatasetBuilder {
	if !b.mutable() {
		return b
	}
	if !v.IsValid() {
		b.err = &InvalidArgumentError{Field: "value", Reason: fmt.Sprintf("field %s: %s", id, v.Kind())}
		return b
	}
	if text, ok := v.Text(); ok {
		if err := checkUTF8("value of field "+id.String(), text); err != nil {
			b.err = err
			return b
		}
	}
	if _, exists := b.values[id]; !exists {
		b.fieldIDs = append(b.fieldIDs, id)
	}
	b.values[id] = v
	return b
}

// SetTextValue is shorthand for SetValue(id, TextValue(text)).
func (b *DatasetBuilder) SetTextValue(id FieldID, text string) *DatasetBuilder {
	return b.SetValue(id, TextValue(text))
}

// SetAuthentication requires authentication before this dataset is used.
// A nil handle clears it.
func (b *DatasetBuilder) SetAuthentication(h *AuthHandle) *DatasetBuilder {
	if !b.mutable() {
		return b
	}
	if err := h.validate(); err != nil {
		b.err = err
		return b
	}
	b.auth = h
	return b
}

// SetExtras replaces the dataset extras.
func (b *DatasetBuilder) SetExtras(extras *Bundle) *DatasetBuilder {
	if !b.mutable() {
		return b
	}
	if err := extras.validate(); err != nil {
		b.err = err
		return b
	}
	b.extras = extras
	return b
}

// Err returns the first failure recorded by the builder.
func (b *DatasetBuilder) Err() error { return b.err }

// Build returns the Dataset. A dataset must assign at least one field.
func (b *DatasetBuilder) Build() (*Dataset, error) {
	if !b.mutable() {
		return nil, b.err
	}
	if len(b.fieldIDs) == 0 {
		return nil, &InvalidArgumentError{Field: "dataset " + b.name, Reason: "at least one field value must be set"}
	}
	b.built = true
	return &Dataset{
		name:     b.name,
		fieldIDs: slices.Clone(b.fieldIDs),
		values:   maps.Clone(b.values),
		extras:   b.extras,
		auth:     b.auth,
	}, nil
}
