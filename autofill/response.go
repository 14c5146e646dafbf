package autofill

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// FillResponse is the answer a service gives to a fill request: the datasets
// the user can pick from, the fields the service wants to save later, optional
// extras, and an optional response-level authentication handle.
//
// A FillResponse is immutable and safe to share between goroutines. It is only
// ever produced by a Builder, including when it is decoded.
type FillResponse struct {
	id         string
	datasets   []*Dataset
	savableIDs []FieldID
	savable    map[FieldID]struct{}
	extras     *Bundle
	auth       *AuthHandle
}

// ID returns the response identifier. It is never empty.
func (r *FillResponse) ID() string { return r.id }

// Datasets returns the datasets in the order they were added, or nil.
func (r *FillResponse) Datasets() []*Dataset { return slices.Clone(r.datasets) }

// Dataset returns the dataset with the given name.
func (r *FillResponse) Dataset(name string) (*Dataset, bool) {
	for _, ds := range r.datasets {
		if ds.name == name {
			return ds, true
		}
	}
	return nil, false
}

// SavableIDs returns the fields the service is interested in saving, in the
// order they were first seen, or nil. Every field referenced by a dataset is
// included.
func (r *FillResponse) SavableIDs() []FieldID { return slices.Clone(r.savableIDs) }

// IsSavable reports whether id is one of the savable fields.
func (r *FillResponse) IsSavable(id FieldID) bool {
	_, ok := r.savable[id]
	return ok
}

// Extras returns the response extras, or nil.
func (r *FillResponse) Extras() *Bundle { return r.extras }

// Authentication returns the response-level authentication handle, or nil.
func (r *FillResponse) Authentication() *AuthHandle { return r.auth }

func (r *FillResponse) String() string {
	var sb strings.Builder
	sb.WriteString("FillResponse[id=")
	sb.WriteString(r.id)
	sb.WriteString(", datasets=[")
	for i, ds := range r.datasets {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ds.String())
	}
	sb.WriteString("], savableIds=[")
	for i, id := range r.savableIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(id.String())
	}
	sb.WriteString("], hasExtras=")
	sb.WriteString(boolString(r.extras != nil))
	sb.WriteString(", hasAuthentication=")
	sb.WriteString(boolString(r.auth != nil))
	sb.WriteString("]")
	return sb.String()
}

// LogValue implements slog.LogValuer. Field values and tokens are omitted.
func (r *FillResponse) LogValue() slog.Value {
	names := make([]string, len(r.datasets))
	for i, ds := range r.datasets {
		names[i] = ds.name
	}
	return slog.GroupValue(
		slog.String("id", r.id),
		slog.Any("datasets", names),
		slog.Int("savable_ids", len(r.savableIDs)),
		slog.Bool("has_extras", r.extras != nil),
		slog.Bool("has_authentication", r.auth != nil),
	)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Builder assembles a FillResponse.
//
// Usage:
//
//	b, err := autofill.NewBuilder("r1")
//	if err != nil { ... }
//	resp, err := b.
//	    AddDataset(homer).
//	    AddSavableFields(state, zip).
//	    Build()
//
// Each mutator returns the builder for chaining. The first failure is retained
// and reported by Err right away; every later call is then a no-op and Build
// returns the same failure. A Builder is single use: once Build has returned a
// response, every further call fails with ErrAlreadyBuilt. It is not safe for
// concurrent use.
type Builder struct {
	id         string
	datasets   []*Dataset
	names      map[string]struct{}
	savableIDs []FieldID
	savable    map[FieldID]struct{}
	extras     *Bundle
	auth       *AuthHandle
	built      bool
	err        error
}

// NewBuilder starts a response identified by id, which must not be empty.
func NewBuilder(id string) (*Builder, error) {
	if id == "" {
		return nil, &InvalidArgumentError{Field: "id", Reason: "cannot be empty"}
	}
	if err := checkUTF8("id", id); err != nil {
		return nil, err
	}
	return &Builder{id: id}, nil
}

// NewBuilderWithGeneratedID starts a response with a random id.
func NewBuilderWithGeneratedID() *Builder {
	return &Builder{id: uuid.NewString()}
}

func (b *Builder) mutable() bool {
	if b.err != nil {
		return false
	}
	if b.built {
		b.err = ErrAlreadyBuilt
		return false
	}
	return true
}

// SetAuthentication requires authentication before any dataset of the
// response is used. A nil handle clears it.
func (b *Builder) SetAuthentication(h *AuthHandle) *Builder {
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

// AddDataset adds ds and marks all of its fields savable. A nil dataset is
// ignored. A dataset whose name is already taken fails with ErrDuplicateName
// and is not added.
func (b *Builder) AddDataset(ds *Dataset) *Builder {
	if !b.mutable() || ds == nil {
		return b
	}
	if _, dup := b.names[ds.name]; dup {
		b.err = &DuplicateNameError{Name: ds.name}
		return b
	}
	if b.names == nil {
		b.names = make(map[string]struct{})
	}
	b.names[ds.name] = struct{}{}
	b.datasets = append(b.datasets, ds)
	for _, id := range ds.fieldIDs {
		b.addSavable(id)
	}
	return b
}

// AddSavableFields marks additional fields the service wants to save that are
// not already covered by a dataset. Fields already present are ignored.
func (b *Builder) AddSavableFields(ids ...FieldID) *Builder {
	if !b.mutable() {
		return b
	}
	for _, id := range ids {
		b.addSavable(id)
	}
	return b
}

func (b *Builder) addSavable(id FieldID) {
	if _, ok := b.savable[id]; ok {
		return
	}
	if b.savable == nil {
		b.savable = make(map[FieldID]struct{})
	}
	b.savable[id] = struct{}{}
	b.savableIDs = append(b.savableIDs, id)
}

// SetExtras replaces the extras passed back on later authentication and save
// calls for this response.
func (b *Builder) SetExtras(extras *Bundle) *Builder {
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
func (b *Builder) Err() error { return b.err }

// Build freezes the builder and returns the response.
func (b *Builder) Build() (*FillResponse, error) {
	if !b.mutable() {
		return nil, b.err
	}
	b.built = true
	resp := &FillResponse{
		id:         b.id,
		datasets:   slices.Clone(b.datasets),
		savableIDs: slices.Clone(b.savableIDs),
		savable:    make(map[FieldID]struct{}, len(b.savableIDs)),
		extras:     b.extras,
		auth:       b.auth,
	}
	for _, id := range resp.savableIDs {
		resp.savable[id] = struct{}{}
	}
	return resp, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *FillResponse {
	resp, err := b.Build()
	if err != nil {
		panic(err)
	}
	return resp
}
