// Package document defines a YAML/JSON form of a fill response for fixtures
// and tooling.
//
// A document is plain data. Converting it into an autofill.FillResponse with
// Build runs every value through the autofill builders, so a document is
// accepted exactly when the equivalent builder calls would succeed.
//
//	id: r1
//	datasets:
//	  - name: homer
//	    fields:
//	      - id: "1"
//	        text: Homer
//	      - id: "2:1"
//	        toggle: true
//	savableFields: ["5", "6"]
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ggoodman/autofill-go/autofill"
)

// Format selects the text encoding of a document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for a format or file extension that is neither
// YAML nor JSON.
var ErrUnknownFormat = errors.New("document: unknown format")

// ParseFormat accepts "yaml", "yml" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Response is the document form of autofill.FillResponse.
type Response struct {
	ID             string            `json:"id" yaml:"id" jsonschema:"required,minLength=1" jsonschema_description:"Response id handed back on later authentication and save calls."`
	Datasets       []Dataset         `json:"datasets,omitempty" yaml:"datasets,omitempty" jsonschema_description:"Suggestions offered to the user. Names must be unique."`
	SavableFields  []string          `json:"savableFields,omitempty" yaml:"savableFields,omitempty" jsonschema:"pattern=^-?[0-9]+(:-?[0-9]+)?$" jsonschema_description:"Fields to save in addition to those covered by datasets."`
	Extras         map[string]string `json:"extras,omitempty" yaml:"extras,omitempty"`
	Authentication string            `json:"authentication,omitempty" yaml:"authentication,omitempty" jsonschema_description:"Token of the authentication required before any dataset is used."`
}

// Dataset is the document form of autofill.Dataset.
type Dataset struct {
	Name           string            `json:"name" yaml:"name" jsonschema:"required,minLength=1"`
	Fields         []Field           `json:"fields" yaml:"fields" jsonschema:"required,minItems=1"`
	Extras         map[string]string `json:"extras,omitempty" yaml:"extras,omitempty"`
	Authentication string            `json:"authentication,omitempty" yaml:"authentication,omitempty"`
}

// Field assigns one value to a field. Exactly one of the value members must
// be set.
type Field struct {
	ID     string  `json:"id" yaml:"id" jsonschema:"required,pattern=^-?[0-9]+(:-?[0-9]+)?$" jsonschema_description:"View id, or parent:child for a virtual field."`
	Text   *string `json:"text,omitempty" yaml:"text,omitempty"`
	Toggle *bool   `json:"toggle,omitempty" yaml:"toggle,omitempty"`
	List   *int32  `json:"list,omitempty" yaml:"list,omitempty" jsonschema_description:"Index of the selected list entry."`
	Date   *int64  `json:"date,omitempty" yaml:"date,omitempty" jsonschema_description:"Unix time in milliseconds."`
}

func (f Field) value() (autofill.Value, error) {
	var (
		v autofill.Value
		n int
	)
	if f.Text != nil {
		v, n = autofill.TextValue(*f.Text), n+1
	}
	if f.Toggle != nil {
		v, n = autofill.ToggleValue(*f.Toggle), n+1
	}
	if f.List != nil {
		v, n = autofill.ListValue(*f.List), n+1
	}
	if f.Date != nil {
		v, n = autofill.DateValue(*f.Date), n+1
	}
	if n != 1 {
		return autofill.Value{}, &autofill.InvalidArgumentError{
			Field:  "field " + f.ID,
			Reason: fmt.Sprintf("exactly one of text, toggle, list or date must be set, got %d", n),
		}
	}
	return v, nil
}

// Parse decodes a document. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Response, error) {
	var doc Response
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("parse yaml document: empty input")
			}
			return nil, fmt.Errorf("parse yaml document: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json document: %w", err)
		}
		if dec.More() {
			return nil, errors.New("parse json document: trailing data")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &doc, nil
}

// ParseYAML is Parse with FormatYAML.
func ParseYAML(data []byte) (*Response, error) { return Parse(data, FormatYAML) }

// ParseJSON is Parse with FormatJSON.
func ParseJSON(data []byte) (*Response, error) { return Parse(data, FormatJSON) }

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc *Response, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml document: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json document: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Build converts the document into a response through the autofill builders.
// Errors carry the location of the offending element and match the autofill
// sentinels with errors.Is.
func (r *Response) Build() (*autofill.FillResponse, error) {
	b, err := autofill.NewBuilder(r.ID)
	if err != nil {
		return nil, err
	}
	for i, d := range r.Datasets {
		ds, err := d.Build()
		if err != nil {
			return nil, fmt.Errorf("datasets[%d]: %w", i, err)
		}
		if err := b.AddDataset(ds).Err(); err != nil {
			return nil, fmt.Errorf("datasets[%d]: %w", i, err)
		}
	}
	for i, s := range r.SavableFields {
		id, err := autofill.ParseFieldID(s)
		if err != nil {
			return nil, fmt.Errorf("savableFields[%d]: %w", i, err)
		}
		b.AddSavableFields(id)
	}
	if r.Extras != nil {
		b.SetExtras(autofill.NewBundle(r.Extras))
	}
	if r.Authentication != "" {
		h, err := autofill.AuthHandleFromToken(r.Authentication)
		if err != nil {
			return nil, err
		}
		b.SetAuthentication(h)
	}
	return b.Build()
}

// Build converts the dataset through autofill.DatasetBuilder.
func (d *Dataset) Build() (*autofill.Dataset, error) {
	b, err := autofill.NewDatasetBuilder(d.Name)
	if err != nil {
		return nil, err
	}
	for j, f := range d.Fields {
		id, err := autofill.ParseFieldID(f.ID)
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", j, err)
		}
		v, err := f.value()
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", j, err)
		}
		b.SetValue(id, v)
	}
	if d.Extras != nil {
		b.SetExtras(autofill.NewBundle(d.Extras))
	}
	if d.Authentication != "" {
		h, err := autofill.AuthHandleFromToken(d.Authentication)
		if err != nil {
			return nil, err
		}
		b.SetAuthentication(h)
	}
	return b.Build()
}

// FromFillResponse returns the document form of r. Savable fields already
// covered by a dataset are omitted. Extras that are present but empty are
// dropped, because the document form cannot tell them apart from absent
// extras once encoded; otherwise Build of the encoded result yields an equal
// response.
func FromFillResponse(r *autofill.FillResponse) *Response {
	doc := &Response{
		ID:     r.ID(),
		Extras: r.Extras().Map(),
	}
	if h := r.Authentication(); h != nil {
		doc.Authentication = h.Token()
	}
	covered := make(map[autofill.FieldID]struct{})
	for _, ds := range r.Datasets() {
		d := fromDataset(ds)
		for _, id := range ds.FieldIDs() {
			covered[id] = struct{}{}
		}
		doc.Datasets = append(doc.Datasets, d)
	}
	for _, id := range r.SavableIDs() {
		if _, ok := covered[id]; !ok {
			doc.SavableFields = append(doc.SavableFields, id.String())
		}
	}
	return doc
}

func fromDataset(ds *autofill.Dataset) Dataset {
	d := Dataset{
		Name:   ds.Name(),
		Extras: ds.Extras().Map(),
	}
	if h := ds.Authentication(); h != nil {
		d.Authentication = h.Token()
	}
	for _, id := range ds.FieldIDs() {
		v, _ := ds.Value(id)
		f := Field{ID: id.String()}
		switch v.Kind() {
		case autofill.KindText:
			s, _ := v.Text()
			f.Text = &s
		case autofill.KindToggle:
			b, _ := v.Toggle()
			f.Toggle = &b
		case autofill.KindList:
			i, _ := v.ListIndex()
			f.List = &i
		case autofill.KindDate:
			t, _ := v.Date()
			f.Date = &t
		}
		d.Fields = append(d.Fields, f)
	}
	return d
}
