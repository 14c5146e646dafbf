package autofill

import (
	"errors"
	"testing"
)

func TestNewDatasetBuilder_EmptyName(t *testing.T) {
	if _, err := NewDatasetBuilder(""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDatasetBuilder_RequiresField(t *testing.T) {
	b, _ := NewDatasetBuilder("empty")
	if _, err := b.Build(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for dataset without fields, got %v", err)
	}
}

func TestDatasetBuilder_SetValueReplacesInPlace(t *testing.T) {
	b, _ := NewDatasetBuilder("d")
	ds, err := b.
		SetTextValue(id1, "first").
		SetValue(id2, ToggleValue(true)).
		SetTextValue(id1, "second").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ids := ds.FieldIDs()
	if len(ids) != 2 || ids[0] != id1 || ids[1] != id2 {
		t.Fatalf("unexpected field order %v", ids)
	}
	v, _ := ds.Value(id1)
	if s, ok := v.Text(); !ok || s != "second" {
		t.Fatalf("expected replaced text value, got %v", v)
	}
}

func TestDatasetBuilder_InvalidValue(t *testing.T) {
	b, _ := NewDatasetBuilder("d")
	b.SetValue(id1, Value{}).SetTextValue(id2, "ignored")
	if !errors.Is(b.Err(), ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", b.Err())
	}
	if len(b.fieldIDs) != 0 {
		t.Fatalf("calls after a failure must be ignored, got %v", b.fieldIDs)
	}
	if _, err := b.Build(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Build should report the recorded failure, got %v", err)
	}
}

func TestDatasetBuilder_AlreadyBuilt(t *testing.T) {
	b, _ := NewDatasetBuilder("d")
	if _, err := b.SetTextValue(id1, "x").Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := b.SetTextValue(id2, "y").Err(); !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("expected ErrAlreadyBuilt, got %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("expected ErrAlreadyBuilt, got %v", err)
	}
}

func TestDataset_ExtrasAndAuthentication(t *testing.T) {
	auth := NewAuthHandle()
	extras := NewBundle(map[string]string{"vault": "home"})
	b, _ := NewDatasetBuilder("d")
	ds, err := b.SetTextValue(id1, "x").SetAuthentication(auth).SetExtras(extras).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !ds.Authentication().Equal(auth) {
		t.Fatalf("authentication not kept")
	}
	if v, _ := ds.Extras().Get("vault"); v != "home" {
		t.Fatalf("extras not kept")
	}
}

func TestValue_Accessors(t *testing.T) {
	cases := []struct {
		v    Value
		kind ValueKind
	}{
		{TextValue("a"), KindText},
		{ToggleValue(true), KindToggle},
		{ListValue(3), KindList},
		{DateValue(1700000000000), KindDate},
	}
	for _, tc := range cases {
		if tc.v.Kind() != tc.kind || !tc.v.IsValid() {
			t.Fatalf("%v: expected kind %v", tc.v, tc.kind)
		}
	}
	if _, ok := TextValue("a").Toggle(); ok {
		t.Fatalf("text value must not report a toggle")
	}
	if i, ok := ListValue(3).ListIndex(); !ok || i != 3 {
		t.Fatalf("ListIndex = %d, %v", i, ok)
	}
	if d, ok := DateValue(42).Date(); !ok || d != 42 {
		t.Fatalf("Date = %d, %v", d, ok)
	}
	if (Value{}).IsValid() {
		t.Fatalf("zero value must be invalid")
	}
}

func TestBundle_NilAndCopy(t *testing.T) {
	var nilBundle *Bundle
	if nilBundle.Len() != 0 || nilBundle.Keys() != nil || nilBundle.Map() != nil {
		t.Fatalf("nil bundle should read as empty")
	}
	src := map[string]string{"b": "2", "a": "1"}
	b := NewBundle(src)
	src["c"] = "3"
	if b.Len() != 2 {
		t.Fatalf("NewBundle must copy its input")
	}
	m := b.Map()
	m["d"] = "4"
	if b.Len() != 2 {
		t.Fatalf("Map must return a copy")
	}
	if keys := b.Keys(); keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}
	if nilBundle.Equal(NewBundle(nil)) {
		t.Fatalf("nil bundle must not equal an empty one")
	}
}

func TestAuthHandleFromToken(t *testing.T) {
	if _, err := AuthHandleFromToken(""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	h, err := AuthHandleFromToken("tok")
	if err != nil || h.Token() != "tok" {
		t.Fatalf("AuthHandleFromToken = %v, %v", h, err)
	}
}
