package autofill

import (
	"errors"
	"testing"
)

func TestFieldID_StringAndParse(t *testing.T) {
	cases := []struct {
		id   FieldID
		text string
	}{
		{NewFieldID(12), "12"},
		{NewFieldID(-1), "-1"},
		{NewVirtualFieldID(12, 3), "12:3"},
		{NewVirtualFieldID(0, 0), "0:0"},
	}
	for _, tc := range cases {
		if got := tc.id.String(); got != tc.text {
			t.Fatalf("String() = %q, want %q", got, tc.text)
		}
		parsed, err := ParseFieldID(tc.text)
		if err != nil {
			t.Fatalf("ParseFieldID(%q): %v", tc.text, err)
		}
		if parsed != tc.id {
			t.Fatalf("ParseFieldID(%q) = %#v, want %#v", tc.text, parsed, tc.id)
		}
	}
}

func TestFieldID_VirtualDistinct(t *testing.T) {
	if NewFieldID(1) == NewVirtualFieldID(1, 0) {
		t.Fatalf("virtual and concrete ids must differ")
	}
	set := map[FieldID]struct{}{}
	for _, id := range []FieldID{NewFieldID(1), NewVirtualFieldID(1, 0), NewFieldID(1)} {
		set[id] = struct{}{}
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(set))
	}
}

func TestParseFieldID_Invalid(t *testing.T) {
	for _, s := range []string{"", "x", "1:", ":1", "1:2:3", "99999999999"} {
		if _, err := ParseFieldID(s); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("ParseFieldID(%q): expected ErrInvalidArgument, got %v", s, err)
		}
	}
}
