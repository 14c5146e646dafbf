package autofill

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ggoodman/autofill-go/parcel"
)

var (
	// ErrInvalidArgument is reported when a required value is empty or a
	// decoded stream cannot describe a valid value.
	ErrInvalidArgument = errors.New("autofill: invalid argument")
	// ErrDuplicateName is reported when two datasets in one response share a name.
	ErrDuplicateName = errors.New("autofill: duplicate dataset name")
	// ErrAlreadyBuilt is reported by any builder call made after Build.
	ErrAlreadyBuilt = errors.New("autofill: already called Build")
)

// InvalidArgumentError describes which argument was rejected and why.
// It matches ErrInvalidArgument with errors.Is.
type InvalidArgumentError struct {
	Field  string // which argument
	Reason string // why it was rejected
	Err    error  // underlying cause, if any
}

func (e *InvalidArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("autofill: invalid argument %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("autofill: invalid argument: %s", e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// DuplicateNameError names the dataset that collided.
// It matches ErrDuplicateName with errors.Is.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("autofill: duplicate dataset name: %s", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// decodeError folds structural parcel failures into the invalid argument
// kind. Builder failures pass through untouched.
func decodeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, parcel.ErrMalformed) && !errors.Is(err, ErrInvalidArgument) {
		return &InvalidArgumentError{Field: "parcel", Reason: err.Error(), Err: err}
	}
	return err
}

// checkUTF8 rejects strings the parcel reader would refuse to decode.
func checkUTF8(field, s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf("%q is not valid UTF-8", s)}
}
