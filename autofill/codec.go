package autofill

import (
	"github.com/ggoodman/autofill-go/parcel"
)

// WriteToParcel implements parcel.Parcelable. The field order is part of the
// wire contract: id, datasets, savable ids, extras, authentication.
func (r *FillResponse) WriteToParcel(w *parcel.Writer) {
	w.WriteString(r.id)
	if len(r.datasets) == 0 {
		w.WriteNullSequence()
	} else {
		w.WriteSequence(len(r.datasets), func(w *parcel.Writer, i int) {
			r.datasets[i].WriteToParcel(w)
		})
	}
	if len(r.savableIDs) == 0 {
		w.WriteNullSequence()
	} else {
		w.WriteSequence(len(r.savableIDs), func(w *parcel.Writer, i int) {
			r.savableIDs[i].WriteToParcel(w)
		})
	}
	writeBundle(w, r.extras)
	writeAuthHandle(w, r.auth)
}

// ReadFillResponse decodes a response written by WriteToParcel.
//
// The bytes are treated as untrusted: the response is rebuilt by replaying
// the same Builder calls a caller would make, so a crafted stream fails with
// ErrInvalidArgument or ErrDuplicateName exactly like direct construction.
// Structural damage is reported as ErrInvalidArgument wrapping
// parcel.ErrMalformed.
func ReadFillResponse(pr *parcel.Reader) (*FillResponse, error) {
	resp, err := readFillResponse(pr)
	if err != nil {
		return nil, decodeError(err)
	}
	return resp, nil
}

func readFillResponse(pr *parcel.Reader) (*FillResponse, error) {
	id, err := pr.ReadString()
	if err != nil {
		return nil, err
	}
	b, err := NewBuilder(id)
	if err != nil {
		return nil, err
	}
	if _, err := pr.ReadSequence(func(pr *parcel.Reader) error {
		ds, err := readDataset(pr)
		if err != nil {
			return err
		}
		return b.AddDataset(ds).Err()
	}); err != nil {
		return nil, err
	}
	if _, err := pr.ReadSequence(func(pr *parcel.Reader) error {
		id, err := readFieldID(pr)
		if err != nil {
			return err
		}
		return b.AddSavableFields(id).Err()
	}); err != nil {
		return nil, err
	}
	extras, err := readBundle(pr)
	if err != nil {
		return nil, err
	}
	auth, err := readAuthHandle(pr)
	if err != nil {
		return nil, err
	}
	return b.SetExtras(extras).SetAuthentication(auth).Build()
}

// Marshal encodes r.
func Marshal(r *FillResponse) ([]byte, error) {
	if r == nil {
		return nil, &InvalidArgumentError{Field: "response", Reason: "cannot be nil"}
	}
	w := parcel.NewWriter()
	r.WriteToParcel(w)
	return w.Bytes(), nil
}

// Unmarshal decodes a response produced by Marshal. The whole input must be
// consumed.
func Unmarshal(data []byte) (*FillResponse, error) {
	pr := parcel.NewReader(data)
	resp, err := ReadFillResponse(pr)
	if err != nil {
		return nil, err
	}
	if err := pr.Finish(); err != nil {
		return nil, decodeError(err)
	}
	return resp, nil
}
