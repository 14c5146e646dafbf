package autofill

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/ggoodman/autofill-go/parcel"
)

const (
	bundleTag     = "autofill.Bundle"
	authHandleTag = "autofill.AuthHandle"
)

// Bundle carries service-defined extras that the platform hands back on later
// authentication and save calls. A Bundle is immutable; a nil *Bundle is an
// empty one for reading.
type Bundle struct {
	m map[string]string
}

// NewBundle copies kv into a new Bundle.
func NewBundle(kv map[string]string) *Bundle {
	return &Bundle{m: maps.Clone(kv)}
}

// Get returns the value stored under key.
func (b *Bundle) Get(key string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b.m[key]
	return v, ok
}

// Len reports the number of entries.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.m)
}

// Keys returns the keys in sorted order.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.m))
}

// Map returns a copy of the entries.
func (b *Bundle) Map() map[string]string {
	if b == nil {
		return nil
	}
	return maps.Clone(b.m)
}

// Equal reports whether b and o hold the same entries. Two nil bundles are
// equal; a nil bundle is not equal to an empty one.
func (b *Bundle) Equal(o *Bundle) bool {
	if b == nil || o == nil {
		return b == o
	}
	return maps.Equal(b.m, o.m)
}

// WriteToParcel implements parcel.Parcelable. Entries are written in key
// order so equal bundles encode identically.
func (b *Bundle) WriteToParcel(w *parcel.Writer) {
	keys := b.Keys()
	w.WriteInt32(int32(len(keys)))
	for _, k := range keys {
		w.WriteString(k)
		w.WriteString(b.m[k])
	}
}

// validate checks that every entry survives encoding.
func (b *Bundle) validate() error {
	for _, k := range b.Keys() {
		if err := checkUTF8("extras key", k); err != nil {
			return err
		}
		if err := checkUTF8(fmt.Sprintf("extras value %q", k), b.m[k]); err != nil {
			return err
		}
	}
	return nil
}

func readBundle(r *parcel.Reader) (*Bundle, error) {
	var out *Bundle
	_, err := r.ReadParcelable(bundleTag, func(r *parcel.Reader) error {
		// key and value each take at least a length word
		n, err := r.ReadCount(8)
		if err != nil {
			return err
		}
		m := make(map[string]string, n)
		for i := 0; i < n; i++ {
			k, err := r.ReadString()
			if err != nil {
				return err
			}
			v, err := r.ReadString()
			if err != nil {
				return err
			}
			m[k] = v
		}
		out = &Bundle{m: m}
		return nil
	})
	return out, err
}

func writeBundle(w *parcel.Writer, b *Bundle) {
	if b == nil {
		w.WriteNullParcelable()
		return
	}
	w.WriteParcelable(bundleTag, b)
}

// AuthHandle is an opaque reference to a deferred authentication action the
// platform triggers before revealing or using protected data. The token is
// meaningful only to the service that minted it.
type AuthHandle struct {
	token string
}

// NewAuthHandle mints a handle with a random token.
func NewAuthHandle() *AuthHandle {
	return &AuthHandle{token: uuid.NewString()}
}

// AuthHandleFromToken wraps an existing token.
func AuthHandleFromToken(token string) (*AuthHandle, error) {
	if token == "" {
		return nil, &InvalidArgumentError{Field: "authentication token", Reason: "cannot be empty"}
	}
	if err := checkUTF8("authentication token", token); err != nil {
		return nil, err
	}
	return &AuthHandle{token: token}, nil
}

// Token returns the opaque token.
func (h *AuthHandle) Token() string {
	if h == nil {
		return ""
	}
	return h.token
}

// Equal reports whether h and o carry the same token.
func (h *AuthHandle) Equal(o *AuthHandle) bool {
	if h == nil || o == nil {
		return h == o
	}
	return h.token == o.token
}

// LogValue keeps tokens out of logs.
func (h *AuthHandle) LogValue() slog.Value {
	return slog.BoolValue(h != nil)
}

// validate rejects handles that were not made by NewAuthHandle or
// AuthHandleFromToken, such as a zero AuthHandle. A nil handle is valid.
func (h *AuthHandle) validate() error {
	if h == nil {
		return nil
	}
	_, err := AuthHandleFromToken(h.token)
	return err
}

// WriteToParcel implements parcel.Parcelable.
func (h *AuthHandle) WriteToParcel(w *parcel.Writer) {
	w.WriteString(h.token)
}

func readAuthHandle(r *parcel.Reader) (*AuthHandle, error) {
	var out *AuthHandle
	_, err := r.ReadParcelable(authHandleTag, func(r *parcel.Reader) error {
		tok, err := r.ReadString()
		if err != nil {
			return err
		}
		out, err = AuthHandleFromToken(tok)
		return err
	})
	return out, err
}

func writeAuthHandle(w *parcel.Writer, h *AuthHandle) {
	if h == nil {
		w.WriteNullParcelable()
		return
	}
	w.WriteParcelable(authHandleTag, h)
}
