// Package storage defines the key/value contract used to keep encoded fill
// responses around between the fill request that produced them and the
// authentication or save interaction that later refers back to them.
package storage

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Storage keeps opaque values under a key inside a global, client or
// session namespace. Implementations are safe for concurrent use.
type Storage interface {
	// Get returns nil when the key is missing or expired. An error means the
	// backend itself failed.
	Get(ctx context.Context, key string, opts ...Option) (*Item, error)

	Set(ctx context.Context, key string, data []byte, opts ...Option) error

	// Delete removes one key when WithKey is given and the whole namespace
	// otherwise. Removing a client namespace also removes its sessions.
	Delete(ctx context.Context, opts ...Option) error

	Close() error
}

// Item is a stored value.
type Item struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time // nil when the value never expires
}

// IsExpired reports whether the deadline has passed.
func (it *Item) IsExpired() bool {
	return it.ExpiresAt != nil && time.Now().After(*it.ExpiresAt)
}

// Option configures one storage call.
type Option func(*Options)

// Options is the folded form of a call's Option list.
type Options struct {
	Namespace Namespace // nil is the global namespace
	Key       *string   // Delete only
	TTL       *time.Duration
}

// Apply folds opts into a fresh Options value.
func Apply(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

// Namespace is a ClientNamespace or a SessionNamespace.
type Namespace interface {
	namespace()
}

// ClientNamespace holds data for one client application, across its
// autofill sessions.
type ClientNamespace struct {
	ClientID string
}

func (ClientNamespace) namespace() {}

// SessionNamespace holds data for a single autofill session of a client.
type SessionNamespace struct {
	ClientID  string
	SessionID string
}

func (SessionNamespace) namespace() {}

// WithClient selects the namespace of a client application.
func WithClient(clientID string) Option {
	return func(opts *Options) {
		opts.Namespace = ClientNamespace{ClientID: clientID}
	}
}

// WithSession selects the namespace of one session of a client.
func WithSession(clientID, sessionID string) Option {
	return func(opts *Options) {
		opts.Namespace = SessionNamespace{ClientID: clientID, SessionID: sessionID}
	}
}

// WithKey narrows Delete to a single key.
func WithKey(key string) Option {
	return func(opts *Options) {
		opts.Key = &key
	}
}

// WithTTL expires the value after ttl.
func WithTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.TTL = &ttl
	}
}

// ErrInvalidOptions is returned for options no backend can honour.
var ErrInvalidOptions = errors.New("storage: invalid option combination")

// Validate rejects option combinations no backend can honour: a non-positive
// TTL, or a namespace with empty identifiers.
func (o *Options) Validate() error {
	if o.TTL != nil && *o.TTL <= 0 {
		return ErrInvalidOptions
	}
	switch ns := o.Namespace.(type) {
	case ClientNamespace:
		if ns.ClientID == "" {
			return ErrInvalidOptions
		}
	case SessionNamespace:
		if ns.ClientID == "" || ns.SessionID == "" {
			return ErrInvalidOptions
		}
	}
	return nil
}

// NamespacePrefix returns the key prefix every backend uses for ns. Ids are
// length-prefixed, so no id can reach into another namespace, and a client
// prefix is a prefix of exactly its own session prefixes.
func NamespacePrefix(ns Namespace) string {
	switch ns := ns.(type) {
	case ClientNamespace:
		return clientPrefix(ns.ClientID)
	case SessionNamespace:
		return clientPrefix(ns.ClientID) + "session:" + lengthPrefixed(ns.SessionID)
	default:
		return "global:"
	}
}

// Key returns the backend key of key inside ns.
func Key(ns Namespace, key string) string {
	return NamespacePrefix(ns) + "key:" + key
}

func clientPrefix(id string) string { return "client:" + lengthPrefixed(id) }

func lengthPrefixed(id string) string {
	return strconv.Itoa(len(id)) + ":" + id + ":"
}
