// Package fillcache keeps the fill responses handed out during an autofill
// session so that a later authentication or save interaction can find the
// response it refers to by id.
//
// Responses are stored in their parcel encoding in any storage.Storage.
// Anything read back is treated as untrusted and decoded through the
// autofill builders, so a corrupted or tampered entry fails with the same
// errors as constructing an invalid response in-process.
package fillcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ggoodman/autofill-go/autofill"
	"github.com/ggoodman/autofill-go/internal/logctx"
	"github.com/ggoodman/autofill-go/storage"
)

// ErrNotFound is returned when no response is stored under the requested id.
var ErrNotFound = errors.New("fillcache: response not found")

const (
	responseKeyPrefix = "response:"
	latestKey         = "latest"
)

// Session identifies one autofill session of a client application.
type Session struct {
	ClientID  string
	SessionID string
}

func (s Session) ns() storage.Option { return storage.WithSession(s.ClientID, s.SessionID) }

// Cache stores fill responses per session.
type Cache struct {
	store storage.Storage
	log   *slog.Logger
	ttl   time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger. If not provided, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithDefaultTTL sets the lifetime of stored responses when Put is not given
// one. Zero keeps them until the session is forgotten.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Cache) { c.ttl = d }
}

// New returns a Cache backed by store. The cache does not own store.
func New(store storage.Storage, opts ...Option) *Cache {
	c := &Cache{store: store}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if _, ok := c.log.Handler().(logctx.Handler); !ok {
		c.log = slog.New(logctx.Handler{Handler: c.log.Handler()})
	}
	return c
}

// PutOption configures a single Put.
type PutOption func(*putConfig)

type putConfig struct {
	ttl time.Duration
}

// WithTTL overrides the default lifetime for one response.
func WithTTL(d time.Duration) PutOption {
	return func(p *putConfig) { p.ttl = d }
}

func (c *Cache) sessionCtx(ctx context.Context, s Session) context.Context {
	return logctx.WithSessionData(ctx, &logctx.SessionData{ClientID: s.ClientID, SessionID: s.SessionID})
}

// Put stores resp under its id and records it as the session's latest response.
func (c *Cache) Put(ctx context.Context, s Session, resp *autofill.FillResponse, opts ...PutOption) error {
	data, err := autofill.Marshal(resp)
	if err != nil {
		return err
	}
	cfg := putConfig{ttl: c.ttl}
	for _, o := range opts {
		o(&cfg)
	}
	ctx = logctx.WithResponseData(c.sessionCtx(ctx, s), &logctx.ResponseData{ResponseID: resp.ID()})

	setOpts := []storage.Option{s.ns()}
	if cfg.ttl > 0 {
		setOpts = append(setOpts, storage.WithTTL(cfg.ttl))
	}
	if err := c.store.Set(ctx, responseKeyPrefix+resp.ID(), data, setOpts...); err != nil {
		c.log.ErrorContext(ctx, "fillcache.put.fail", slog.String("err", err.Error()))
		return fmt.Errorf("store response %s: %w", resp.ID(), err)
	}
	if err := c.store.Set(ctx, latestKey, []byte(resp.ID()), setOpts...); err != nil {
		c.log.ErrorContext(ctx, "fillcache.put.latest.fail", slog.String("err", err.Error()))
		return fmt.Errorf("store latest response id: %w", err)
	}
	c.log.DebugContext(ctx, "fillcache.put.ok", slog.Any("response", resp), slog.Int("bytes", len(data)))
	return nil
}

// Get loads the response stored under responseID.
func (c *Cache) Get(ctx context.Context, s Session, responseID string) (*autofill.FillResponse, error) {
	ctx = logctx.WithResponseData(c.sessionCtx(ctx, s), &logctx.ResponseData{ResponseID: responseID})
	item, err := c.store.Get(ctx, responseKeyPrefix+responseID, s.ns())
	if err != nil {
		c.log.ErrorContext(ctx, "fillcache.get.fail", slog.String("err", err.Error()))
		return nil, fmt.Errorf("load response %s: %w", responseID, err)
	}
	if item == nil {
		c.log.DebugContext(ctx, "fillcache.get.miss")
		return nil, ErrNotFound
	}
	resp, err := autofill.Unmarshal(item.Data)
	if err != nil {
		c.log.WarnContext(ctx, "fillcache.get.decode_fail", slog.String("err", err.Error()))
		return nil, fmt.Errorf("decode response %s: %w", responseID, err)
	}
	if resp.ID() != responseID {
		c.log.WarnContext(ctx, "fillcache.get.id_mismatch", slog.String("stored_id", resp.ID()))
		return nil, fmt.Errorf("decode response %s: %w", responseID, &autofill.InvalidArgumentError{
			Field:  "id",
			Reason: fmt.Sprintf("stored response has id %q", resp.ID()),
		})
	}
	c.log.DebugContext(ctx, "fillcache.get.ok", slog.Any("response", resp))
	return resp, nil
}

// Latest loads the most recently stored response of the session.
func (c *Cache) Latest(ctx context.Context, s Session) (*autofill.FillResponse, error) {
	ctx = c.sessionCtx(ctx, s)
	item, err := c.store.Get(ctx, latestKey, s.ns())
	if err != nil {
		c.log.ErrorContext(ctx, "fillcache.latest.fail", slog.String("err", err.Error()))
		return nil, fmt.Errorf("load latest response id: %w", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return c.Get(ctx, s, string(item.Data))
}

// Forget drops every response stored for the session.
func (c *Cache) Forget(ctx context.Context, s Session) error {
	ctx = c.sessionCtx(ctx, s)
	if err := c.store.Delete(ctx, s.ns()); err != nil {
		c.log.ErrorContext(ctx, "fillcache.forget.fail", slog.String("err", err.Error()))
		return fmt.Errorf("forget session: %w", err)
	}
	c.log.DebugContext(ctx, "fillcache.forget.ok")
	return nil
}
