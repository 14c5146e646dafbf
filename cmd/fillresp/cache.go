package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ggoodman/autofill-go/autofill"
	"github.com/ggoodman/autofill-go/document"
	"github.com/ggoodman/autofill-go/fillcache"
)

type sessionFlags struct {
	client  string
	session string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.client, "client", "", "client application id")
	cmd.PersistentFlags().StringVar(&f.session, "session", "", "autofill session id")
	_ = cmd.MarkPersistentFlagRequired("client")
	_ = cmd.MarkPersistentFlagRequired("session")
}

func (f *sessionFlags) value() (fillcache.Session, error) {
	if f.client == "" || f.session == "" {
		return fillcache.Session{}, errors.New("--client and --session are required")
	}
	return fillcache.Session{ClientID: f.client, SessionID: f.session}, nil
}

// withCache opens the configured backend for the duration of fn.
func (a *app) withCache(ctx context.Context, sf *sessionFlags, fn func(c *fillcache.Cache, s fillcache.Session) error) error {
	s, err := sf.value()
	if err != nil {
		return err
	}
	store, err := a.openStore(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", a.cfg.Storage, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.log.WarnContext(ctx, "fillresp.cache.close.fail", slog.String("err", err.Error()))
		}
	}()
	return fn(fillcache.New(store, fillcache.WithLogger(a.log), fillcache.WithDefaultTTL(a.cfg.CacheTTL)), s)
}

func newCacheCmd(a *app) *cobra.Command {
	var sf sessionFlags
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Store and look up responses in the session response cache",
		Long: `cache stores responses per autofill session in the backend selected by
FILLRESP_STORAGE. The memory backend only lives as long as the process, so
it is mostly useful for trying the commands out.`,
	}
	sf.register(cmd)

	var format string
	printResponse := func(cmd *cobra.Command, resp *autofill.FillResponse) error {
		f, err := document.ParseFormat(format)
		if err != nil {
			return err
		}
		return document.Encode(cmd.OutOrStdout(), document.FromFillResponse(resp), f)
	}

	put := &cobra.Command{
		Use:   "put <document>",
		Short: "Store the response described by a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := loadDocument(cmd, args[0], "")
			if err != nil {
				return err
			}
			return a.withCache(cmd.Context(), &sf, func(c *fillcache.Cache, s fillcache.Session) error {
				if err := c.Put(cmd.Context(), s, resp); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), resp.ID())
				return err
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <response-id>",
		Short: "Print a stored response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCache(cmd.Context(), &sf, func(c *fillcache.Cache, s fillcache.Session) error {
				resp, err := c.Get(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				return printResponse(cmd, resp)
			})
		},
	}

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Print the most recently stored response of the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCache(cmd.Context(), &sf, func(c *fillcache.Cache, s fillcache.Session) error {
				resp, err := c.Latest(cmd.Context(), s)
				if err != nil {
					return err
				}
				return printResponse(cmd, resp)
			})
		},
	}

	forget := &cobra.Command{
		Use:   "forget",
		Short: "Drop every response stored for the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCache(cmd.Context(), &sf, func(c *fillcache.Cache, s fillcache.Session) error {
				return c.Forget(cmd.Context(), s)
			})
		},
	}

	for _, c := range []*cobra.Command{get, latest} {
		c.Flags().StringVar(&format, "format", "yaml", "output format (yaml or json)")
	}
	cmd.AddCommand(put, get, latest, forget)
	return cmd
}
