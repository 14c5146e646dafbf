package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ggoodman/autofill-go/autofill"
	"github.com/ggoodman/autofill-go/document"
	"github.com/ggoodman/autofill-go/internal/config"
	"github.com/ggoodman/autofill-go/internal/logctx"
	"github.com/ggoodman/autofill-go/storage"
	"github.com/ggoodman/autofill-go/storage/memory"
	"github.com/ggoodman/autofill-go/storage/redis"
)

type app struct {
	cfg config.Config
	log *slog.Logger

	// openStore returns the cache backend selected by cfg. Tests replace it.
	openStore func(ctx context.Context, cfg config.Config) (storage.Storage, error)
}

func newApp() *app {
	return &app{openStore: openStore}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		return redis.NewFromEnv(ctx)
	default:
		return memory.New(cfg.CacheSize)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fillresp",
		Short: "Work with autofill fill responses",
		Long: `fillresp converts fill responses between their YAML/JSON document form and
the binary parcel encoding, validates documents, and stores responses in the
session response cache.

Settings are read from FILLRESP_* environment variables. The redis cache
backend reads AUTOFILL_REDIS_* variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = cfg.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newValidateCmd(a),
		newSchemaCmd(),
		newWatchCmd(a),
		newCacheCmd(a),
	)
	return root
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// loadDocument parses the document at path and builds the response it
// describes. format overrides the format inferred from the extension.
func loadDocument(cmd *cobra.Command, path, format string) (*autofill.FillResponse, error) {
	f, err := documentFormat(path, format)
	if err != nil {
		return nil, err
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	resp, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return resp, nil
}

func documentFormat(path, override string) (document.Format, error) {
	if override != "" {
		return document.ParseFormat(override)
	}
	if path == "-" {
		return document.FormatYAML, nil
	}
	return document.FormatForPath(path)
}

func fileCtx(ctx context.Context, path string) context.Context {
	return logctx.WithFileData(ctx, &logctx.FileData{Path: path})
}
