package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ggoodman/autofill-go/document"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document>...",
		Short: "Check that documents describe valid fill responses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := a.validateFile(cmd, path); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}
}

func (a *app) validateFile(cmd *cobra.Command, path string) error {
	ctx := fileCtx(cmd.Context(), path)
	resp, err := loadDocument(cmd, path, "")
	if err != nil {
		a.log.WarnContext(ctx, "fillresp.validate.fail", slog.String("err", err.Error()))
		return err
	}
	a.log.DebugContext(ctx, "fillresp.validate.ok", slog.Any("response", resp))
	return nil
}

func newWatchCmd(a *app) *cobra.Command {
	var settle time.Duration
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-validate documents under a directory whenever they change",
		Long: `watch validates every document under dir, then keeps validating each
.yaml, .yml or .json file that is created or written until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newDirWatcher(args[0])
			if err != nil {
				return err
			}
			report := func(path string, err error) {
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
			}
			return a.runWatch(cmd, w, args[0], settle, report)
		},
	}
	cmd.Flags().DurationVar(&settle, "settle", 100*time.Millisecond, "wait this long after the last event on a file before validating it")
	return cmd
}

// newDirWatcher watches dir and every directory below it.
func newDirWatcher(dir string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return w, nil
}

func isDocument(path string) bool {
	_, err := document.FormatForPath(path)
	return err == nil
}

// runWatch validates existing documents, then serves w until the command
// context is done. It owns w and closes it on return.
func (a *app) runWatch(cmd *cobra.Command, w *fsnotify.Watcher, dir string, settle time.Duration, report func(path string, err error)) error {
	defer func() { _ = w.Close() }()
	ctx := cmd.Context()
	if settle <= 0 {
		return fmt.Errorf("settle must be positive, got %s", settle)
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isDocument(p) {
			return nil
		}
		report(p, a.validateFile(cmd, p))
		return nil
	})
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "fillresp.watch.start", slog.String("dir", dir))

	// Editors often write a file in several steps; validate once the file
	// has been quiet for settle.
	pending := make(map[string]time.Time)
	tick := time.NewTicker(settle)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.InfoContext(ctx, "fillresp.watch.stop")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						a.log.WarnContext(fileCtx(ctx, ev.Name), "fillresp.watch.add.fail", slog.String("err", err.Error()))
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isDocument(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()
		case now := <-tick.C:
			for path, at := range pending {
				if now.Sub(at) < settle {
					continue
				}
				delete(pending, path)
				report(path, a.validateFile(cmd, path))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.WarnContext(ctx, "fillresp.watch.error", slog.String("err", err.Error()))
		}
	}
}
