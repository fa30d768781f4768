package driver

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch runs the batch pipeline once, then re-runs it every time the source
// file is written. It returns only on a watcher failure; the caller stops it
// by killing the process.
func Watch(opts Options, out, diag io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a file-level watch.
	if err := w.Add(filepath.Dir(opts.SrcPath)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", opts.SrcPath, err)
	}

	if err := RunFile(opts, out, diag); err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(opts.SrcPath) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(diag, "bake: %s changed, re-baking\n", opts.SrcPath)
			if err := RunFile(opts, out, diag); err != nil {
				fmt.Fprintf(diag, "bake: %v\n", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(diag, "bake: watch error: %v\n", err)
		}
	}
}
