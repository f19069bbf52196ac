// Package batch runs the per-file extract→write→commit loop over a source
// directory tree.
package batch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/infinit3labs/udacity-dend-proj1/internal/metrics"
	"github.com/infinit3labs/udacity-dend-proj1/internal/storage"
)

// sourceExt is the extension of source data files.
const sourceExt = ".json"

// Logger is the minimal logging interface used by the driver.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// ProcessFunc runs one source file through an extractor+writer pipeline using
// the file's transaction. The driver owns Begin/Commit/Rollback.
type ProcessFunc func(ctx context.Context, tx storage.Tx, path string) error

// Driver discovers source files under a root, processes each through the
// supplied pipeline, and commits once per file.
//
// Failure model: the first error halts the batch. The in-flight file's
// transaction rolls back; rows committed for earlier files stay durable.
// There is no skip-and-continue and no retry.
type Driver struct {
	Repo   storage.Repository
	Logger Logger

	// Out receives the user-facing progress lines. Defaults to os.Stdout.
	Out io.Writer
}

// Run processes every source file under root with process. name labels the
// batch ("songs", "logs") in logs and metrics.
func (d *Driver) Run(ctx context.Context, name, root string, process ProcessFunc) error {
	if d.Repo == nil {
		return fmt.Errorf("batch %s: Repo is required", name)
	}

	logf := d.logger()
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	// The grouped-digits printer keeps file counts readable on large trees.
	p := message.NewPrinter(language.English)

	files, err := discoverFiles(root)
	if err != nil {
		return fmt.Errorf("batch %s: discover %s: %w", name, root, err)
	}
	p.Fprintf(out, "%d files found in %s\n", len(files), root)

	for i, path := range files {
		start := time.Now()

		tx, err := d.Repo.Begin(ctx)
		if err != nil {
			return fmt.Errorf("batch %s: begin %s: %w", name, path, err)
		}

		if err := process(ctx, tx, path); err != nil {
			_ = tx.Rollback(ctx)
			metrics.IncCounter("etl_files_total", 1, metrics.Labels{"batch": name, "status": "error"})
			return fmt.Errorf("batch %s: %w", name, err)
		}

		if err := tx.Commit(ctx); err != nil {
			metrics.IncCounter("etl_files_total", 1, metrics.Labels{"batch": name, "status": "error"})
			return fmt.Errorf("batch %s: commit %s: %w", name, path, err)
		}

		metrics.IncCounter("etl_files_total", 1, metrics.Labels{"batch": name, "status": "ok"})
		metrics.ObserveHistogram("etl_file_duration_seconds", time.Since(start).Seconds(), metrics.Labels{"batch": name})

		p.Fprintf(out, "%d/%d files processed.\n", i+1, len(files))
	}

	logf("batch=%s files=%d ok", name, len(files))
	return nil
}

func (d *Driver) logger() func(format string, v ...any) {
	if d.Logger == nil {
		l := log.New(io.Discard, "", 0)
		return l.Printf
	}
	return d.Logger.Printf
}

// discoverFiles walks root and returns every regular file with the source
// extension. Order follows the directory walk; nothing downstream depends on
// it beyond per-file atomicity.
func discoverFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), sourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
