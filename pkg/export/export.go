// Package export materializes pipeline records into files or a sqlite
// database, chosen by the output path's extension.
package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrUnsupportedRecord is returned by sinks handed a record type they
// cannot store.
var ErrUnsupportedRecord = errors.New("export: unsupported record type")

// Exporter consumes pipeline records one at a time. Close flushes any
// buffered state; the output is not complete until Close returns.
type Exporter interface {
	Write(record any) error
	Close() error

	// Path reports where the output actually landed, which can differ
	// from the requested path when the extension was rewritten.
	Path() string
}

// New picks an exporter by extension: .jsonl, .msgpack, and .db or
// .sqlite are understood. Anything else falls back to JSON lines with
// the extension rewritten, so a typo degrades the format rather than
// killing a finished run.
func New(path string, bufferSize int) (Exporter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jsonl":
		return NewJSONL(path, bufferSize)
	case ".msgpack":
		return NewMsgpack(path, bufferSize)
	case ".db", ".sqlite":
		return NewSQLite(path)
	default:
		rewritten := strings.TrimSuffix(path, ext) + ".jsonl"
		log.Warnf("no exporter for %q, writing JSON lines to %s", ext, rewritten)
		return NewJSONL(rewritten, bufferSize)
	}
}

// ensureParent creates the output's parent directory when needed.
func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
