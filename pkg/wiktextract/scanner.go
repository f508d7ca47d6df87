package wiktextract

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// Dump lines for common headwords routinely exceed bufio's default
	// token size, so the scanner buffer starts at 1 MiB and may grow to
	// maxLineBytes before a line is considered unreadable.
	initialLineBytes = 1 << 20
	maxLineBytes     = 16 << 20
)

// Source yields raw dump lines one at a time. It transparently
// decompresses gzip inputs when opened from a .gz path.
type Source struct {
	file    *os.File
	gzip    *gzip.Reader
	scanner *bufio.Scanner
}

// Open opens a JSONL dump file for scanning, gunzipping it when the path
// ends in .gz.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return newSource(f, nil, f), nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip dump: %w", err)
	}
	return newSource(f, gz, gz), nil
}

// NewSource wraps an already-open reader, e.g. for tests or stdin.
func NewSource(r io.Reader) *Source {
	return newSource(nil, nil, r)
}

func newSource(f *os.File, gz *gzip.Reader, r io.Reader) *Source {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialLineBytes), maxLineBytes)
	return &Source{file: f, gzip: gz, scanner: sc}
}

// Scan advances to the next line, returning false at end of input or on a
// read error (see Err).
func (s *Source) Scan() bool {
	return s.scanner.Scan()
}

// Bytes returns the current line. The slice is only valid until the next
// Scan call.
func (s *Source) Bytes() []byte {
	return s.scanner.Bytes()
}

// Err returns the first error encountered while reading, nil at a clean
// end of input.
func (s *Source) Err() error {
	return s.scanner.Err()
}

// Close releases the underlying file handles.
func (s *Source) Close() error {
	var err error
	if s.gzip != nil {
		err = s.gzip.Close()
	}
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
