package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// defaultBufferBytes sizes the write buffer in front of file sinks.
const defaultBufferBytes = 1 << 20

// JSONL writes one JSON document per line, the interchange format the
// associate mode reads back.
type JSONL struct {
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONL creates or truncates path. bufferSize is in bytes; zero or
// negative picks the default.
func NewJSONL(path string, bufferSize int) (*JSONL, error) {
	if bufferSize <= 0 {
		bufferSize = defaultBufferBytes
	}
	if err := ensureParent(path); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	buf := bufio.NewWriterSize(f, bufferSize)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONL{path: path, file: f, buf: buf, enc: enc}, nil
}

func (j *JSONL) Write(record any) error {
	if err := j.enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

func (j *JSONL) Close() error {
	if err := j.buf.Flush(); err != nil {
		j.file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return j.file.Close()
}

func (j *JSONL) Path() string { return j.path }
