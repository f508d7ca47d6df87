package export

import (
	"bufio"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack writes a stream of MessagePack documents, one per record, for
// consumers that want a compact binary dataset.
type Msgpack struct {
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *msgpack.Encoder
}

// NewMsgpack creates or truncates path. bufferSize is in bytes; zero or
// negative picks the default.
func NewMsgpack(path string, bufferSize int) (*Msgpack, error) {
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
	return &Msgpack{path: path, file: f, buf: buf, enc: msgpack.NewEncoder(buf)}, nil
}

func (m *Msgpack) Write(record any) error {
	if err := m.enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

func (m *Msgpack) Close() error {
	if err := m.buf.Flush(); err != nil {
		m.file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return m.file.Close()
}

func (m *Msgpack) Path() string { return m.path }
