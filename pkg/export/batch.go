package export

import (
	"database/sql"
	"fmt"
)

// writeFunc performs one record's inserts inside a transaction.
type writeFunc func(tx *sql.Tx) error

// txBatch buffers writes and commits them in one transaction per batch.
// The pipeline feeding it is synchronous, so there is no background
// committer or interval flush; the only triggers are buffer pressure
// and Close.
type txBatch struct {
	db  *sql.DB
	buf []writeFunc
	cap int
}

func newTxBatch(db *sql.DB, size int) *txBatch {
	if size <= 0 {
		size = defaultBatchSize
	}
	return &txBatch{db: db, buf: make([]writeFunc, 0, size), cap: size}
}

// submit enqueues one write and flushes when the buffer fills.
func (b *txBatch) submit(w writeFunc) error {
	b.buf = append(b.buf, w)
	if len(b.buf) >= b.cap {
		return b.flush()
	}
	return nil
}

// flush runs every buffered write inside a single transaction. The
// buffer is cleared either way: a failed batch is not worth retrying
// against the same database state.
func (b *txBatch) flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	batch := b.buf
	b.buf = b.buf[:0]

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch of %d records: %w", len(batch), err)
	}
	return nil
}
