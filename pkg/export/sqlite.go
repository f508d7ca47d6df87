package export

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexibase/senselink/pkg/lexicon"
)

// defaultBatchSize is how many records share one transaction.
const defaultBatchSize = 256

const schemaSQL = `
CREATE TABLE IF NOT EXISTS lemmas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lemma TEXT NOT NULL,
	etymology TEXT NOT NULL DEFAULT '',
	pos TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_lemmas_lemma ON lemmas(lemma);

CREATE TABLE IF NOT EXISTS senses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lemma_id INTEGER NOT NULL REFERENCES lemmas(id) ON DELETE CASCADE,
	sense_order INTEGER NOT NULL,
	definition TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sentences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sense_id INTEGER NOT NULL REFERENCES senses(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	text TEXT NOT NULL,
	reference TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS translations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sense_id INTEGER NOT NULL REFERENCES senses(id) ON DELETE CASCADE,
	word TEXT NOT NULL,
	language TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS translation_groups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lemma_id INTEGER NOT NULL REFERENCES lemmas(id) ON DELETE CASCADE,
	group_order INTEGER NOT NULL,
	label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS group_translations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id INTEGER NOT NULL REFERENCES translation_groups(id) ON DELETE CASCADE,
	word TEXT NOT NULL,
	language TEXT NOT NULL
);
`

// execer lets the insert helpers run against either *sql.DB or *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SQLite stores lemma and entry records relationally, batching records
// into transactions for insert throughput.
type SQLite struct {
	path  string
	db    *sql.DB
	batch *txBatch
}

// NewSQLite opens or creates the database at path and ensures the schema
// exists.
func NewSQLite(path string) (*SQLite, error) {
	if err := ensureParent(path); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{path: path, db: db, batch: newTxBatch(db, defaultBatchSize)}, nil
}

func initSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write accepts lexicon.Lemma and lexicon.Entry records, by value or
// pointer. Entries keep their unresolved translation groups in the
// group tables so the export is lossless.
func (s *SQLite) Write(record any) error {
	switch r := record.(type) {
	case *lexicon.Lemma:
		return s.batch.submit(func(tx *sql.Tx) error {
			_, err := insertLemma(tx, *r)
			return err
		})
	case lexicon.Lemma:
		return s.batch.submit(func(tx *sql.Tx) error {
			_, err := insertLemma(tx, r)
			return err
		})
	case *lexicon.Entry:
		return s.batch.submit(func(tx *sql.Tx) error {
			return insertEntry(tx, *r)
		})
	case lexicon.Entry:
		return s.batch.submit(func(tx *sql.Tx) error {
			return insertEntry(tx, r)
		})
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedRecord, record)
	}
}

// Close flushes the trailing partial batch before closing the database.
func (s *SQLite) Close() error {
	flushErr := s.batch.flush()
	closeErr := s.db.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func (s *SQLite) Path() string { return s.path }

func insertLemma(x execer, l lexicon.Lemma) (int64, error) {
	res, err := x.Exec(
		`INSERT INTO lemmas (lemma, etymology, pos) VALUES (?, ?, ?)`,
		l.Lemma, l.Etymology, l.POS,
	)
	if err != nil {
		return 0, fmt.Errorf("insert lemma %q: %w", l.Lemma, err)
	}
	lemmaID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, s := range l.Senses {
		if err := insertSense(x, lemmaID, s); err != nil {
			return 0, err
		}
	}
	return lemmaID, nil
}

func insertSense(x execer, lemmaID int64, s lexicon.Sense) error {
	res, err := x.Exec(
		`INSERT INTO senses (lemma_id, sense_order, definition) VALUES (?, ?, ?)`,
		lemmaID, s.Order, s.Definition,
	)
	if err != nil {
		return fmt.Errorf("insert sense: %w", err)
	}
	senseID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, sent := range s.Sentences {
		if _, err := x.Exec(
			`INSERT INTO sentences (sense_id, kind, text, reference) VALUES (?, ?, ?, ?)`,
			senseID, string(sent.Kind), sent.Text, sent.Reference,
		); err != nil {
			return fmt.Errorf("insert sentence: %w", err)
		}
	}
	for _, tr := range s.Translations {
		if _, err := x.Exec(
			`INSERT INTO translations (sense_id, word, language) VALUES (?, ?, ?)`,
			senseID, tr.Word, tr.Language,
		); err != nil {
			return fmt.Errorf("insert translation: %w", err)
		}
	}
	return nil
}

func insertEntry(x execer, e lexicon.Entry) error {
	lemmaID, err := insertLemma(x, lexicon.Lemma{
		Lemma:     e.Lemma,
		Etymology: e.Etymology,
		POS:       e.POS,
		Senses:    e.Senses,
	})
	if err != nil {
		return err
	}
	for i, g := range e.Groups {
		res, err := x.Exec(
			`INSERT INTO translation_groups (lemma_id, group_order, label) VALUES (?, ?, ?)`,
			lemmaID, i+1, g.Label,
		)
		if err != nil {
			return fmt.Errorf("insert translation group %q: %w", g.Label, err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, tr := range g.Translations {
			if _, err := x.Exec(
				`INSERT INTO group_translations (group_id, word, language) VALUES (?, ?, ?)`,
				groupID, tr.Word, tr.Language,
			); err != nil {
				return fmt.Errorf("insert group translation: %w", err)
			}
		}
	}
	return nil
}
