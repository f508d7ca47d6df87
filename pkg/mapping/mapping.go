// Package mapping resolves sense translations through a curated mapping
// file instead of the embedding matcher. A mapping record names a
// headword occurrence by its (lemma, etymology, pos) triple and assigns
// each sense order a single-letter translation-group code.
package mapping

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lexibase/senselink/pkg/lexicon"
)

// Scanner sizing matches the dump reader; curated files are small but a
// pathological line should not abort the run.
const (
	initialLineBytes = 1 << 20
	maxLineBytes     = 16 << 20
)

// Key identifies one headword occurrence. Fields are compared verbatim
// against the extracted records, with no normalization.
type Key struct {
	Lemma     string
	Etymology string
	POS       string
}

// Table maps a sense order, rendered as a decimal string, to a
// single-letter group code.
type Table map[string]string

// Index holds every usable mapping record by identity triple.
type Index map[Key]Table

// Load reads a mappings file and builds the lookup index.
func Load(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mappings: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse builds the index from JSONL mapping records. A key that appears
// on more than one recorded line degrades to an empty table, permanently:
// an ambiguous mapping is worse than none. Malformed lines and records
// whose mapping is not an object contribute nothing.
func Parse(r io.Reader) (Index, error) {
	idx := make(Index)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialLineBytes), maxLineBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		key, rawMapping, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, seen := idx[key]; seen {
			idx[key] = Table{}
			continue
		}
		var tbl Table
		if len(rawMapping) == 0 || json.Unmarshal(rawMapping, &tbl) != nil || tbl == nil {
			continue
		}
		idx[key] = tbl
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan mappings: %w", err)
	}
	return idx, nil
}

// parseLine pulls the identity triple and the raw mapping value out of
// one record. Lines that do not decode to a non-empty object are dropped.
func parseLine(line []byte) (Key, json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil || len(fields) == 0 {
		return Key{}, nil, false
	}
	key := Key{
		Lemma:     stringField(fields, "lemma"),
		Etymology: stringField(fields, "etymology"),
		POS:       stringField(fields, "pos"),
	}
	return key, fields["mapping"], true
}

func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Lookup returns the table recorded for key. A missing key yields a nil
// Table, which reads as empty everywhere it is used.
func (idx Index) Lookup(key Key) Table {
	return idx[key]
}

// Resolve attaches translations to each of e's senses according to tbl
// and drops the entry's translation groups. The table names senses by
// their stored order; the letter selects a group by its position in the
// entry's group list. A missing, malformed, or out-of-range letter means
// that sense simply gets no translations, never an error.
func Resolve(e *lexicon.Entry, tbl Table) {
	for i := range e.Senses {
		s := &e.Senses[i]
		if s.Translations == nil {
			s.Translations = []lexicon.Translation{}
		}
		pos, ok := letterIndex(tbl[strconv.Itoa(s.Order)])
		if !ok || pos >= len(e.Groups) {
			continue
		}
		for _, tr := range e.Groups[pos].Translations {
			if tr.Word == "" || tr.Language == "" {
				continue
			}
			s.Translations = append(s.Translations, tr)
		}
	}
	e.Groups = nil
}

// letterIndex converts a single-letter group code to its zero-based
// position, accepting either case.
func letterIndex(letter string) (int, bool) {
	if len(letter) != 1 {
		return 0, false
	}
	switch c := letter[0]; {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	}
	return 0, false
}
