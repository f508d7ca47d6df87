// Package wiktextract turns raw wiktextract dump entries into qualifying
// senses and translation groups.
package wiktextract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lexibase/senselink/pkg/lexicon"
)

// yearPattern matches the first plausible 4-digit year in a quotation
// reference, anywhere between 1000 and 2099.
var yearPattern = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)

// GlossEnd selects which end of a sense's gloss list becomes its
// definition.
type GlossEnd int

const (
	// LastGloss takes the final gloss, the most specific one in nested
	// gloss chains.
	LastGloss GlossEnd = iota
	// FirstGloss takes the opening gloss instead.
	FirstGloss
)

// Options bound what the extractor keeps. Year bounds are inclusive.
type Options struct {
	MinimumYear int
	MaximumYear int
	GlossEnd    GlossEnd
}

// DefaultOptions keeps quotations from the last 25 years.
func DefaultOptions() Options {
	year := time.Now().Year()
	return Options{MinimumYear: year - 25, MaximumYear: year}
}

// Stats counts extraction outcomes over one run.
type Stats struct {
	Entries   int // entries kept
	Malformed int // lines that were not valid JSON objects
	Gated     int // non-English entries or entries without a headword
	NoSenses  int // entries where no sense survived filtering
	Senses    int // senses kept across all entries
}

// Extractor filters raw dump entries down to senses with qualifying
// sentences and translation groups. It is not safe for concurrent use; the
// pipeline feeds it from a single loop.
type Extractor struct {
	opts  Options
	stats Stats
}

// NewExtractor returns an extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Stats returns the counters accumulated so far.
func (e *Extractor) Stats() Stats {
	return e.stats
}

// rawEntry mirrors the dump fields the extractor reads. Everything else in
// a dump line is ignored.
type rawEntry struct {
	Word         string           `json:"word"`
	Lang         string           `json:"lang"`
	LangCode     string           `json:"lang_code"`
	Etymology    string           `json:"etymology_text"`
	POS          string           `json:"pos"`
	Senses       []rawSense       `json:"senses"`
	Translations []rawTranslation `json:"translations"`
}

type rawSense struct {
	Glosses  []string     `json:"glosses"`
	Examples []rawExample `json:"examples"`
}

type rawExample struct {
	Text string `json:"text"`
	Ref  string `json:"ref"`
	Type string `json:"type"`
}

type rawTranslation struct {
	Sense string `json:"sense"`
	Word  string `json:"word"`
	Lang  string `json:"lang"`
}

// Extract parses one dump line and returns the entry's qualifying senses
// and translation groups. ok is false when the line is skipped: malformed
// JSON, a non-English entry, a missing headword, or no sense surviving the
// filters.
func (e *Extractor) Extract(line []byte) (lexicon.Entry, bool) {
	var raw rawEntry
	if err := json.Unmarshal(line, &raw); err != nil {
		e.stats.Malformed++
		return lexicon.Entry{}, false
	}

	language := raw.LangCode
	if language == "" {
		language = raw.Lang
	}
	language = strings.ToLower(language)
	word := strings.TrimSpace(raw.Word)
	if (language != "en" && language != "english") || word == "" {
		e.stats.Gated++
		return lexicon.Entry{}, false
	}

	senses := e.extractSenses(raw.Senses)
	if len(senses) == 0 {
		e.stats.NoSenses++
		return lexicon.Entry{}, false
	}

	e.stats.Entries++
	e.stats.Senses += len(senses)
	return lexicon.Entry{
		Lemma:     word,
		Etymology: strings.TrimSpace(raw.Etymology),
		POS:       strings.TrimSpace(raw.POS),
		Senses:    senses,
		Groups:    extractGroups(raw.Translations),
	}, true
}

// extractSenses keeps senses that have a usable definition and at least one
// qualifying sentence. Order is assigned 1-based over the kept senses.
func (e *Extractor) extractSenses(raw []rawSense) []lexicon.Sense {
	var senses []lexicon.Sense
	for _, rs := range raw {
		if len(rs.Glosses) == 0 {
			continue
		}
		gloss := rs.Glosses[len(rs.Glosses)-1]
		if e.opts.GlossEnd == FirstGloss {
			gloss = rs.Glosses[0]
		}
		definition := strings.TrimSpace(gloss)
		if definition == "" {
			continue
		}
		sentences := e.extractSentences(rs.Examples)
		if len(sentences) == 0 {
			continue
		}
		senses = append(senses, lexicon.NewSense(len(senses)+1, definition, sentences))
	}
	return senses
}

// extractSentences applies the sentence filter: a candidate with a
// reference is only ever a quotation and must carry an in-window year;
// anything else qualifies only when flagged as an example.
func (e *Extractor) extractSentences(examples []rawExample) []lexicon.Sentence {
	var sentences []lexicon.Sentence
	for _, ex := range examples {
		text := strings.TrimSpace(ex.Text)
		if text == "" {
			continue
		}
		if ex.Ref != "" {
			year, ok := referenceYear(ex.Ref)
			if !ok || year < e.opts.MinimumYear || year > e.opts.MaximumYear {
				continue
			}
			sentences = append(sentences, lexicon.NewQuotation(text, strings.TrimSpace(ex.Ref)))
			continue
		}
		if ex.Type == "example" {
			sentences = append(sentences, lexicon.NewExample(text))
		}
	}
	return sentences
}

// referenceYear parses the first 4-digit year token out of a quotation
// reference.
func referenceYear(ref string) (int, bool) {
	match := yearPattern.FindString(ref)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// extractGroups partitions raw translations by their trimmed sense label,
// keeping label first-appearance order. Within a group each language keeps
// its first translation only; entries missing sense, word, or language are
// dropped.
func extractGroups(raw []rawTranslation) lexicon.Groups {
	var groups lexicon.Groups
	index := make(map[string]int)
	seenLang := make(map[string]map[string]bool)

	for _, rt := range raw {
		label := strings.TrimSpace(rt.Sense)
		word := strings.ToLower(strings.TrimSpace(rt.Word))
		lang := strings.ToLower(strings.TrimSpace(rt.Lang))
		if label == "" || word == "" || lang == "" {
			continue
		}
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, lexicon.Group{Label: label})
			seenLang[label] = make(map[string]bool)
		}
		if seenLang[label][lang] {
			continue
		}
		seenLang[label][lang] = true
		groups[i].Translations = append(groups[i].Translations, lexicon.Translation{
			Word:     word,
			Language: lang,
		})
	}
	return groups
}
