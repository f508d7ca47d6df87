// Package lexicon defines the record types shared by the extraction,
// matching, and export stages.
package lexicon

import "strings"

// SentenceKind tags a sentence as a plain usage example or a dated quotation.
type SentenceKind string

const (
	KindExample   SentenceKind = "example"
	KindQuotation SentenceKind = "quotation"
)

// Sentence is one supporting sentence for a sense. Quotations carry the
// bibliographic reference their year was parsed from. Sentences are never
// modified after creation.
type Sentence struct {
	Kind      SentenceKind `json:"kind" msgpack:"kind"`
	Text      string       `json:"sentence" msgpack:"sentence"`
	Reference string       `json:"reference,omitempty" msgpack:"reference,omitempty"`
}

// NewExample returns a plain example sentence.
func NewExample(text string) Sentence {
	return Sentence{Kind: KindExample, Text: text}
}

// NewQuotation returns a quotation sentence with its reference.
func NewQuotation(text, reference string) Sentence {
	return Sentence{Kind: KindQuotation, Text: text, Reference: reference}
}

// Translation is a (word, language) pair, both trimmed and lower-cased at
// extraction time.
type Translation struct {
	Word     string `json:"translation" msgpack:"translation"`
	Language string `json:"language" msgpack:"language"`
}

// Sense is one meaning of a headword occurrence. Order is 1-based over the
// senses that survived filtering and is the lookup key for mapping files.
// Translations starts empty and is appended to only by the matcher or the
// mapping resolver.
type Sense struct {
	Order        int           `json:"sense_order" msgpack:"sense_order"`
	Definition   string        `json:"definition" msgpack:"definition"`
	Sentences    []Sentence    `json:"sentences" msgpack:"sentences"`
	Translations []Translation `json:"translations" msgpack:"translations"`
}

// NewSense returns a sense with an empty, non-nil translation list so that
// unmatched senses still serialize with "translations": [].
func NewSense(order int, definition string, sentences []Sentence) Sense {
	return Sense{
		Order:        order,
		Definition:   definition,
		Sentences:    sentences,
		Translations: []Translation{},
	}
}

// Group is one translation group: the translations sharing a free-text
// sense label, deduplicated by language.
type Group struct {
	Label        string        `json:"sense" msgpack:"sense"`
	Translations []Translation `json:"translations" msgpack:"translations"`
}

// Groups holds a headword's translation groups in label first-appearance
// order. The order is data: the mapping resolver indexes into it.
type Groups []Group

// Labels returns the group labels in file order.
func (g Groups) Labels() []string {
	labels := make([]string, len(g))
	for i, grp := range g {
		labels[i] = grp.Label
	}
	return labels
}

// Entry is one headword occurrence as extracted: its senses plus the raw
// translation groups, before any matching. It is the interchange record of
// the extract and associate modes.
type Entry struct {
	Lemma     string  `json:"lemma" msgpack:"lemma"`
	Etymology string  `json:"etymology,omitempty" msgpack:"etymology,omitempty"`
	POS       string  `json:"pos,omitempty" msgpack:"pos,omitempty"`
	Senses    []Sense `json:"senses" msgpack:"senses"`
	Groups    Groups  `json:"translation_groups,omitempty" msgpack:"translation_groups,omitempty"`
}

// IsEmpty reports whether the entry carries no data at all, the decoded
// equivalent of a blank line.
func (e Entry) IsEmpty() bool {
	return e.Lemma == "" && e.Etymology == "" && e.POS == "" &&
		len(e.Senses) == 0 && len(e.Groups) == 0
}

// Lemma is one emitted headword record: the normalized headword plus every
// sense collected from its raw occurrences, in encounter order.
type Lemma struct {
	Lemma     string  `json:"lemma" msgpack:"lemma"`
	Etymology string  `json:"etymology,omitempty" msgpack:"etymology,omitempty"`
	POS       string  `json:"pos,omitempty" msgpack:"pos,omitempty"`
	Senses    []Sense `json:"senses" msgpack:"senses"`
}

// NormalizeHeadword returns the aggregation key for a raw headword: trimmed
// and lower-cased, so occurrences differing only in case or surrounding
// whitespace collapse together.
func NormalizeHeadword(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
