// Package aggregate folds per-line dictionary entries into one lemma per
// headword. Surface variants that differ only in case or surrounding
// whitespace land on the same lemma.
package aggregate

import (
	"github.com/lexibase/senselink/pkg/lexicon"
)

// Aggregator accumulates entries across a whole dump. Lemmas come back in
// the order their headwords were first seen, so a given input always
// yields the same output.
type Aggregator struct {
	order  []string
	lemmas map[string]*lexicon.Lemma
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{lemmas: make(map[string]*lexicon.Lemma)}
}

// Add merges one entry into the aggregate. The first entry for a headword
// creates the lemma; later entries append their senses and may fill in an
// etymology or part of speech the lemma is still missing, but never
// overwrite one it already has.
func (a *Aggregator) Add(e lexicon.Entry) {
	key := lexicon.NormalizeHeadword(e.Lemma)
	l, ok := a.lemmas[key]
	if !ok {
		l = &lexicon.Lemma{
			Lemma:     key,
			Etymology: e.Etymology,
			POS:       e.POS,
		}
		a.lemmas[key] = l
		a.order = append(a.order, key)
	} else {
		if l.Etymology == "" {
			l.Etymology = e.Etymology
		}
		if l.POS == "" {
			l.POS = e.POS
		}
	}
	l.Senses = append(l.Senses, e.Senses...)
}

// Len reports how many distinct lemmas have been seen.
func (a *Aggregator) Len() int {
	return len(a.lemmas)
}

// Lemmas returns every lemma in first-encounter order.
func (a *Aggregator) Lemmas() []*lexicon.Lemma {
	out := make([]*lexicon.Lemma, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.lemmas[key])
	}
	return out
}
