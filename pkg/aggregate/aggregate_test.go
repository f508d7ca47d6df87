package aggregate

import (
	"testing"

	"github.com/lexibase/senselink/pkg/lexicon"
)

func entry(lemma string, senses ...lexicon.Sense) lexicon.Entry {
	return lexicon.Entry{Lemma: lemma, Senses: senses}
}

func TestAggregateMergesCaseAndWhitespace(t *testing.T) {
	agg := New()
	agg.Add(entry("Run", lexicon.NewSense(1, "to move quickly", nil)))
	agg.Add(entry("run ", lexicon.NewSense(1, "to operate", nil)))

	if agg.Len() != 1 {
		t.Fatalf("expected one lemma, got %d", agg.Len())
	}
	lemmas := agg.Lemmas()
	if lemmas[0].Lemma != "run" {
		t.Errorf("lemma = %q, want %q", lemmas[0].Lemma, "run")
	}
	if len(lemmas[0].Senses) != 2 {
		t.Fatalf("expected merged senses, got %d", len(lemmas[0].Senses))
	}
	if lemmas[0].Senses[0].Definition != "to move quickly" || lemmas[0].Senses[1].Definition != "to operate" {
		t.Errorf("senses out of encounter order: %+v", lemmas[0].Senses)
	}
}

func TestAggregateFirstEncounterOrder(t *testing.T) {
	agg := New()
	agg.Add(entry("zebra", lexicon.NewSense(1, "a striped animal", nil)))
	agg.Add(entry("apple", lexicon.NewSense(1, "a fruit", nil)))
	agg.Add(entry("Zebra", lexicon.NewSense(1, "a crossing", nil)))

	lemmas := agg.Lemmas()
	if len(lemmas) != 2 {
		t.Fatalf("expected 2 lemmas, got %d", len(lemmas))
	}
	if lemmas[0].Lemma != "zebra" || lemmas[1].Lemma != "apple" {
		t.Errorf("order = [%s, %s], want [zebra, apple]", lemmas[0].Lemma, lemmas[1].Lemma)
	}
	if len(lemmas[0].Senses) != 2 {
		t.Errorf("zebra should hold both entries' senses, got %d", len(lemmas[0].Senses))
	}
}

func TestAggregateFillsMissingFieldsOnly(t *testing.T) {
	agg := New()

	first := entry("bank", lexicon.NewSense(1, "land beside a river", nil))
	agg.Add(first)

	second := entry("bank", lexicon.NewSense(1, "a financial institution", nil))
	second.Etymology = "From Old Norse bakki."
	second.POS = "noun"
	agg.Add(second)

	third := entry("bank", lexicon.NewSense(1, "to tilt an aircraft", nil))
	third.Etymology = "From Italian banca."
	third.POS = "verb"
	agg.Add(third)

	l := agg.Lemmas()[0]
	if l.Etymology != "From Old Norse bakki." {
		t.Errorf("etymology = %q, want the first non-empty value", l.Etymology)
	}
	if l.POS != "noun" {
		t.Errorf("pos = %q, want the first non-empty value", l.POS)
	}
	if len(l.Senses) != 3 {
		t.Errorf("senses = %d, want 3", len(l.Senses))
	}
}

func TestAggregateKeepsDuplicateDefinitions(t *testing.T) {
	// Homograph entries can repeat a definition verbatim; merging them
	// would silently drop senses.
	agg := New()
	agg.Add(entry("bear", lexicon.NewSense(1, "to carry", nil)))
	agg.Add(entry("bear", lexicon.NewSense(1, "to carry", nil)))

	l := agg.Lemmas()[0]
	if len(l.Senses) != 2 {
		t.Fatalf("duplicate definitions must both survive, got %d senses", len(l.Senses))
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := New()
	if agg.Len() != 0 {
		t.Errorf("Len = %d, want 0", agg.Len())
	}
	if got := agg.Lemmas(); len(got) != 0 {
		t.Errorf("Lemmas = %v, want empty", got)
	}
}
