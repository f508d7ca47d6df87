package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexibase/senselink/pkg/lexicon"
)

func runEntry() lexicon.Entry {
	return lexicon.Entry{
		Lemma:  "run",
		Senses: []lexicon.Sense{lexicon.NewSense(1, "to move quickly", nil)},
		Groups: lexicon.Groups{
			{Label: "to move quickly", Translations: []lexicon.Translation{{Word: "courir", Language: "french"}}},
			{Label: "to manage", Translations: []lexicon.Translation{{Word: "gérer", Language: "french"}}},
		},
	}
}

func TestResolveLetterLookup(t *testing.T) {
	for _, letter := range []string{"B", "b"} {
		e := runEntry()
		Resolve(&e, Table{"1": letter})

		got := e.Senses[0].Translations
		if len(got) != 1 || got[0].Word != "gérer" {
			t.Errorf("letter %q: translations = %v, want the second group", letter, got)
		}
		if e.Groups != nil {
			t.Errorf("groups must be dropped after resolution")
		}
	}
}

func TestResolveBadLettersLeaveSenseEmpty(t *testing.T) {
	tables := map[string]Table{
		"two characters": {"1": "AB"},
		"empty code":     {"1": ""},
		"non-ascii":      {"1": "é"},
		"out of range":   {"1": "Z"},
		"no sense key":   {"2": "A"},
		"nil table":      nil,
	}
	for name, tbl := range tables {
		t.Run(name, func(t *testing.T) {
			e := runEntry()
			Resolve(&e, tbl)

			got := e.Senses[0].Translations
			if got == nil {
				t.Fatal("translations must stay non-nil")
			}
			if len(got) != 0 {
				t.Errorf("translations = %v, want none", got)
			}
		})
	}
}

func TestResolveSkipsIncompleteTranslations(t *testing.T) {
	e := lexicon.Entry{
		Lemma:  "walk",
		Senses: []lexicon.Sense{lexicon.NewSense(1, "to move on foot", nil)},
		Groups: lexicon.Groups{{
			Label: "to move on foot",
			Translations: []lexicon.Translation{
				{Word: "", Language: "french"},
				{Word: "gehen", Language: ""},
				{Word: "marcher", Language: "french"},
			},
		}},
	}
	Resolve(&e, Table{"1": "A"})

	got := e.Senses[0].Translations
	if len(got) != 1 || got[0].Word != "marcher" {
		t.Errorf("translations = %v, want only the complete pair", got)
	}
}

func TestResolveMultipleSenses(t *testing.T) {
	e := runEntry()
	e.Senses = append(e.Senses, lexicon.NewSense(2, "to operate", nil))
	Resolve(&e, Table{"1": "A", "2": "B"})

	if got := e.Senses[0].Translations; len(got) != 1 || got[0].Word != "courir" {
		t.Errorf("sense 1 translations = %v", got)
	}
	if got := e.Senses[1].Translations; len(got) != 1 || got[0].Word != "gérer" {
		t.Errorf("sense 2 translations = %v", got)
	}
}

func TestParseRecordsAndLooksUp(t *testing.T) {
	input := strings.Join([]string{
		`{"lemma":"run","etymology":"From Old English.","pos":"verb","mapping":{"1":"A","2":"B"}}`,
		`{"lemma":"walk","pos":"verb","mapping":{"1":"A"}}`,
	}, "\n")

	idx, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(idx) != 2 {
		t.Fatalf("index size = %d, want 2", len(idx))
	}

	tbl := idx.Lookup(Key{Lemma: "run", Etymology: "From Old English.", POS: "verb"})
	if tbl["2"] != "B" {
		t.Errorf("lookup = %v, want sense 2 -> B", tbl)
	}
	if got := idx.Lookup(Key{Lemma: "run", POS: "verb"}); got != nil {
		t.Errorf("key fields must match verbatim, got %v", got)
	}
}

func TestParseDuplicateKeyDegradesToEmpty(t *testing.T) {
	input := strings.Join([]string{
		`{"lemma":"set","mapping":{"1":"A"}}`,
		`{"lemma":"set","mapping":{"1":"B"}}`,
		`{"lemma":"set","mapping":{"2":"C"}}`,
	}, "\n")

	idx, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tbl := idx.Lookup(Key{Lemma: "set"})
	if tbl == nil || len(tbl) != 0 {
		t.Errorf("ambiguous key should stay recorded but empty, got %v", tbl)
	}
}

func TestParseIgnoresUselessLines(t *testing.T) {
	input := strings.Join([]string{
		`not json at all`,
		``,
		`{}`,
		`{"lemma":"go","mapping":null}`,
		`{"lemma":"go","mapping":["A"]}`,
		`{"lemma":"go","mapping":"A"}`,
		`{"lemma":"go","mapping":{"1":"a"}}`,
	}, "\n")

	idx, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// None of the unusable lines registered the key, so the last line
	// still records cleanly instead of colliding.
	tbl := idx.Lookup(Key{Lemma: "go"})
	if tbl["1"] != "a" {
		t.Errorf("lookup = %v, want sense 1 -> a", tbl)
	}
	if len(idx) != 1 {
		t.Errorf("index size = %d, want 1", len(idx))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.jsonl")
	content := `{"lemma":"run","pos":"verb","mapping":{"1":"B"}}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mappings: %v", err)
	}

	idx, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl := idx.Lookup(Key{Lemma: "run", POS: "verb"}); tbl["1"] != "B" {
		t.Errorf("lookup = %v, want sense 1 -> B", tbl)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
