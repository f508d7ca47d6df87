// Package pipeline drives a dataset build: one synchronous loop that
// reads the dump, extracts entries, attaches translations, and hands
// records to a sink.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lexibase/senselink/pkg/aggregate"
	"github.com/lexibase/senselink/pkg/export"
	"github.com/lexibase/senselink/pkg/lexicon"
	"github.com/lexibase/senselink/pkg/mapping"
	"github.com/lexibase/senselink/pkg/match"
	"github.com/lexibase/senselink/pkg/wiktextract"
)

// progressEvery is how many input lines pass between progress callbacks.
const progressEvery = 5000

// Stats summarize one run.
type Stats struct {
	Lines   int // lines read from the source
	Entries int // entries that survived extraction or decoding
	Lemmas  int // distinct lemmas aggregated (seed mode only)
	Records int // records handed to the sink
}

// Pipeline holds the stages shared by the run modes. The loop is
// deliberately single-threaded: records are read, processed, and emitted
// strictly in input order, so a given dump always produces the same
// output.
type Pipeline struct {
	Extractor *wiktextract.Extractor
	Matcher   *match.Matcher

	// OnProgress, when set, is called every progressEvery input lines
	// and once at the end of the run.
	OnProgress func(lines, records int)
}

// New returns a pipeline. The matcher may be nil when only Extract or
// Associate will run.
func New(ex *wiktextract.Extractor, m *match.Matcher) *Pipeline {
	return &Pipeline{Extractor: ex, Matcher: m}
}

// Seed runs the full build: extract every entry, match its translation
// groups onto its senses, merge entries into lemmas, and write one
// record per lemma once the stream is exhausted.
func (p *Pipeline) Seed(ctx context.Context, src *wiktextract.Source, sink export.Exporter) (Stats, error) {
	var stats Stats
	if p.Matcher == nil {
		return stats, errors.New("seed mode needs a matcher")
	}

	agg := aggregate.New()
	for src.Scan() {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		stats.Lines++

		entry, ok := p.Extractor.Extract(src.Bytes())
		if !ok {
			p.progress(stats.Lines, stats.Records)
			continue
		}
		stats.Entries++

		if err := p.Matcher.Match(ctx, entry.Senses, entry.Groups); err != nil {
			return stats, fmt.Errorf("match %q: %w", entry.Lemma, err)
		}
		agg.Add(entry)
		p.progress(stats.Lines, stats.Records)
	}
	if err := src.Err(); err != nil {
		return stats, fmt.Errorf("scan dump: %w", err)
	}

	stats.Lemmas = agg.Len()
	for _, l := range agg.Lemmas() {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		if err := sink.Write(l); err != nil {
			return stats, fmt.Errorf("write lemma %q: %w", l.Lemma, err)
		}
		stats.Records++
	}
	p.finish(stats)
	return stats, nil
}

// Extract writes every extracted entry as-is, translation groups
// included, producing the intermediate file the associate mode consumes.
func (p *Pipeline) Extract(ctx context.Context, src *wiktextract.Source, sink export.Exporter) (Stats, error) {
	var stats Stats
	for src.Scan() {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		stats.Lines++

		entry, ok := p.Extractor.Extract(src.Bytes())
		if !ok {
			p.progress(stats.Lines, stats.Records)
			continue
		}
		stats.Entries++

		if err := sink.Write(entry); err != nil {
			return stats, fmt.Errorf("write entry %q: %w", entry.Lemma, err)
		}
		stats.Records++
		p.progress(stats.Lines, stats.Records)
	}
	if err := src.Err(); err != nil {
		return stats, fmt.Errorf("scan dump: %w", err)
	}
	p.finish(stats)
	return stats, nil
}

// Associate re-reads previously extracted entries and resolves their
// translations through a curated mapping index instead of embeddings.
// Entries with no mapping are still emitted, with empty translations;
// only malformed or blank lines are dropped.
func (p *Pipeline) Associate(ctx context.Context, src *wiktextract.Source, idx mapping.Index, sink export.Exporter) (Stats, error) {
	var stats Stats
	for src.Scan() {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		stats.Lines++

		var entry lexicon.Entry
		if err := json.Unmarshal(src.Bytes(), &entry); err != nil {
			log.Debugf("skipping malformed line %d: %v", stats.Lines, err)
			p.progress(stats.Lines, stats.Records)
			continue
		}
		if entry.IsEmpty() {
			p.progress(stats.Lines, stats.Records)
			continue
		}
		stats.Entries++

		key := mapping.Key{Lemma: entry.Lemma, Etymology: entry.Etymology, POS: entry.POS}
		mapping.Resolve(&entry, idx.Lookup(key))

		if err := sink.Write(entry); err != nil {
			return stats, fmt.Errorf("write entry %q: %w", entry.Lemma, err)
		}
		stats.Records++
		p.progress(stats.Lines, stats.Records)
	}
	if err := src.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	p.finish(stats)
	return stats, nil
}

func (p *Pipeline) progress(lines, records int) {
	if p.OnProgress != nil && lines%progressEvery == 0 {
		p.OnProgress(lines, records)
	}
}

func (p *Pipeline) finish(stats Stats) {
	if p.OnProgress != nil {
		p.OnProgress(stats.Lines, stats.Records)
	}
}
