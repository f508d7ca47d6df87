// Package match assigns translation groups to senses by embedding
// similarity.
package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/lexibase/senselink/pkg/embed"
	"github.com/lexibase/senselink/pkg/lexicon"
)

// Confidence gate defaults.
const (
	DefaultThreshold = 0.75
	DefaultGap       = 0.10
)

// Options bound when a label may claim a sense: its best score must reach
// Threshold and lead the runner-up sense by at least Gap.
type Options struct {
	Threshold float64
	Gap       float64
}

// DefaultOptions returns the standard confidence gates.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Gap: DefaultGap}
}

// Stats counts label outcomes over one run.
type Stats struct {
	Matched int // labels that claimed a sense
	Dropped int // labels below the gates or losing a conflict
}

// Matcher resolves which translation group belongs to which sense for one
// headword at a time. It is not safe for concurrent use; the pipeline
// feeds it from a single loop.
type Matcher struct {
	enc   embed.Encoder
	opts  Options
	stats Stats
}

// New returns a matcher using enc for similarity scoring.
func New(enc embed.Encoder, opts Options) *Matcher {
	return &Matcher{enc: enc, opts: opts}
}

// Stats returns the counters accumulated so far.
func (m *Matcher) Stats() Stats {
	return m.stats
}

// candidate is one label that passed the confidence gates, frozen with the
// score it earned. label and sense are indices in encounter order.
type candidate struct {
	label int
	sense int
	score float64
}

// Match appends each confidently matched group's translations to its best
// sense, mutating senses in place. At most one group claims any sense;
// conflicts resolve in favor of the highest score. A no-op when either
// side is empty.
func (m *Matcher) Match(ctx context.Context, senses []lexicon.Sense, groups lexicon.Groups) error {
	if len(senses) == 0 || len(groups) == 0 {
		return nil
	}

	definitions := make([]string, len(senses))
	for i, s := range senses {
		definitions[i] = s.Definition
	}
	senseVecs, err := m.enc.Encode(ctx, definitions)
	if err != nil {
		return fmt.Errorf("encode definitions: %w", err)
	}
	labelVecs, err := m.enc.Encode(ctx, groups.Labels())
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}

	// Full similarity matrix, labels x senses. All decisions below read
	// from this frozen copy.
	sim := make([][]float64, len(labelVecs))
	for i, lv := range labelVecs {
		row := make([]float64, len(senseVecs))
		for j, sv := range senseVecs {
			row[j] = embed.Cosine(lv, sv)
		}
		sim[i] = row
	}

	var candidates []candidate
	for i, row := range sim {
		best := -1
		bestScore, secondScore := -2.0, -2.0
		for j, score := range row {
			if score > bestScore {
				secondScore = bestScore
				bestScore = score
				best = j
			} else if score > secondScore {
				secondScore = score
			}
		}
		if bestScore < m.opts.Threshold {
			m.stats.Dropped++
			continue
		}
		// A label nearly as close to two senses is undecidable, not a
		// guess. With a single sense there is no runner-up to beat.
		if len(row) > 1 && bestScore-secondScore < m.opts.Gap {
			m.stats.Dropped++
			continue
		}
		candidates = append(candidates, candidate{label: i, sense: best, score: bestScore})
	}

	// Strongest first; stable so equal scores keep encounter order.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	claimed := make([]bool, len(senses))
	for _, c := range candidates {
		if claimed[c.sense] {
			m.stats.Dropped++
			continue
		}
		claimed[c.sense] = true
		m.stats.Matched++
		senses[c.sense].Translations = append(senses[c.sense].Translations, groups[c.label].Translations...)
	}
	return nil
}
