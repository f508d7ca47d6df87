package embed

import (
	"context"
	"math"
	"runtime"
	"strings"
	"sync"
	"unicode"
)

const defaultDimension = 384

// Feature class weights. Tokens dominate; bigrams and character trigrams
// add phrase and spelling signal.
const (
	tokenWeight  = 0.60
	bigramWeight = 0.25
	charWeight   = 0.15
)

// LocalOptions tune the in-process encoder.
type LocalOptions struct {
	Dimension int
	Workers   int
}

// Local is a deterministic in-process encoder: hashed word and character
// n-grams sign-projected into a fixed-size vector, unit-normalized. It
// needs no model files and exists so the pipeline runs without an
// embedding server.
type Local struct {
	dim     int
	workers int
}

// NewLocal returns a local encoder with the given dimension (default 384)
// and batch worker count (default NumCPU).
func NewLocal(opts LocalOptions) *Local {
	dim := opts.Dimension
	if dim <= 0 {
		dim = defaultDimension
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Local{dim: dim, workers: workers}
}

// Dimension returns the configured vector length.
func (l *Local) Dimension() int {
	return l.dim
}

// Encode embeds each text independently. Large batches are split across
// the configured workers; the result order always matches the input order.
func (l *Local) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	n := len(texts)
	if n == 0 {
		return nil, nil
	}

	out := make([][]float32, n)
	if n < l.workers*2 {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = l.encode(text)
		}
		return out, nil
	}

	var wg sync.WaitGroup
	chunk := (n + l.workers - 1) / l.workers
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				out[i] = l.encode(texts[i])
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Local) encode(text string) []float32 {
	vec := make([]float32, l.dim)
	lower := strings.ToLower(text)
	tokens := tokenize(lower)

	if len(tokens) > 0 {
		w := float32(tokenWeight / math.Sqrt(float64(len(tokens))))
		for _, tok := range tokens {
			project(vec, fnvHash64("w:"+tok), w)
		}
	}
	if len(tokens) > 1 {
		count := len(tokens) - 1
		w := float32(bigramWeight / math.Sqrt(float64(count)))
		for i := 0; i < count; i++ {
			project(vec, fnvHash64("b:"+tokens[i]+" "+tokens[i+1]), w)
		}
	}
	if len(lower) >= 3 {
		count := len(lower) - 2
		w := float32(charWeight / math.Sqrt(float64(count)))
		for i := 0; i+3 <= len(lower); i++ {
			project(vec, fnvHash64("c:"+lower[i:i+3]), w)
		}
	}

	normalize(vec)
	return vec
}

// project spreads one feature hash over four signed positions. The sign
// bits come from the original hash so the projection stays deterministic.
func project(vec []float32, hash uint64, weight float32) {
	state := hash
	for j := 0; j < 4; j++ {
		state = state*6364136223846793005 + 1442695040888963407
		idx := int(state % uint64(len(vec)))
		sign := float32(1)
		if (hash>>j)&1 == 0 {
			sign = -1
		}
		vec[idx] += weight * sign
	}
}

// tokenize splits lower-cased text into letter/digit runs of length two or
// more.
func tokenize(lower string) []string {
	var tokens []string
	start := 0
	inToken := false
	for i, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if !inToken {
				start = i
				inToken = true
			}
			continue
		}
		if inToken {
			if i-start >= 2 {
				tokens = append(tokens, lower[start:i])
			}
			inToken = false
		}
	}
	if inToken && len(lower)-start >= 2 {
		tokens = append(tokens, lower[start:])
	}
	return tokens
}

func fnvHash64(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// normalize scales the vector in place to unit length.
func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= inv
	}
}
