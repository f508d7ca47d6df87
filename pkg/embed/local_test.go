package embed

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestLocalDeterministic(t *testing.T) {
	enc := NewLocal(LocalOptions{})
	ctx := context.Background()

	first, err := enc.Encode(ctx, []string{"to move quickly", "to manage"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := enc.Encode(ctx, []string{"to move quickly", "to manage"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different vectors")
	}
}

func TestLocalDimensionAndNorm(t *testing.T) {
	enc := NewLocal(LocalOptions{Dimension: 128})
	if enc.Dimension() != 128 {
		t.Fatalf("dimension = %d, want 128", enc.Dimension())
	}
	vecs, err := enc.Encode(context.Background(), []string{"to move quickly"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 128 {
		t.Fatalf("unexpected vector shape")
	}
	var sumSq float64
	for _, v := range vecs[0] {
		sumSq += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sumSq)-1) > 1e-5 {
		t.Fatalf("vector not unit length: %v", math.Sqrt(sumSq))
	}
}

func TestLocalSelfSimilarity(t *testing.T) {
	enc := NewLocal(LocalOptions{})
	vecs, err := enc.Encode(context.Background(), []string{
		"to move quickly",
		"to move quickly",
		"a group of fish",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if sim := Cosine(vecs[0], vecs[1]); math.Abs(sim-1) > 1e-6 {
		t.Fatalf("identical texts should score 1, got %v", sim)
	}
	if sim := Cosine(vecs[0], vecs[2]); sim > 0.9 {
		t.Fatalf("unrelated texts score suspiciously high: %v", sim)
	}
}

func TestLocalBatchMatchesSingle(t *testing.T) {
	enc := NewLocal(LocalOptions{Workers: 4})
	ctx := context.Background()

	// Enough texts to take the parallel path.
	texts := make([]string, 32)
	for i := range texts {
		texts[i] = "definition number " + string(rune('a'+i%26))
	}
	batch, err := enc.Encode(ctx, texts)
	if err != nil {
		t.Fatalf("batch encode: %v", err)
	}
	for i, text := range texts {
		single, err := enc.Encode(ctx, []string{text})
		if err != nil {
			t.Fatalf("single encode: %v", err)
		}
		if !reflect.DeepEqual(batch[i], single[0]) {
			t.Fatalf("batch vector %d differs from single encoding", i)
		}
	}
}

func TestLocalEmptyBatch(t *testing.T) {
	enc := NewLocal(LocalOptions{})
	vecs, err := enc.Encode(context.Background(), nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if vecs != nil {
		t.Fatalf("expected nil result for empty batch, got %v", vecs)
	}
}

func TestLocalCanceledContext(t *testing.T) {
	enc := NewLocal(LocalOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := enc.Encode(ctx, []string{"a definition"}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("to move, quickly! x 42nd")
	want := []string{"to", "move", "quickly", "42nd"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
}
