package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lexibase/senselink/pkg/config"
	"github.com/lexibase/senselink/pkg/embed"
	"github.com/lexibase/senselink/pkg/export"
	"github.com/lexibase/senselink/pkg/fetch"
	"github.com/lexibase/senselink/pkg/mapping"
	"github.com/lexibase/senselink/pkg/match"
	"github.com/lexibase/senselink/pkg/pipeline"
	"github.com/lexibase/senselink/pkg/wiktextract"
)

func main() {
	defaults := config.DefaultConfig()

	configFlag := flag.String("config", "senselink.toml", "Path to TOML config file, created with defaults when missing")
	inputFlag := flag.String("input", "data/raw/wiktextract.jsonl.gz", "Path to the wiktextract dump (.jsonl or .jsonl.gz)")
	outputFlag := flag.String("output", "data/processed/seed.jsonl", "Output path; the extension picks the format (.jsonl, .msgpack, .db)")
	mappingsFlag := flag.String("mappings", "", "Sense mapping file; when set, translations are resolved from it instead of matched")
	extractFlag := flag.Bool("extract-only", false, "Write per-entry records with unresolved translation groups and exit")
	forceFlag := flag.Bool("force-download", false, "Redownload the dump even when it is already present")
	urlFlag := flag.String("url", defaults.Fetch.URL, "Dump URL")
	chunkFlag := flag.Int("chunk-size", defaults.Fetch.ChunkSize, "Download chunk size in bytes")
	timeoutFlag := flag.Int("timeout", defaults.Fetch.TimeoutSeconds, "Download dial and response header timeout in seconds")
	minYearFlag := flag.Int("min-year", defaults.Extract.MinimumYear, "Oldest quotation year to keep")
	maxYearFlag := flag.Int("max-year", defaults.Extract.MaximumYear, "Newest quotation year to keep")
	glossFlag := flag.String("gloss-end", defaults.Extract.GlossEnd, "Which gloss of a nested chain becomes the definition (first or last)")
	providerFlag := flag.String("provider", defaults.Match.Provider, "Embedding provider (local or http)")
	modelFlag := flag.String("model", defaults.Match.Model, "Embedding model name")
	deviceFlag := flag.String("device", defaults.Match.Device, "Device hint passed to the embedding service")
	endpointFlag := flag.String("endpoint", defaults.Match.Endpoint, "Embedding service endpoint (http provider only)")
	thresholdFlag := flag.Float64("threshold", defaults.Match.Threshold, "Minimum similarity for a translation group to claim a sense")
	gapFlag := flag.Float64("gap", defaults.Match.Gap, "Minimum lead over the runner-up sense")
	bufferFlag := flag.Int("buffer-size", defaults.Export.BufferSize, "Output buffer size in bytes")
	debugFlag := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	if *debugFlag {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, err := config.InitConfig(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags that were given explicitly win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.Fetch.URL = *urlFlag
		case "chunk-size":
			cfg.Fetch.ChunkSize = *chunkFlag
		case "timeout":
			cfg.Fetch.TimeoutSeconds = *timeoutFlag
		case "min-year":
			cfg.Extract.MinimumYear = *minYearFlag
		case "max-year":
			cfg.Extract.MaximumYear = *maxYearFlag
		case "gloss-end":
			cfg.Extract.GlossEnd = *glossFlag
		case "provider":
			cfg.Match.Provider = *providerFlag
		case "model":
			cfg.Match.Model = *modelFlag
		case "device":
			cfg.Match.Device = *deviceFlag
		case "endpoint":
			cfg.Match.Endpoint = *endpointFlag
		case "threshold":
			cfg.Match.Threshold = *thresholdFlag
		case "gap":
			cfg.Match.Gap = *gapFlag
		case "buffer-size":
			cfg.Export.BufferSize = *bufferFlag
		}
	})

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ex := wiktextract.NewExtractor(wiktextract.Options{
		MinimumYear: cfg.Extract.MinimumYear,
		MaximumYear: cfg.Extract.MaximumYear,
		GlossEnd:    cfg.Extract.GlossEndOption(),
	})
	p := pipeline.New(ex, nil)
	p.OnProgress = func(lines, records int) {
		fmt.Fprintf(os.Stderr, "\rProcessing... lines: %d (records: %d)", lines, records)
	}

	// Resolve translations from a prepared mapping file (manual mode)
	if *mappingsFlag != "" {
		fmt.Printf("Loading mappings from %s...\n", *mappingsFlag)
		idx, err := mapping.Load(*mappingsFlag)
		if err != nil {
			log.Fatalf("Failed to load mappings: %v", err)
		}
		fmt.Printf("Loaded mapping tables for %d headwords.\n", len(idx))

		src, err := wiktextract.Open(*inputFlag)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		defer src.Close()

		sink, err := export.New(*outputFlag, cfg.Export.BufferSize)
		if err != nil {
			log.Fatalf("Failed to create exporter: %v", err)
		}

		start := time.Now()
		stats, err := p.Associate(ctx, src, idx, sink)
		if err != nil {
			log.Fatalf("Resolution failed: %v", err)
		}
		if err := sink.Close(); err != nil {
			log.Fatalf("Failed to finalize output: %v", err)
		}
		report(stats, start)
		fmt.Printf("Wrote %d records to %s\n", stats.Records, sink.Path())
		return
	}

	// Extract without linking translations (intermediate dataset)
	if *extractFlag {
		ensureDump(ctx, cfg, *inputFlag, *forceFlag)

		src, err := wiktextract.Open(*inputFlag)
		if err != nil {
			log.Fatalf("Failed to open dump: %v", err)
		}
		defer src.Close()

		sink, err := export.New(*outputFlag, cfg.Export.BufferSize)
		if err != nil {
			log.Fatalf("Failed to create exporter: %v", err)
		}

		start := time.Now()
		stats, err := p.Extract(ctx, src, sink)
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
		if err := sink.Close(); err != nil {
			log.Fatalf("Failed to finalize output: %v", err)
		}
		report(stats, start)
		printExtractStats(ex)
		fmt.Printf("Wrote %d entries to %s\n", stats.Records, sink.Path())
		return
	}

	// Full build: extract, match translations onto senses, aggregate lemmas.
	enc, err := embed.New(ctx, embed.Config{
		Provider:  cfg.Match.Provider,
		Model:     cfg.Match.Model,
		Device:    cfg.Match.Device,
		Endpoint:  cfg.Match.Endpoint,
		Dimension: cfg.Match.Dimension,
		Workers:   cfg.Match.Workers,
	})
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}
	p.Matcher = match.New(enc, match.Options{Threshold: cfg.Match.Threshold, Gap: cfg.Match.Gap})
	fmt.Printf("Embedding provider %q ready (%d dimensions).\n", cfg.Match.Provider, enc.Dimension())

	ensureDump(ctx, cfg, *inputFlag, *forceFlag)

	src, err := wiktextract.Open(*inputFlag)
	if err != nil {
		log.Fatalf("Failed to open dump: %v", err)
	}
	defer src.Close()

	sink, err := export.New(*outputFlag, cfg.Export.BufferSize)
	if err != nil {
		log.Fatalf("Failed to create exporter: %v", err)
	}

	start := time.Now()
	stats, err := p.Seed(ctx, src, sink)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		log.Fatalf("Failed to finalize output: %v", err)
	}
	report(stats, start)
	printExtractStats(ex)
	ms := p.Matcher.Stats()
	fmt.Printf("Matching: linked %d translation groups, dropped %d below confidence.\n", ms.Matched, ms.Dropped)
	fmt.Printf("Aggregated %d lemmas from %d entries.\n", stats.Lemmas, stats.Entries)
	fmt.Printf("Processing complete. Wrote %d records to %s\n", stats.Records, sink.Path())
}

// ensureDump downloads the dump when it is missing, reporting progress on
// stderr.
func ensureDump(ctx context.Context, cfg *config.Config, path string, force bool) {
	f := fetch.New(fetch.Options{
		URL:       cfg.Fetch.URL,
		ChunkSize: cfg.Fetch.ChunkSize,
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		Force:     force,
	})
	f.OnProgress = func(written, total int64) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\rDownloading... %d / %d MiB", written>>20, total>>20)
			return
		}
		fmt.Fprintf(os.Stderr, "\rDownloading... %d MiB", written>>20)
	}
	downloaded, err := f.Ensure(ctx, path)
	if err != nil {
		log.Fatalf("Failed to fetch dump: %v", err)
	}
	if downloaded {
		fmt.Fprintf(os.Stderr, "\rDownloaded %s\n", path)
	}
}

func report(stats pipeline.Stats, start time.Time) {
	fmt.Fprintf(os.Stderr,
		"\rFinished. Read %d lines, kept %d entries, wrote %d records in %.1fs\n",
		stats.Lines, stats.Entries, stats.Records, time.Since(start).Seconds())
}

func printExtractStats(ex *wiktextract.Extractor) {
	s := ex.Stats()
	fmt.Printf("Extraction: kept %d entries (%d senses); skipped %d malformed, %d gated, %d without senses.\n",
		s.Entries, s.Senses, s.Malformed, s.Gated, s.NoSenses)
}
