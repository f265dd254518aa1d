package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"go.senan.xyz/taglib"

	"metatagger/internal/filename"
	"metatagger/internal/logger"
	"metatagger/pkg/utils"
)

const defaultMinConfidence = 0.5

// Enricher fills missing tags on audio files: it parses each file's
// name into a search hint, resolves it through the provider (normally
// a cache-wrapped chain), and writes only the fields that are
// currently absent. Existing tag values are never overwritten.
type Enricher struct {
	provider      Provider
	logger        *logger.Logger
	extensions    map[string]bool
	minConfidence float64

	// OnScanned, when set, is called once with the number of files
	// found before any of them is dispatched.
	OnScanned func(total int)
	// OnProgress, when set, is called once per processed file.
	OnProgress func()
}

// NewEnricher creates an Enricher scanning for the given extensions.
// If minConfidence is 0, the default (0.5) is used.
func NewEnricher(p Provider, log *logger.Logger, extensions []string, minConfidence float64) *Enricher {
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return &Enricher{
		provider:      p,
		logger:        log,
		extensions:    exts,
		minConfidence: minConfidence,
	}
}

// FillMetadata runs the per-file enrichment pipeline. All failures are
// logged and contained here; one file can never abort the batch.
func (e *Enricher) FillMetadata(ctx context.Context, path string) {
	if err := e.fillFile(ctx, path); err != nil {
		e.logger.Error("failed to process %s: %v", path, err)
	}
}

func (e *Enricher) fillFile(ctx context.Context, path string) error {
	base := filepath.Base(path)

	tags, err := taglib.ReadTags(path)
	if err != nil {
		e.logger.Warn("skipping unreadable file %s: %v", path, err)
		return nil
	}
	if len(tags) == 0 {
		// Some unparseable files come back as an empty tag map rather
		// than an error. Reading the audio properties tells a genuinely
		// untagged file apart from one taglib cannot handle.
		if _, perr := taglib.ReadProperties(path); perr != nil {
			e.logger.Warn("skipping unreadable file %s: %v", path, perr)
			return nil
		}
	}

	if !e.hasMissingFields(tags) {
		e.logger.Debug("already tagged, skipping: %s", base)
		return nil
	}

	guess := filename.Extract(path)
	e.logger.Info("parsed %s: title=%q artist=%q confidence=%.2f", base, guess.Title, guess.Artist, guess.Confidence)
	if guess.Confidence < e.minConfidence {
		// Advisory only: a weak guess still drives the lookup.
		e.logger.Warn("low parse confidence for %s (%.2f)", path, guess.Confidence)
	}

	track, err := e.provider.Lookup(ctx, guess.Title, guess.Artist)
	if err != nil {
		return fmt.Errorf("provider lookup failed: %w", err)
	}
	if track.IsEmpty() {
		e.logger.Warn("could not enrich: %s", base)
		return nil
	}

	updates := make(map[string][]string)
	var applied []string
	for _, field := range []struct{ key, value string }{
		{taglib.Title, track.Title},
		{taglib.Artist, track.Artist},
		{taglib.Album, track.Album},
		{taglib.Date, track.Date},
	} {
		if field.value != "" && firstTag(tags, field.key) == "" {
			updates[field.key] = []string{field.value}
			applied = append(applied, fmt.Sprintf("%s=%q", strings.ToLower(field.key), field.value))
		}
	}
	if len(updates) == 0 {
		e.logger.Warn("could not enrich %s: provider offered no new fields", base)
		return nil
	}

	if err := taglib.WriteTags(path, updates, 0); err != nil {
		return fmt.Errorf("failed to write tags: %w", err)
	}

	e.logger.Info("enriched %s: %s", base, strings.Join(applied, " "))
	return nil
}

// hasMissingFields reports whether any of title/artist/album is unset.
// Date alone never triggers a lookup, matching the skip rule for files
// that are already usable.
func (e *Enricher) hasMissingFields(tags map[string][]string) bool {
	for _, key := range []string{taglib.Title, taglib.Artist, taglib.Album} {
		if firstTag(tags, key) == "" {
			return true
		}
	}
	return false
}

// ProcessFolder recursively scans folder for audio files and enriches
// them across a bounded worker pool. It returns after all files have
// been processed; per-file outcomes are reported through the logger.
func (e *Enricher) ProcessFolder(ctx context.Context, folder string, maxWorkers int) error {
	files, err := utils.FindAudioFiles(folder, e.extensions)
	if err != nil {
		// A missing or unreadable folder is not a batch failure; the
		// run ends cleanly with nothing to do.
		e.logger.Warn("cannot scan %s: %v", folder, err)
		return nil
	}
	if len(files) == 0 {
		e.logger.Warn("no audio files found under %s", folder)
		return nil
	}

	workers := workerCount(len(files), maxWorkers)
	e.logger.Info("processing %d audio files (%d workers)", len(files), workers)
	if e.OnScanned != nil {
		e.OnScanned(len(files))
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, path := range files {
		if ctx.Err() != nil {
			e.logger.Warn("batch cancelled, waiting for active workers to finish")
			break
		}
		path := path
		g.Go(func() error {
			e.FillMetadata(ctx, path)
			if e.OnProgress != nil {
				e.OnProgress()
			}
			return nil
		})
	}
	g.Wait()
	return ctx.Err()
}

// workerCount throttles concurrency down for small batches and caps it
// at the requested maximum: max(1, min(maxWorkers, files/5+1)).
func workerCount(files, maxWorkers int) int {
	n := files/5 + 1
	if maxWorkers < n {
		n = maxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
