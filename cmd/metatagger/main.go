package main

import (
	"fmt"
	"os"

	"metatagger/internal/cache"
	"metatagger/internal/config"
	"metatagger/internal/logger"
	"metatagger/internal/metadata"
	"metatagger/internal/progress"
	"metatagger/internal/provider"
	"metatagger/internal/provider/lastfm"
	"metatagger/internal/provider/musicbrainz"
	"metatagger/internal/shutdown"
)

func main() {
	cfg, configPath, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	sh := shutdown.New()
	sh.Listen()

	log := logger.New(cfg.Verbose)
	defer log.Close()
	// A signal skips the deferred close; make sure the log still
	// flushes on Ctrl-C.
	sh.AddCleanup(func() { log.Close() })

	if cfg.LogFile != "" {
		if err := log.SetFileLog(cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] failed to set up file logging: %v\n", err)
		}
	}

	if configPath != "" {
		log.Debug("loaded configuration from %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("configuration error: %v", err)
		os.Exit(1)
	}

	if err := run(sh, cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("=== Batch completed ===")
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger) error {
	ctx := sh.Context()

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("failed to open metadata cache: %w", err)
	}
	defer store.Close()
	sh.AddCleanup(func() { store.Close() })

	policy := provider.Policy{Retries: cfg.Retries, BaseDelay: cfg.RetryDelay()}
	primary := musicbrainz.New(cfg.UserAgent, cfg.RequestTimeout(), policy)

	providers := []metadata.Provider{metadata.NewCachedProvider(primary, store, log)}
	if cfg.LastfmAPIKey != "" {
		fallback := lastfm.New(cfg.LastfmAPIKey, cfg.RequestTimeout(), policy)
		providers = append(providers, metadata.NewCachedProvider(fallback, store, log))
	} else {
		log.Debug("lastfm_api_key not configured, fallback provider disabled")
	}

	chain := metadata.NewChainProvider(providers, log)

	enricher := metadata.NewEnricher(chain, log, cfg.AudioExtensions, cfg.MinConfidence)

	var bar *progress.Bar
	if !cfg.Verbose {
		enricher.OnScanned = func(total int) {
			bar = progress.New(total)
			log.SetProgressBar(true)
		}
		enricher.OnProgress = func() {
			if bar != nil {
				bar.Increment()
			}
		}
	}

	err = enricher.ProcessFolder(ctx, cfg.Folder, cfg.MaxWorkers)

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	return err
}
