package main

import (
	"fmt"
	"os"
	"strconv"

	"metatagger/internal/config"
)

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
func parseArgs() (config.Config, string, error) {
	args := os.Args[1:]

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		}
		if arg == "--init-config" {
			return config.Config{}, "", initConfigFile()
		}
	}

	var configPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--folder", "-f":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--folder requires a path argument")
			}
			i++
			cfg.Folder = config.ExpandHome(args[i])

		case "--workers", "-w":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--workers requires a number argument")
			}
			i++
			workers, err := strconv.Atoi(args[i])
			if err != nil {
				return config.Config{}, "", fmt.Errorf("invalid workers value: %s", args[i])
			}
			cfg.MaxWorkers = workers

		case "--verbose", "-v":
			cfg.Verbose = true

		case "--config", "-c":
			i++

		default:
			return config.Config{}, "", fmt.Errorf("unknown argument: %s", arg)
		}
	}

	return cfg, configPath, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		os.Exit(0)
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  lastfm_api_key: API key for the Last.fm fallback provider")
	fmt.Println("  folder: default directory to scan")
	fmt.Println("  max_workers: upper bound on parallel workers")
	fmt.Println("  audio_extensions: file extensions treated as audio")
	fmt.Println("  cache_path: SQLite lookup cache location")
	fmt.Println("  min_confidence: warn threshold for filename parsing (0.0-1.0)")
	fmt.Println("  log_file: log file path (logs always go to stdout too)")

	os.Exit(0)
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("metatagger - Fill missing metadata tags on audio files")
	fmt.Println()
	fmt.Println("Usage: metatagger [options]")
	fmt.Println()
	fmt.Println("Scans a directory tree for audio files, guesses title/artist from")
	fmt.Println("each file name, looks the track up on MusicBrainz (with Last.fm as")
	fmt.Println("fallback) and fills in missing tags. Existing tags are never changed.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -f, --folder <path>        Directory to scan recursively (default: ./music)")
	fmt.Println("  -w, --workers <n>          Upper bound on parallel workers (default: 8)")
	fmt.Println("  -c, --config <path>        Path to config file (JSON or YAML)")
	fmt.Println("  -v, --verbose              Show detailed output, disable the progress bar")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./metatagger.json")
	fmt.Println("  ./metatagger.yaml")
	fmt.Println("  ~/.config/metatagger/config.json")
	fmt.Println("  ~/.metatagger.json")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Enrich everything under ~/Music with defaults")
	fmt.Println("  metatagger -f ~/Music")
	fmt.Println()
	fmt.Println("  # Small batch, verbose logs")
	fmt.Println("  metatagger -f ./new-rips -w 2 -v")
	fmt.Println()
	fmt.Println("  # Create a config file to persist settings")
	fmt.Println("  metatagger --init-config")
}
