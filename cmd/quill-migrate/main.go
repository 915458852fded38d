// Package main is the entry point for the Quill database migration tool.
// This tool manages PostgreSQL schema migrations; the SQLite backend
// migrates itself at server startup.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/config"
	"github.com/quillhq/quill/internal/repository/postgres"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Quill Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up", "status", "current":
		if err := runMigrateCommand(command); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runMigrateCommand(command string) error {
	cfg := config.MustLoad("")
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("driver %q does not use this tool; SQLite migrates at server startup", cfg.Database.Driver)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	switch command {
	case "up":
		return db.Migrate(ctx)

	case "status":
		records, err := db.MigrationStatus(ctx)
		if err != nil {
			return err
		}
		for _, r := range records {
			state := "pending"
			if r.Applied {
				state = "applied " + r.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%06d  %-40s  %s\n", r.Version, r.Name, state)
		}
		return nil

	case "current":
		version, err := db.CurrentVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Current version: %d\n", version)
		return nil
	}

	return nil
}

func printUsage() {
	fmt.Println(`Quill Migration Tool

Usage:
  quill-migrate <command>

Commands:
  up          Apply all pending migrations
  status      Show every migration and its applied state
  current     Print the highest applied migration version
  version     Print version information
  help        Show this help message

Configuration:
  Database settings come from the QUILL_ environment variables or the
  config file, the same as the server.

Examples:
  quill-migrate up
  quill-migrate status`)
}
