// Package main is the entry point for the Quill admin CLI.
// This tool provides operator commands for managing user accounts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/config"
	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
	"github.com/quillhq/quill/internal/repository/postgres"
	"github.com/quillhq/quill/internal/repository/sqlite"
	"github.com/quillhq/quill/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// operator is the identity the CLI acts under. The CLI runs with direct
// database access, so it carries admin rights by definition.
var operator = domain.Identity{IsAdmin: true}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Quill Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runUserCommand(args []string) error {
	if len(args) < 1 {
		printUsage()
		return errors.New("missing user subcommand")
	}
	subcommand := args[0]

	fs := flag.NewFlagSet("user "+subcommand, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	userID := fs.Int64("id", 0, "user ID")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg := config.MustLoad(*configPath)
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeDB, err := openUserRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	accounts := service.NewAccountService(users, logger)

	switch subcommand {
	case "list":
		return listUsers(ctx, accounts)
	case "promote":
		return withTarget(ctx, accounts, *userID, func(id int64) error {
			return accounts.SetAdmin(ctx, operator, id, true)
		})
	case "demote":
		return withTarget(ctx, accounts, *userID, func(id int64) error {
			return accounts.SetAdmin(ctx, operator, id, false)
		})
	case "allow-comments":
		return withTarget(ctx, accounts, *userID, func(id int64) error {
			return accounts.SetCommentPrivilege(ctx, operator, id, true)
		})
	case "block-comments":
		return withTarget(ctx, accounts, *userID, func(id int64) error {
			return accounts.SetCommentPrivilege(ctx, operator, id, false)
		})
	default:
		printUsage()
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

func listUsers(ctx context.Context, accounts *service.AccountService) error {
	users, err := accounts.ListUsers(ctx, operator)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tADMIN\tCAN COMMENT\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			u.ID, u.Email, yesNo(u.IsAdmin), yesNo(u.CanComment),
			u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func withTarget(ctx context.Context, accounts *service.AccountService, userID int64, fn func(int64) error) error {
	if userID == 0 {
		return errors.New("missing required flag: -id")
	}
	if err := fn(userID); err != nil {
		return err
	}
	user, err := accounts.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Printf("User %d (%s) updated: admin=%s, can comment=%s\n",
		user.ID, user.Email, yesNo(user.IsAdmin), yesNo(user.CanComment))
	return nil
}

func openUserRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.UserRepository, func(), error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), func() { _ = db.Close() }, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(db), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printUsage() {
	fmt.Println(`Quill Admin CLI

Usage:
  quill-admin <command> [arguments]

Commands:
  user list                    List all user accounts
  user promote -id <id>        Grant admin rights to a user
  user demote -id <id>         Revoke admin rights from a user
  user allow-comments -id <id> Restore a user's comment privilege
  user block-comments -id <id> Block a user from commenting
  version                      Print version information
  help                         Show this help message

Flags:
  -config <path>   Path to config file (defaults to environment variables)

Examples:
  quill-admin user list
  quill-admin user promote -id 2
  quill-admin user block-comments -id 7`)
}
