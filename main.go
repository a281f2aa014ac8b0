package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/bookworm/internal/cli"
	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// subcommand is implemented by every subcommand in internal/cli.
type subcommand interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd subcommand
	switch command {
	case "add":
		cmd = cli.NewAddCommand()
	case "list":
		cmd = cli.NewListCommand()
	case "show":
		cmd = cli.NewShowCommand()
	case "delete":
		cmd = cli.NewDeleteCommand()
	case "export":
		cmd = cli.NewExportCommand()
	case "version":
		fmt.Printf("bookworm %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve    Start the web journal (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  add      Add a book\n")
	fmt.Fprintf(os.Stderr, "  list     List books sorted by title\n")
	fmt.Fprintf(os.Stderr, "  show     Show one book\n")
	fmt.Fprintf(os.Stderr, "  delete   Delete books by id or list offset\n")
	fmt.Fprintf(os.Stderr, "  export   Export the journal as markdown\n")
	fmt.Fprintf(os.Stderr, "  version  Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
